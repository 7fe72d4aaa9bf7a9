package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 5, End: 10}
	b := Span{File: 1, Start: 2, End: 7}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 10}) {
		t.Errorf("Cover = %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("cross-file Cover must return receiver, got %v", got)
	}
}

func TestSpanEndPoint(t *testing.T) {
	s := Span{File: 3, Start: 4, End: 9}
	if p := s.EndPoint(); !p.Empty() || p.Start != 9 || p.File != 3 {
		t.Errorf("EndPoint = %v", p)
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestSpanOverlaps(t *testing.T) {
	sp := func(file FileID, s, e uint32) Span { return Span{File: file, Start: s, End: e} }
	cases := []struct {
		a, b Span
		want bool
	}{
		{sp(0, 1, 1), sp(0, 1, 1), false},
		{sp(0, 1, 1), sp(0, 0, 2), true},
		{sp(0, 0, 2), sp(0, 2, 2), false},
		{sp(0, 2, 2), sp(0, 2, 4), true},
		{sp(0, 0, 2), sp(0, 1, 3), true},
		{sp(0, 0, 2), sp(0, 2, 4), false},
		{sp(0, 0, 9), sp(1, 0, 9), false},
	}
	for _, c := range cases {
		if got := c.a.Overlaps(c.b); got != c.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
		if got := c.b.Overlaps(c.a); got != c.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v", c.b, c.a, got, c.want)
		}
	}
}

func TestFileSlice(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("s.kw", []byte("hello")))
	if got, ok := f.Slice(Span{File: f.ID, Start: 1, End: 4}); !ok || got != "ell" {
		t.Errorf("Slice = %q %v", got, ok)
	}
	if _, ok := f.Slice(Span{File: f.ID, Start: 3, End: 9}); ok {
		t.Error("out-of-range slice must fail")
	}
	if _, ok := f.Slice(Span{File: f.ID + 1, Start: 0, End: 1}); ok {
		t.Error("foreign span must fail")
	}
	if !f.Flags.Has(FileVirtual) || f.Flags.Has(FilePrelude) {
		t.Errorf("flags = %b", f.Flags)
	}
}
