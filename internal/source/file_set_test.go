package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.kw", []byte("hello world"), 0)
	id2 := fs.Add("test.kw", []byte("hello universe"), 0)
	if id1 == id2 {
		t.Fatalf("expected a fresh FileID for the second Add")
	}

	latest, ok := fs.GetLatest("test.kw")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Errorf("old version must stay readable, got %q", got)
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("a.kw", []byte("a\nb\n")))

	want := []uint32{1, 3}
	if len(file.LineIdx) != len(want) {
		t.Fatalf("LineIdx = %v, want %v", file.LineIdx, want)
	}
	for i := range want {
		if file.LineIdx[i] != want[i] {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], want[i])
		}
	}
	if !file.Flags.Has(FileVirtual) {
		t.Error("expected FileVirtual flag")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       []byte
		want      string
		wantFlags FileFlags
	}{
		{"plain", []byte("a\nb"), "a\nb", 0},
		{"crlf keeps lone cr", []byte("a\r\nb\r\nc\r"), "a\nb\nc\r", FileNormalizedCRLF},
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'x'}, "x", FileHadBOM},
		{"utf16 le", []byte{0xFF, 0xFE, 'f', 0, '(', 0, ')', 0, '\r', 0, '\n', 0}, "f()\n", FileHadBOM | FileTranscoded | FileNormalizedCRLF},
		{"utf16 be", []byte{0xFE, 0xFF, 0, 'x'}, "x", FileHadBOM | FileTranscoded | FileBigEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, flags, err := Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if string(got) != tt.want || flags != tt.wantFlags {
				t.Errorf("Decode = %q flags %b, want %q flags %b", got, flags, tt.want, tt.wantFlags)
			}
			back, err := Encode(got, flags)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if string(back) != string(tt.raw) {
				t.Errorf("Encode(Decode(x)) = %q, want %q", back, tt.raw)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.kw", []byte("ab\ncd\n\nx"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // the newline itself belongs to line 1
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestTextAndGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.kw", []byte("first\nsecond\nthird"))
	file := fs.Get(id)

	if got := fs.Text(Span{File: id, Start: 6, End: 12}); got != "second" {
		t.Errorf("Text = %q", got)
	}
	for n, want := range map[uint32]string{1: "first", 2: "second", 3: "third", 4: ""} {
		if got := file.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.kw")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.LoadWithFlags(path, FilePrelude)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("content = %q", file.Content)
	}
	wantFlags := FileHadBOM | FileNormalizedCRLF | FilePrelude
	if file.Flags != wantFlags {
		t.Errorf("flags = %b, want %b", file.Flags, wantFlags)
	}
}
