package lexer

import (
	"testing"

	"kwarg/internal/source"
)

func TestCursorPeekAndMarks(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("c.kw", []byte("abc")))
	c := NewCursor(file)

	if b, ok := c.PeekAt(2); !ok || b != 'c' {
		t.Fatalf("PeekAt(2) = %c %v", b, ok)
	}
	if !c.HasPrefix("ab") || c.HasPrefix("abcd") {
		t.Fatalf("HasPrefix mismatch")
	}
	m := c.Mark()
	c.Bump()
	c.Bump()
	if sp := c.SpanFrom(m); sp.Start != 0 || sp.End != 2 {
		t.Fatalf("span = %v", sp)
	}
	if _, ok := c.PeekAt(1); ok {
		t.Fatalf("PeekAt(1) must fail with one byte left")
	}
	if !c.Eat("c") || !c.EOF() {
		t.Fatalf("expected to eat the last byte")
	}
	if c.Peek() != 0 || c.Bump() != 0 {
		t.Fatalf("reads past EOF must return 0")
	}
	c.Reset(m)
	if c.Peek() != 'a' {
		t.Fatalf("reset did not rewind")
	}
}

func TestCursorSkipLineAndAdvance(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("c.kw", []byte("// note\nx")))
	c := NewCursor(file)

	c.SkipLine()
	if c.Peek() != '\n' || c.Off != 7 {
		t.Fatalf("SkipLine stopped at %d", c.Off)
	}
	c.Advance(100)
	if !c.EOF() {
		t.Fatalf("Advance must clamp to the end of input")
	}
	c.Reset(0)
	c.Advance(8)
	c.SkipLine()
	if !c.EOF() {
		t.Fatalf("SkipLine without newline must reach EOF")
	}
}

func TestCursorBumpWhile(t *testing.T) {
	fs := source.NewFileSet()
	c := NewCursor(fs.Get(fs.AddVirtual("c.kw", []byte(" \t x"))))

	c.BumpWhile(isBlank)
	if c.Off != 3 || c.Peek() != 'x' {
		t.Fatalf("BumpWhile stopped at %d", c.Off)
	}
	c.BumpWhile(func(byte) bool { return true })
	if !c.EOF() {
		t.Fatal("BumpWhile must stop at EOF")
	}
}
