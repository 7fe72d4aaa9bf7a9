package lexer

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"kwarg/internal/source"
)

// Cursor walks the bytes of one file. Reads past the end yield 0.
type Cursor struct {
	File *source.File
	Off  uint32
	end  uint32
}

func NewCursor(f *source.File) Cursor {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return Cursor{File: f, end: end}
}

func (c *Cursor) EOF() bool {
	return c.Off >= c.end
}

func (c *Cursor) Peek() byte {
	b, _ := c.PeekAt(0)
	return b
}

// PeekAt returns the byte n positions ahead of the cursor.
func (c *Cursor) PeekAt(n uint32) (byte, bool) {
	if c.Off+n >= c.end {
		return 0, false
	}
	return c.File.Content[c.Off+n], true
}

// rest is the unread input.
func (c *Cursor) rest() []byte {
	return c.File.Content[c.Off:c.end]
}

// HasPrefix reports whether the unread input starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	rest := c.rest()
	return len(rest) >= len(s) && string(rest[:len(s)]) == s
}

// Bump advances by one byte and returns it.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Advance skips n bytes, stopping at the end of input.
func (c *Cursor) Advance(n int) {
	step, err := safecast.Conv[uint32](n)
	if err != nil || c.Off+step > c.end {
		c.Off = c.end
		return
	}
	c.Off += step
}

// Eat consumes s if the input starts with it.
func (c *Cursor) Eat(s string) bool {
	if !c.HasPrefix(s) {
		return false
	}
	c.Advance(len(s))
	return true
}

// SkipLine moves to the next newline without consuming it.
func (c *Cursor) SkipLine() {
	if i := bytes.IndexByte(c.rest(), '\n'); i >= 0 {
		c.Advance(i)
		return
	}
	c.SkipToEnd()
}

// BumpWhile consumes bytes while pred holds.
func (c *Cursor) BumpWhile(pred func(byte) bool) {
	for !c.EOF() && pred(c.Peek()) {
		c.Bump()
	}
}

func (c *Cursor) SkipToEnd() {
	c.Off = c.end
}

// Mark is a saved offset used to build spans.
type Mark uint32

func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom returns the span from m to the current offset.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}

func (c *Cursor) Reset(m Mark) {
	c.Off = uint32(m)
}
