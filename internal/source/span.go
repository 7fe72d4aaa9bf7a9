package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file. An empty span
// marks an insertion point.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool { return s.Start == s.End }

func (s Span) Len() uint32 { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other. Spans from
// different files are not merged; s is returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}

// EndPoint is the insertion point just past s.
func (s Span) EndPoint() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}

// Overlaps reports whether rewriting s and other would touch shared bytes.
// Two insertion points never overlap; an insertion overlaps a non-empty span
// that strictly contains its position or starts at it.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File {
		return false
	}
	switch {
	case s.Empty() && other.Empty():
		return false
	case s.Empty():
		return other.Start <= s.Start && s.Start < other.End
	case other.Empty():
		return s.Start <= other.Start && other.Start < s.End
	}
	return s.Start < other.End && other.Start < s.End
}
