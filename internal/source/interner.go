package source

import (
	"maps"
	"slices"
	"strings"
)

// StringID is a dense handle for an interned string. Zero is the empty
// string.
type StringID uint32

// Interner hands out one StringID per distinct string. Callers guard it
// themselves; it has no lock.
type Interner struct {
	strs []string
	ids  map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{strs: []string{""}, ids: map[string]StringID{"": 0}}
}

// Intern returns the id for s, assigning the next one on first sight. The
// stored copy does not alias s.
func (in *Interner) Intern(s string) StringID {
	if id, ok := in.ids[s]; ok {
		return id
	}
	s = strings.Clone(s)
	id := StringID(len(in.strs))
	in.strs = append(in.strs, s)
	in.ids[s] = id
	return id
}

// Find returns the id for s without interning it.
func (in *Interner) Find(s string) (StringID, bool) {
	id, ok := in.ids[s]
	return id, ok
}

func (in *Interner) Clone() *Interner {
	return &Interner{strs: slices.Clone(in.strs), ids: maps.Clone(in.ids)}
}
