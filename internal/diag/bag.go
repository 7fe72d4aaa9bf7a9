package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics up to a limit and counts what it refused.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

func NewBag(limit int) *Bag {
	limit = max(limit, 1)
	return &Bag{items: make([]Diagnostic, 0, min(limit, 64)), limit: limit}
}

// Add appends d unless the bag is full. It reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Push appends d even when the bag is full, raising the limit to fit.
func (b *Bag) Push(d Diagnostic) {
	b.items = append(b.items, d)
	b.limit = max(b.limit, len(b.items))
}

func (b *Bag) Cap() int { return b.limit }

// Dropped counts the diagnostics Add refused, merged bags included.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) Len() int { return len(b.items) }

// Items returns the backing slice. Do not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Pointers returns a pointer per diagnostic, as the formatters expect.
func (b *Bag) Pointers() []*Diagnostic {
	out := make([]*Diagnostic, len(b.items))
	for i := range b.items {
		out[i] = &b.items[i]
	}
	return out
}

// Has reports whether any diagnostic is at least sev.
func (b *Bag) Has(sev Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= sev })
}

func (b *Bag) HasErrors() bool   { return b.Has(SevError) }
func (b *Bag) HasWarnings() bool { return b.Has(SevWarning) }

// Filter returns a new bag, with the same limit, holding the diagnostics
// keep accepts.
func (b *Bag) Filter(keep func(*Diagnostic) bool) *Bag {
	out := NewBag(b.limit)
	for i := range b.items {
		if keep(&b.items[i]) {
			out.items = append(out.items, b.items[i])
		}
	}
	return out
}

// Merge appends everything from other, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.limit = max(b.limit, len(b.items))
	b.dropped += other.dropped
}

// Sort orders by file, start, end, severity (desc) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Err returns the first error-level diagnostic as an error, or nil.
func (b *Bag) Err() error {
	i := slices.IndexFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
	if i < 0 {
		return nil
	}
	d := b.items[i]
	return &d
}
