package decl

import (
	"fmt"
	"sync"

	"kwarg/internal/diag"
	"kwarg/internal/source"
)

// Policy decides what Insert does with a name that is already declared.
type Policy uint8

const (
	PolicyOverwrite Policy = iota
	PolicyError
)

func (p Policy) String() string {
	switch p {
	case PolicyOverwrite:
		return "overwrite"
	case PolicyError:
		return "error"
	}
	return "unknown"
}

// ParsePolicy accepts "overwrite" (or "") and "error".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "overwrite":
		return PolicyOverwrite, nil
	case "error":
		return PolicyError, nil
	}
	return PolicyOverwrite, fmt.Errorf("unknown redeclare policy %q (want overwrite or error)", s)
}

// Registry maps declared names to declarations for one session. Reads may
// run concurrently with each other; writes are exclusive.
type Registry struct {
	mu     sync.RWMutex
	policy Policy
	names  *source.Interner
	decls  map[source.StringID]*Declaration
	order  []source.StringID
}

func NewRegistry(policy Policy) *Registry {
	return &Registry{
		policy: policy,
		names:  source.NewInterner(),
		decls:  make(map[source.StringID]*Declaration),
	}
}

func (r *Registry) Policy() Policy { return r.policy }

// Insert registers d. Under PolicyOverwrite it returns the replaced
// declaration, if any. Under PolicyError a redeclaration is rejected with a
// *diag.Diagnostic pointing at the new target and noting the old one.
func (r *Registry) Insert(d *Declaration) (*Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.names.Intern(d.Name)
	prev, exists := r.decls[id]
	if exists && r.policy == PolicyError {
		return prev, diag.Errorf(diag.SynDeclRedeclared, d.Target.Span, "`%s` is already declared", d.Name).
			WithNote(prev.Target.Span, "previous declaration is here")
	}
	if !exists {
		r.order = append(r.order, id)
	}
	r.decls[id] = d
	return prev, nil
}

// Lookup returns the declaration for name.
func (r *Registry) Lookup(name string) (*Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names.Find(NormalizeName(name))
	if !ok {
		return nil, false
	}
	d, ok := r.decls[id]
	return d, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decls)
}

// All returns the declarations in first-declared order.
func (r *Registry) All() []*Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Declaration, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.decls[id])
	}
	return out
}

// Clone returns an independent registry holding the same declarations.
// Declarations themselves are shared; they are immutable.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := &Registry{
		policy: r.policy,
		names:  r.names.Clone(),
		decls:  make(map[source.StringID]*Declaration, len(r.decls)),
		order:  append([]source.StringID(nil), r.order...),
	}
	for id, d := range r.decls {
		out.decls[id] = d
	}
	return out
}
