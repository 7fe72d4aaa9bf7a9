// Package decl parses keyword-argument declarations and keeps them in a
// per-session registry.
package decl

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"kwarg/internal/source"
	"kwarg/internal/token"
	"kwarg/internal/tree"
)

// Parameter is one declared parameter. Default is nil for required
// parameters; it is never empty otherwise.
type Parameter struct {
	Name    string
	NameTok token.Token
	Default []tree.Node
}

func (p Parameter) Required() bool { return p.Default == nil }

// Declaration binds a target name to its ordered parameters. It is plain
// data and is not modified after Parse returns it.
type Declaration struct {
	Name    string
	Target  token.Token
	Keyword token.Token
	Params  []Parameter
	// Span covers the keyword through the closing parenthesis and an optional `;`.
	Span source.Span
}

func (d *Declaration) Arity() int { return len(d.Params) }

// Index returns the position of the parameter called name, or -1.
func (d *Declaration) Index(name string) int {
	name = NormalizeName(name)
	for i := range d.Params {
		if d.Params[i].Name == name {
			return i
		}
	}
	return -1
}

func (d *Declaration) ParamNames() []string {
	out := make([]string, len(d.Params))
	for i := range d.Params {
		out[i] = d.Params[i].Name
	}
	return out
}

// Signature renders the declaration as `name(a, b = default)`.
func (d *Declaration) Signature() string {
	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if !p.Required() {
			b.WriteString(" = ")
			b.WriteString(tree.Text(p.Default))
		}
	}
	b.WriteByte(')')
	return b.String()
}

// NormalizeName brings identifiers to NFC so that visually identical
// spellings compare equal.
func NormalizeName(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
