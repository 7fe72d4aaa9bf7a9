package expand

import (
	"strings"

	"kwarg/internal/decl"
	"kwarg/internal/source"
	"kwarg/internal/token"
	"kwarg/internal/tree"
)

// Invocation is one call site: the callee identifier and its argument group.
type Invocation struct {
	Name token.Token
	Args *tree.Group
	// Span covers the whole call site, including a `!` in bang style.
	Span source.Span
}

// Argument is the value resolved for one parameter.
type Argument struct {
	Index int
	Param string
	Value []tree.Node
	// Defaulted is set when Value came from the declaration.
	Defaulted bool
}

// Call is the rewritten call: Target followed by one argument per
// parameter, in declaration order.
type Call struct {
	Decl   *decl.Declaration
	Target token.Token
	Args   []Argument
	Span   source.Span
}

// String renders the call as `name(a, b)`.
func (c *Call) String() string {
	return c.Render(func(a Argument) string { return tree.Text(a.Value) })
}

// Render prints the call as `name(a, b)`, formatting each argument with
// arg.
func (c *Call) Render(arg func(Argument) string) string {
	var b strings.Builder
	b.WriteString(c.Target.Text)
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg(a))
	}
	b.WriteByte(')')
	return b.String()
}

// Defaulted counts the arguments filled from defaults.
func (c *Call) Defaulted() int {
	n := 0
	for _, a := range c.Args {
		if a.Defaulted {
			n++
		}
	}
	return n
}
