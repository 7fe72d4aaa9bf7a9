package expand

import (
	"fmt"

	"kwarg/internal/decl"
	"kwarg/internal/diag"
	"kwarg/internal/fix"
	"kwarg/internal/token"
	"kwarg/internal/tree"
)

const (
	FixRenameArgument = "expand.rename-argument"
	FixRemoveComma    = "expand.remove-comma"
)

// Expander rewrites invocations against their declarations.
type Expander struct {
	// Suggest adds a "did you mean" note and a rename fix to unknown
	// argument name errors.
	Suggest bool
}

type slotState uint8

const (
	slotUnbound slotState = iota
	slotBound
	slotDefaulted
)

type slot struct {
	state slotState
	value []tree.Node
}

// Expand binds the arguments of inv to the parameters of d and returns the
// positional call. The first problem found aborts the site; the error is a
// *diag.Diagnostic.
func (e Expander) Expand(d *decl.Declaration, inv Invocation) (*Call, error) {
	n := d.Arity()
	slots := make([]slot, n)
	for i, p := range d.Params {
		if !p.Required() {
			slots[i] = slot{state: slotDefaulted, value: p.Default}
		}
	}

	var (
		foundKeyword bool
		lastKeyword  token.Token
		nextSlot     int
	)

	var nodes []tree.Node
	if inv.Args != nil {
		nodes = inv.Args.Nodes
	}
	la := tree.NewLookahead(nodes)

	for !la.Done() {
		if name, ok := la.KeywordHead(); ok {
			idx := d.Index(name.Text)
			if idx < 0 {
				return nil, e.unknownName(d, name)
			}
			la.Advance()
			eq, _ := la.Current()
			la.Advance()

			value := la.CollectUntilComma()
			if len(value) == 0 {
				if comma, ok := la.Current(); ok {
					return nil, strayComma(comma.Leaf)
				}
				return nil, diag.NewError(diag.ExpEmptyArgument, eq.Span(),
					"expected argument value after `=`")
			}
			foundKeyword = true
			lastKeyword = name
			slots[idx] = slot{state: slotBound, value: value}
			la.EatComma()
			continue
		}

		cur, _ := la.Current()
		if foundKeyword {
			return nil, diag.NewError(diag.ExpOrderingViolation, cur.Span(),
				"positional arguments must precede keyword arguments").
				WithNotef(lastKeyword.Span, "keyword argument `%s` given here", lastKeyword.Text)
		}
		if nextSlot == n {
			value := la.CollectUntilComma()
			at := cur.Span()
			if len(value) > 0 {
				at = tree.SpanOf(value)
			}
			return nil, diag.Errorf(diag.ExpArityExceeded, at,
				"too many arguments passed to `%s` (expected %d)", d.Name, n)
		}

		value := la.CollectUntilComma()
		if len(value) == 0 {
			return nil, strayComma(cur.Leaf)
		}
		slots[nextSlot] = slot{state: slotBound, value: value}
		nextSlot++
		la.EatComma()
	}

	call := &Call{
		Decl:   d,
		Target: inv.Name,
		Args:   make([]Argument, n),
		Span:   inv.Span,
	}
	for i, s := range slots {
		p := d.Params[i]
		if s.state == slotUnbound {
			return nil, diag.Errorf(diag.ExpMissingArgument, inv.Span,
				"argument `%s` is required, but not given a value", p.Name).
				WithNotef(p.NameTok.Span, "parameter `%s` declared here", p.Name)
		}
		call.Args[i] = Argument{
			Index:     i,
			Param:     p.Name,
			Value:     s.value,
			Defaulted: s.state == slotDefaulted,
		}
	}
	return call, nil
}

func strayComma(comma token.Token) *diag.Diagnostic {
	return diag.NewError(diag.ExpEmptyArgument, comma.Span, "unexpected token: `,`").
		WithFix(fix.DeleteToken("remove the extra comma", comma,
			fix.AtSite(FixRemoveComma, comma.Span), fix.Preferred()))
}

func (e Expander) unknownName(d *decl.Declaration, name token.Token) *diag.Diagnostic {
	x := diag.NewError(diag.ExpUnknownArgument, name.Span, "unknown argument name")
	if d.Target.Text != "" {
		x.WithNotef(d.Target.Span, "`%s` is declared here", d.Name)
	}
	if !e.Suggest {
		return x
	}
	best, ok := closestName(decl.NormalizeName(name.Text), d.ParamNames())
	if !ok {
		return x
	}
	x.WithNotef(name.Span, "did you mean `%s`?", best)
	x.WithFix(fix.ReplaceToken(fmt.Sprintf("rename to `%s`", best), name, best,
		fix.AtSite(FixRenameArgument, name.Span),
		fix.WithApplicability(diag.FixApplicabilitySafeWithHeuristics),
		fix.Preferred()))
	return x
}
