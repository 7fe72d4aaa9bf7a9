package rewrite

import (
	"slices"

	"kwarg/internal/decl"
	"kwarg/internal/diag"
	"kwarg/internal/expand"
	"kwarg/internal/source"
	"kwarg/internal/token"
	"kwarg/internal/tree"
)

type walker struct {
	s   *Session
	rep *errorCounter
	res *Result
	// defaulting names the declarations whose defaults are being printed,
	// innermost last.
	defaulting []string
	// budget is the number of expansions left for this file.
	budget    int
	exhausted bool
}

// nodes prints ns into p, stripping declarations and expanding invocations
// at every nesting level. depth counts enclosing expansions; declarations
// are only recognised outside of them.
func (w *walker) nodes(p *tree.Printer, ns []tree.Node, depth int) {
	la := tree.NewLookahead(ns)
	var prev token.Token

	for !la.Done() {
		cur, _ := la.Current()

		if depth == 0 && w.atDeclaration(&la) {
			w.declaration(p, &la)
			prev = token.Token{}
			continue
		}

		if inv, width, d, ok := w.matchInvocation(&la, prev); ok {
			for range width {
				la.Advance()
			}
			w.invocation(p, d, inv, depth)
			prev = token.Token{}
			continue
		}

		if cur.IsGroup() {
			g := cur.Group
			p.Token(g.Open)
			w.nodes(p, g.Nodes, depth)
			if g.Closed() {
				p.Token(g.Close)
			}
			prev = token.Token{}
		} else {
			p.Token(cur.Leaf)
			prev = cur.Leaf
		}
		la.Advance()
	}
}

// atDeclaration matches the keyword followed by a name or a parameter group.
func (w *walker) atDeclaration(la *tree.Lookahead) bool {
	cur, _ := la.Current()
	if !cur.Is(token.Ident) || cur.Leaf.Text != w.s.opts.Keyword {
		return false
	}
	next, ok := la.Next()
	return ok && (next.Is(token.Ident) || next.IsGroupOf(token.LParen))
}

// declaration parses and registers a declaration. Only the keyword's
// leading trivia is kept in the output.
func (w *walker) declaration(p *tree.Printer, la *tree.Lookahead) {
	cur, _ := la.Current()
	kw := cur.Leaf
	la.Advance()
	p.Leading(kw)

	d, err := decl.Parse(kw, la)
	if err != nil {
		w.report(err)
		return
	}
	if _, err := w.s.registry.Insert(d); err != nil {
		w.report(err)
		return
	}
	w.res.Decls = append(w.res.Decls, d)
	w.res.Stats.Declarations++
}

// matchInvocation recognises a call of a declared name at the cursor and
// returns how many nodes it spans.
func (w *walker) matchInvocation(la *tree.Lookahead, prev token.Token) (expand.Invocation, int, *decl.Declaration, bool) {
	rest := la.Rest()
	if len(rest) < 2 || !rest[0].Is(token.Ident) {
		return expand.Invocation{}, 0, nil, false
	}
	name := rest[0].Leaf

	var group tree.Node
	width := 0
	switch w.s.opts.Style {
	case StyleBang:
		if len(rest) < 3 || !rest[1].Is(token.Bang) || !rest[2].IsGroupOf(token.LParen) {
			return expand.Invocation{}, 0, nil, false
		}
		group, width = rest[2], 3
	case StylePlain:
		if !rest[1].IsGroupOf(token.LParen) {
			return expand.Invocation{}, 0, nil, false
		}
		if prev.Kind == token.Dot || (prev.Kind == token.Ident && slices.Contains(w.s.opts.SkipAfter, prev.Text)) {
			return expand.Invocation{}, 0, nil, false
		}
		group, width = rest[1], 2
	}
	if !group.Group.Closed() {
		return expand.Invocation{}, 0, nil, false
	}

	d, ok := w.s.registry.Lookup(name.Text)
	if !ok {
		return expand.Invocation{}, 0, nil, false
	}
	return expand.Invocation{
		Name: name,
		Args: group.Group,
		Span: name.Span.Cover(group.Span()),
	}, width, d, true
}

// invocation prints the positional form of inv, or the placeholder when it
// cannot be expanded.
func (w *walker) invocation(p *tree.Printer, d *decl.Declaration, inv expand.Invocation, depth int) {
	p.Leading(inv.Name)

	if slices.Contains(w.defaulting, d.Name) {
		w.report(diag.Errorf(diag.ExpRecursionLimit, inv.Span,
			"`%s` expands itself through its own default", d.Name).
			WithNotef(d.Target.Span, "`%s` is declared here", d.Name))
		w.fail(p)
		return
	}
	if depth >= w.s.opts.MaxDepth {
		w.report(diag.Errorf(diag.ExpRecursionLimit, inv.Span,
			"expansion of `%s` exceeds the maximum depth of %d", d.Name, w.s.opts.MaxDepth))
		w.fail(p)
		return
	}
	if w.budget <= 0 {
		if !w.exhausted {
			w.exhausted = true
			w.report(diag.Errorf(diag.ExpRecursionLimit, inv.Span,
				"file needs more than %d expansions; remaining call sites are left unexpanded", w.s.opts.MaxExpansions))
		}
		w.fail(p)
		return
	}
	w.budget--

	call, err := w.s.expander.Expand(d, inv)
	if err != nil {
		w.report(err)
		w.fail(p)
		return
	}

	w.res.Stats.Expanded++
	w.res.Stats.Defaulted += call.Defaulted()
	w.res.Stats.DeepestNest = max(w.res.Stats.DeepestNest, depth+1)

	p.Raw(call.Render(func(a expand.Argument) string {
		arg := tree.Printer{TrimLeading: true}
		if a.Defaulted {
			w.defaulting = append(w.defaulting, d.Name)
		}
		w.nodes(&arg, a.Value, depth+1)
		if a.Defaulted {
			w.defaulting = w.defaulting[:len(w.defaulting)-1]
		}
		return arg.String()
	}))
}

func (w *walker) fail(p *tree.Printer) {
	w.res.Stats.Failed++
	p.Raw(w.s.opts.Placeholder)
}

func (w *walker) report(err error) {
	d, ok := diag.AsDiagnostic(err)
	if !ok {
		d = diag.NewError(diag.UnknownCode, source.Span{}, err.Error())
	}
	d.Emit(w.rep)
}
