package decl

import (
	"kwarg/internal/diag"
	"kwarg/internal/token"
	"kwarg/internal/tree"
)

const badParamMsg = "expected a sequence of `arg_name` or `arg_name = default_expr`"

// Parse reads `NAME ( params ) [;]` from la, which must be positioned just
// after the declaration keyword. It consumes as much of that shape as is
// present even on failure, so the caller can drop the whole construct.
// Errors are *diag.Diagnostic.
func Parse(keyword token.Token, la *tree.Lookahead) (*Declaration, error) {
	d := &Declaration{Keyword: keyword, Span: keyword.Span}

	var failure *diag.Diagnostic
	fail := func(x *diag.Diagnostic) {
		if failure == nil {
			failure = x
		}
	}

	cur, ok := la.Current()
	switch {
	case ok && cur.Is(token.Ident):
		d.Target = cur.Leaf
		d.Name = NormalizeName(cur.Leaf.Text)
		d.Span = d.Span.Cover(cur.Span())
		la.Advance()
	case ok:
		fail(diag.Errorf(diag.SynDeclExpectName, cur.Span(),
			"expected a name after `%s`", keyword.Text))
	default:
		fail(diag.Errorf(diag.SynDeclExpectName, keyword.Span.EndPoint(),
			"expected a name after `%s`", keyword.Text))
	}

	cur, ok = la.Current()
	if !ok || !cur.IsGroupOf(token.LParen) {
		at := d.Span.EndPoint()
		if ok {
			at = cur.Span()
		}
		fail(diag.NewError(diag.SynDeclExpectParams, at, "expected a parenthesized parameter list"))
		return nil, failure
	}
	group := cur.Group
	d.Span = d.Span.Cover(cur.Span())
	la.Advance()
	if la.At(token.Semicolon) {
		n, _ := la.Current()
		d.Span = d.Span.Cover(n.Span())
		la.Advance()
	}
	if failure != nil {
		return nil, failure
	}

	params, err := parseParams(group)
	if err != nil {
		return nil, err
	}
	d.Params = params
	return d, nil
}

func parseParams(group *tree.Group) ([]Parameter, error) {
	var params []Parameter
	seen := make(map[string]int)
	pl := tree.NewLookahead(group.Nodes)

	for !pl.Done() {
		cur, _ := pl.Current()
		if !cur.Is(token.Ident) {
			return nil, diag.NewError(diag.SynDeclBadParam, cur.Span(), badParamMsg)
		}
		p := Parameter{Name: NormalizeName(cur.Leaf.Text), NameTok: cur.Leaf}
		if prev, dup := seen[p.Name]; dup {
			return nil, diag.Errorf(diag.SynDeclDuplicateParam, cur.Span(),
				"parameter `%s` is declared more than once", p.Name).
				WithNote(params[prev].NameTok.Span, "first declared here")
		}
		pl.Advance()

		switch {
		case pl.At(token.Assign):
			eq, _ := pl.Current()
			pl.Advance()
			def := pl.CollectUntilComma()
			if len(def) == 0 {
				return nil, diag.Errorf(diag.SynDeclEmptyDefault, eq.Span(),
					"expected a default expression for `%s` after `=`", p.Name)
			}
			p.Default = def
		case !pl.Done() && !pl.At(token.Comma):
			bad, _ := pl.Current()
			return nil, diag.NewError(diag.SynDeclBadParam, bad.Span(), badParamMsg)
		}

		seen[p.Name] = len(params)
		params = append(params, p)
		pl.EatComma()
	}
	return params, nil
}
