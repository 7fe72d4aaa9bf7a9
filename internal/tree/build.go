package tree

import (
	"kwarg/internal/diag"
	"kwarg/internal/source"
	"kwarg/internal/token"
)

// Build groups toks (which must end with EOF, as produced by lexer.All) into
// a tree. Unclosed openers and stray closers are reported to r; the tree is
// still complete and still prints back to the original text.
func Build(toks []token.Token, r diag.Reporter) *File {
	root := &Group{}
	stack := []*Group{root}
	f := &File{}

	top := func() *Group { return stack[len(stack)-1] }

	// closeUnclosed pops down to (not including) depth and reports each popped group.
	closeUnclosed := func(depth int) {
		for len(stack) > depth {
			g := top()
			stack = stack[:len(stack)-1]
			reportUnclosed(r, g)
			parent := top()
			parent.Nodes = append(parent.Nodes, GroupNode(g))
		}
	}

	for _, tok := range toks {
		switch {
		case tok.Kind == token.EOF:
			closeUnclosed(1)
			f.EOF = tok
			f.Nodes = root.Nodes
			return f

		case tok.Kind.IsOpenDelim():
			stack = append(stack, &Group{Open: tok})

		case tok.Kind.IsCloseDelim():
			depth := matchingDepth(stack, tok.Kind)
			if depth < 0 {
				diag.Errorf(diag.SynUnbalancedDelimiter, tok.Span,
					"unexpected closing delimiter `%s`", tok.Text).Emit(r)
				top().Nodes = append(top().Nodes, LeafNode(tok))
				continue
			}
			closeUnclosed(depth + 1)
			g := top()
			stack = stack[:len(stack)-1]
			g.Close = tok
			top().Nodes = append(top().Nodes, GroupNode(g))

		default:
			top().Nodes = append(top().Nodes, LeafNode(tok))
		}
	}

	// no EOF token supplied
	closeUnclosed(1)
	f.Nodes = root.Nodes
	if len(toks) > 0 {
		last := toks[len(toks)-1].Span
		f.EOF = token.Synthetic(token.EOF, "", source.Span{File: last.File, Start: last.End, End: last.End})
	}
	return f
}

// matchingDepth finds the innermost open group closed by closer.
func matchingDepth(stack []*Group, closer token.Kind) int {
	for i := len(stack) - 1; i >= 1; i-- {
		if stack[i].Open.Kind.Closer() == closer {
			return i
		}
	}
	return -1
}

func reportUnclosed(r diag.Reporter, g *Group) {
	diag.Errorf(diag.SynUnclosedDelimiter, g.Open.Span, "unclosed delimiter `%s`", g.Open.Text).Emit(r)
}
