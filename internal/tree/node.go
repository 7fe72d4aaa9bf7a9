package tree

import (
	"kwarg/internal/source"
	"kwarg/internal/token"
)

// Node is a leaf token or a delimited group. Exactly one is set: Group is nil
// for leaves.
type Node struct {
	Leaf  token.Token
	Group *Group
}

// Group is a delimited sequence. Close has Kind token.Invalid and no text
// when the group was never closed.
type Group struct {
	Open  token.Token
	Close token.Token
	Nodes []Node
}

func LeafNode(tok token.Token) Node { return Node{Leaf: tok} }

func GroupNode(g *Group) Node { return Node{Group: g} }

func (n Node) IsGroup() bool { return n.Group != nil }

// Is reports whether n is a leaf of kind k.
func (n Node) Is(k token.Kind) bool {
	return n.Group == nil && n.Leaf.Kind == k
}

// IsGroupOf reports whether n is a group opened by open.
func (n Node) IsGroupOf(open token.Kind) bool {
	return n.Group != nil && n.Group.Open.Kind == open
}

// First returns the first token of n.
func (n Node) First() token.Token {
	if n.Group != nil {
		return n.Group.Open
	}
	return n.Leaf
}

func (n Node) Span() source.Span {
	if n.Group != nil {
		return n.Group.Span()
	}
	return n.Leaf.Span
}

// Closed reports whether the group saw its closing delimiter.
func (g *Group) Closed() bool {
	return g.Close.Kind != token.Invalid
}

// Delim returns the opening delimiter kind.
func (g *Group) Delim() token.Kind { return g.Open.Kind }

func (g *Group) Span() source.Span {
	sp := g.Open.Span
	if g.Closed() {
		return sp.Cover(g.Close.Span)
	}
	if len(g.Nodes) > 0 {
		return sp.Cover(g.Nodes[len(g.Nodes)-1].Span())
	}
	return sp
}

// Inner returns the span strictly between the delimiters.
func (g *Group) Inner() source.Span {
	end := g.Open.Span.End
	if g.Closed() {
		end = g.Close.Span.Start
	} else if len(g.Nodes) > 0 {
		end = g.Nodes[len(g.Nodes)-1].Span().End
	}
	return source.Span{File: g.Open.Span.File, Start: g.Open.Span.End, End: end}
}

// SpanOf covers every node in nodes. The zero span is returned for an empty slice.
func SpanOf(nodes []Node) source.Span {
	if len(nodes) == 0 {
		return source.Span{}
	}
	return nodes[0].Span().Cover(nodes[len(nodes)-1].Span())
}

// File is a whole token tree together with the EOF token that carries the
// trailing trivia.
type File struct {
	Nodes []Node
	EOF   token.Token
}

// Flatten lists the tokens of nodes in source order. Missing closers are skipped.
func Flatten(nodes []Node) []token.Token {
	var out []token.Token
	var walk func([]Node)
	walk = func(ns []Node) {
		for _, n := range ns {
			if n.Group == nil {
				out = append(out, n.Leaf)
				continue
			}
			out = append(out, n.Group.Open)
			walk(n.Group.Nodes)
			if n.Group.Closed() {
				out = append(out, n.Group.Close)
			}
		}
	}
	walk(nodes)
	return out
}
