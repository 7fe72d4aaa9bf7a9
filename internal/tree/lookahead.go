package tree

import "kwarg/internal/token"

// Lookahead is a two-node window over one level of a tree. It is a value
// type and never allocates; Collect returns subslices of the input.
type Lookahead struct {
	nodes []Node
	pos   int
}

func NewLookahead(nodes []Node) Lookahead {
	return Lookahead{nodes: nodes}
}

// Current returns the node under the cursor.
func (l *Lookahead) Current() (Node, bool) {
	if l.pos >= len(l.nodes) {
		return Node{}, false
	}
	return l.nodes[l.pos], true
}

// Next returns the node after Current.
func (l *Lookahead) Next() (Node, bool) {
	if l.pos+1 >= len(l.nodes) {
		return Node{}, false
	}
	return l.nodes[l.pos+1], true
}

func (l *Lookahead) Advance() {
	if l.pos < len(l.nodes) {
		l.pos++
	}
}

func (l *Lookahead) Done() bool { return l.pos >= len(l.nodes) }

func (l *Lookahead) Pos() int { return l.pos }

// Rest returns the unconsumed nodes.
func (l *Lookahead) Rest() []Node { return l.nodes[l.pos:] }

// At reports whether Current is a leaf of kind k.
func (l *Lookahead) At(k token.Kind) bool {
	n, ok := l.Current()
	return ok && n.Is(k)
}

// KeywordHead reports whether the window holds `IDENT =` and returns the
// identifier. `==` lexes as its own token, so `a == b` is not a head.
func (l *Lookahead) KeywordHead() (token.Token, bool) {
	cur, ok := l.Current()
	if !ok || !cur.Is(token.Ident) {
		return token.Token{}, false
	}
	next, ok := l.Next()
	if !ok || !next.Is(token.Assign) {
		return token.Token{}, false
	}
	return cur.Leaf, true
}

// CollectUntilComma consumes nodes up to, but not including, the next comma
// on this level and returns them.
func (l *Lookahead) CollectUntilComma() []Node {
	start := l.pos
	for l.pos < len(l.nodes) && !l.nodes[l.pos].Is(token.Comma) {
		l.pos++
	}
	return l.nodes[start:l.pos]
}

// EatComma consumes a comma under the cursor.
func (l *Lookahead) EatComma() (token.Token, bool) {
	if n, ok := l.Current(); ok && n.Is(token.Comma) {
		l.pos++
		return n.Leaf, true
	}
	return token.Token{}, false
}
