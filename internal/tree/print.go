package tree

import (
	"strings"

	"kwarg/internal/token"
)

// Printer renders tokens back to text. With TrimLeading set, the leading
// trivia of the first token written is dropped.
type Printer struct {
	b           strings.Builder
	TrimLeading bool
	wroteAny    bool
}

// Token writes tok with its leading trivia.
func (p *Printer) Token(tok token.Token) {
	p.Leading(tok)
	p.Raw(tok.Text)
}

// Leading writes only the leading trivia of tok. It writes nothing while
// TrimLeading is set and no text has been written yet.
func (p *Printer) Leading(tok token.Token) {
	if p.TrimLeading && !p.wroteAny {
		return
	}
	for _, tr := range tok.Leading {
		p.b.WriteString(tr.Text)
	}
}

// Raw writes s as is.
func (p *Printer) Raw(s string) {
	p.wroteAny = true
	p.b.WriteString(s)
}

func (p *Printer) Node(n Node) {
	if n.Group == nil {
		p.Token(n.Leaf)
		return
	}
	p.Token(n.Group.Open)
	p.Nodes(n.Group.Nodes)
	if n.Group.Closed() {
		p.Token(n.Group.Close)
	}
}

func (p *Printer) Nodes(ns []Node) {
	for _, n := range ns {
		p.Node(n)
	}
}

func (p *Printer) Len() int { return p.b.Len() }

func (p *Printer) String() string { return p.b.String() }

// Print renders a whole file byte for byte.
func Print(f *File) string {
	var p Printer
	p.Nodes(f.Nodes)
	p.Token(f.EOF)
	return p.String()
}

// Text renders nodes without the first token's leading trivia.
func Text(nodes []Node) string {
	p := Printer{TrimLeading: true}
	p.Nodes(nodes)
	return p.String()
}
