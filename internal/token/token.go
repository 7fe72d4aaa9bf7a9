package token

import (
	"strings"

	"kwarg/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, string or char literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, CharLit:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// Is reports whether the token has kind k.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// LeadingText concatenates the text of all leading trivia.
func (t Token) LeadingText() string {
	switch len(t.Leading) {
	case 0:
		return ""
	case 1:
		return t.Leading[0].Text
	}
	var b strings.Builder
	for _, tr := range t.Leading {
		b.WriteString(tr.Text)
	}
	return b.String()
}

// Synthetic builds a token that has no source text of its own; its span
// points at the construct it was generated for.
func Synthetic(k Kind, text string, at source.Span) Token {
	return Token{Kind: k, Span: at, Text: text}
}
