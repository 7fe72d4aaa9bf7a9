package lexer

import (
	"kwarg/internal/diag"
	"kwarg/internal/token"
)

// scanString scans "..." with backslash escapes. Escapes are not validated
// here; the text is copied through verbatim. Strings may span lines.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '"' {
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp.Start, sp.End)}
		}
		if b == '\\' {
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp.Start, sp.End)}
}

// scanChar scans 'x' and '\n'. A quote followed by an identifier and no
// closing quote ('a, 'outer) is a label and lexes as a CharLit of its own
// text, so it still round-trips.
func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()

	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: lx.text(sp.Start, sp.End)}
	}

	switch b := lx.cursor.Peek(); {
	case lx.cursor.EOF() || b == '\n':
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnterminatedChar, sp, "unterminated char literal")
		return emit(token.Invalid)
	case b == '\\':
		lx.cursor.Bump()
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\'' && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
	default:
		r, _ := lx.peekRune()
		lx.bumpRune()
		if lx.cursor.Peek() != '\'' && isIdentStart(r) {
			for isIdentContinueByte(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			if lx.cursor.Peek() != '\'' {
				return emit(token.CharLit)
			}
		}
	}

	if !lx.cursor.Eat("'") {
		lx.errLex(diag.LexUnterminatedChar, lx.cursor.SpanFrom(start), "unterminated char literal")
		return emit(token.Invalid)
	}
	return emit(token.CharLit)
}
