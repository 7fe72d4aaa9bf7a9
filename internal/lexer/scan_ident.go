package lexer

import (
	"unicode/utf8"

	"kwarg/internal/token"
)

// scanIdent scans an identifier. There are no reserved words: the
// declaration keyword is an ordinary identifier that the rewriter recognises.
// A lone "_" is an Underscore token.
func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Mark()
	if r, size := lx.peekRune(); size == 0 || !isIdentStart(r) {
		return lx.scanOperatorOrPunct()
	}
	lx.bumpRune()
	for {
		if b := lx.cursor.Peek(); isIdentContinueByte(b) {
			lx.cursor.Bump()
			continue
		}
		r, size := lx.peekRune()
		if size == 0 || r < utf8.RuneSelf || !isIdentContinue(r) {
			break
		}
		lx.cursor.Advance(size)
	}

	sp := lx.cursor.SpanFrom(start)
	kind := token.Ident
	if sp.Len() == 1 && lx.file.Content[sp.Start] == '_' {
		kind = token.Underscore
	}
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp.Start, sp.End)}
}
