package lexer

import (
	"kwarg/internal/diag"
	"kwarg/internal/token"
)

func isBlank(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}

func isNewline(b byte) bool { return b == '\n' }

// collectLeadingTrivia gathers the trivia before the next token into
// lx.hold. Runs of blanks and runs of newlines each become one entry;
// every comment is its own entry.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = nil
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		switch b := lx.cursor.Peek(); {
		case isBlank(b):
			lx.cursor.BumpWhile(isBlank)
			lx.pushTrivia(token.TriviaSpace, start)
		case isNewline(b):
			lx.cursor.BumpWhile(isNewline)
			lx.pushTrivia(token.TriviaNewline, start)
		case lx.cursor.Eat("//"):
			lx.cursor.SkipLine()
			lx.pushTrivia(token.TriviaLineComment, start)
		case lx.cursor.Eat("/*"):
			lx.skipBlockComment(start)
			lx.pushTrivia(token.TriviaBlockComment, start)
		default:
			return
		}
	}
}

// skipBlockComment consumes the rest of a block comment whose opener is
// already eaten. Block comments nest.
func (lx *Lexer) skipBlockComment(start Mark) {
	for depth := 1; depth > 0; {
		switch {
		case lx.cursor.EOF():
			lx.errLex(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
			return
		case lx.cursor.Eat("/*"):
			depth++
		case lx.cursor.Eat("*/"):
			depth--
		default:
			lx.cursor.Bump()
		}
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{Kind: kind, Span: sp, Text: lx.text(sp.Start, sp.End)})
}
