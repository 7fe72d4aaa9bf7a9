package lexer

import (
	"unicode/utf8"

	"kwarg/internal/diag"
	"kwarg/internal/token"
)

// scanNumber handles 0, 123, 0b.., 0o.., 0x.., 1.0, 1e-3, .5 and trailing
// identifier suffixes such as 10u8 or 1.5f32, which stay in Text.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		kind = token.FloatLit
		lx.eatDigits(isDec)
		if !lx.scanExponent(start) {
			return lx.badNumber(start, "expected digit after exponent")
		}
		return lx.finishNumber(start, kind)
	}

	if lx.cursor.Peek() == '0' {
		if base, ok := lx.cursor.PeekAt(1); ok {
			var digit func(byte) bool
			switch base {
			case 'b', 'B':
				digit = func(b byte) bool { return b == '0' || b == '1' }
			case 'o', 'O':
				digit = func(b byte) bool { return b >= '0' && b <= '7' }
			case 'x', 'X':
				digit = isHex
			}
			if digit != nil {
				lx.cursor.Bump()
				lx.cursor.Bump()
				if !digit(lx.cursor.Peek()) && lx.cursor.Peek() != '_' {
					return lx.badNumber(start, "expected digits after base prefix")
				}
				lx.eatDigits(digit)
				return lx.finishNumber(start, kind)
			}
		}
	}

	lx.eatDigits(isDec)

	if lx.cursor.Peek() == '.' {
		next, ok := lx.cursor.PeekAt(1)
		switch {
		case ok && (next == '.' || next == '='):
			// range operator, not a fraction
		case ok && (isIdentStartByte(next) || next >= utf8.RuneSelf):
			// method call or field access: 1.max(2)
		default:
			lx.cursor.Bump()
			kind = token.FloatLit
			lx.eatDigits(isDec)
		}
	}

	if !lx.scanExponent(start) {
		return lx.badNumber(start, "expected digit after exponent")
	}
	if lx.sawExponent {
		kind = token.FloatLit
	}
	return lx.finishNumber(start, kind)
}

func (lx *Lexer) eatDigits(digit func(byte) bool) {
	for b := lx.cursor.Peek(); digit(b) || b == '_'; b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
}

// scanExponent consumes [eE][+-]?digits. It returns false on a dangling
// exponent marker.
func (lx *Lexer) scanExponent(start Mark) bool {
	lx.sawExponent = false
	b := lx.cursor.Peek()
	if b != 'e' && b != 'E' {
		return true
	}
	save := lx.cursor.Mark()
	lx.cursor.Bump()
	if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
		lx.cursor.Bump()
	} else if !isDec(lx.cursor.Peek()) {
		// 1else / 2em: treat the letters as a suffix
		lx.cursor.Reset(save)
		return true
	}
	if !isDec(lx.cursor.Peek()) {
		return false
	}
	lx.eatDigits(isDec)
	lx.sawExponent = true
	return true
}

// finishNumber eats an identifier suffix and emits the literal.
func (lx *Lexer) finishNumber(start Mark, kind token.Kind) token.Token {
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp.Start, sp.End)}
}

func (lx *Lexer) badNumber(start Mark, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexBadNumber, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp.Start, sp.End)}
}
