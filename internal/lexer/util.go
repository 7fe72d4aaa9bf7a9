package lexer

import (
	"unicode"
	"unicode/utf8"
)

// peekRune decodes the rune under the cursor; size is 0 at EOF.
func (lx *Lexer) peekRune() (r rune, size int) {
	if lx.cursor.EOF() {
		return utf8.RuneError, 0
	}
	if b := lx.cursor.Peek(); b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRune(lx.cursor.rest())
}

func (lx *Lexer) bumpRune() {
	_, size := lx.peekRune()
	lx.cursor.Advance(size)
}

// digitAt reports whether the byte n ahead is a decimal digit.
func (lx *Lexer) digitAt(n uint32) bool {
	b, ok := lx.cursor.PeekAt(n)
	return ok && isDec(b)
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

// isIdentStart and isIdentContinue accept any Unicode letter; ASCII takes
// the byte path.
func isIdentStart(r rune) bool {
	if r < utf8.RuneSelf {
		return isIdentStartByte(byte(r))
	}
	return unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	if r < utf8.RuneSelf {
		return isIdentContinueByte(byte(r))
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (lx *Lexer) text(start, end uint32) string {
	return string(lx.file.Content[start:end])
}
