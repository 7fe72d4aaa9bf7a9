package lexer

import (
	"fmt"
	"unicode/utf8"

	"kwarg/internal/diag"
	"kwarg/internal/source"
	"kwarg/internal/token"
)

// maxTokenLength bounds a single token; anything longer is almost certainly
// binary input or a runaway literal.
const maxTokenLength = 1 << 16

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token
	hold   []token.Trivia

	sawExponent bool
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next returns the next significant token with its leading trivia attached.
// Trivia before the end of input is attached to EOF, so concatenating every
// token's trivia and text reproduces the file exactly. After EOF it keeps
// returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{
			Kind:    token.EOF,
			Span:    lx.emptySpan(),
			Leading: lx.hold,
		}
		lx.hold = nil
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '_':
		if next, ok := lx.cursor.PeekAt(1); ok && isIdentContinueByte(next) {
			tok = lx.scanIdent()
		} else {
			tok = lx.scanOperatorOrPunct()
		}
	case isIdentStartByte(ch):
		tok = lx.scanIdent()
	case ch >= utf8.RuneSelf:
		tok = lx.scanIdent()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '.' && lx.digitAt(1):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString()
	case ch == '\'':
		tok = lx.scanChar()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	if limit := lx.maxTokenLength(); int(tok.Span.Len()) > limit {
		lx.errLex(diag.LexTokenTooLong, tok.Span, fmt.Sprintf("token exceeds %d bytes", limit))
		lx.cursor.SkipToEnd()
		tok = token.Token{Kind: token.Invalid, Span: tok.Span}
	}

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// All drains the lexer, EOF included.
func (lx *Lexer) All() []token.Token {
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func (lx *Lexer) maxTokenLength() int {
	if lx.opts.MaxTokenLength > 0 {
		return lx.opts.MaxTokenLength
	}
	return maxTokenLength
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
