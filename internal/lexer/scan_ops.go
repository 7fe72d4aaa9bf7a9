package lexer

import (
	"kwarg/internal/diag"
	"kwarg/internal/token"
)

type operator struct {
	text string
	kind token.Kind
}

// operators is matched in order, so longer spellings come before their
// prefixes.
var operators = []operator{
	{"..=", token.DotDotEq},
	{"...", token.DotDotDot},
	{"<<=", token.ShlAssign},
	{">>=", token.ShrAssign},
	{"..", token.DotDot},
	{"::", token.ColonColon},
	{":=", token.ColonAssign},
	{"->", token.Arrow},
	{"=>", token.FatArrow},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PercentAssign},
	{"&=", token.AmpAssign},
	{"|=", token.PipeAssign},
	{"^=", token.CaretAssign},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"=", token.Assign},
	{"!", token.Bang},
	{"<", token.Lt},
	{">", token.Gt},
	{"&", token.Amp},
	{"|", token.Pipe},
	{"^", token.Caret},
	{"~", token.Tilde},
	{"?", token.Question},
	{":", token.Colon},
	{";", token.Semicolon},
	{",", token.Comma},
	{".", token.Dot},
	{"(", token.LParen},
	{")", token.RParen},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{"[", token.LBracket},
	{"]", token.RBracket},
	{"@", token.At},
	{"#", token.Hash},
	{"$", token.Dollar},
	{"_", token.Underscore},
}

// scanOperatorOrPunct takes the longest operator at the cursor. Anything
// else is reported and returned as a one-rune Invalid token.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	kind := token.Invalid
	for _, op := range operators {
		if lx.cursor.Eat(op.text) {
			kind = op.kind
			break
		}
	}
	if kind == token.Invalid {
		lx.bumpRune()
	}
	sp := lx.cursor.SpanFrom(start)
	if kind == token.Invalid {
		lx.errLex(diag.LexUnknownChar, sp, "unknown character")
	}
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp.Start, sp.End)}
}
