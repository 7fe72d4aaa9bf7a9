package lexer

import (
	"kwarg/internal/diag"
	"kwarg/internal/source"
)

type Options struct {
	// Reporter may be nil; errors are then dropped and lexing continues.
	Reporter diag.Reporter
	// MaxTokenLength overrides maxTokenLength when positive.
	MaxTokenLength int
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil, nil)
	}
}
