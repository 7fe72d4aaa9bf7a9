package fix

import (
	"fmt"

	"kwarg/internal/diag"
	"kwarg/internal/source"
	"kwarg/internal/token"
)

// Option mutates a fix during construction.
type Option func(*diag.Fix)

func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) { f.Applicability = app }
}

// Preferred marks the fix editors should offer first.
func Preferred() Option {
	return func(f *diag.Fix) { f.IsPreferred = true }
}

// WithID sets the identifier `kwarg fix --id` selects on.
func WithID(id string) Option {
	return func(f *diag.Fix) { f.ID = id }
}

// AtSite derives the ID from kind and the location being edited, as
// kind@file:offset, so every site gets its own ID.
func AtSite(kind string, at source.Span) Option {
	return WithID(fmt.Sprintf("%s@%d:%d", kind, at.File, at.Start))
}

func build(title string, edit diag.TextEdit, opts []Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{edit},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// DeleteSpan removes the text covered by span. expect guards the edit.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) diag.Fix {
	return ReplaceSpan(title, span, "", expect, opts...)
}

// ReplaceSpan replaces the text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return build(title, diag.TextEdit{Span: span, NewText: newText, OldText: expect}, opts)
}

// DeleteToken removes tok, guarded by its text. Leading trivia stays.
func DeleteToken(title string, tok token.Token, opts ...Option) diag.Fix {
	return DeleteSpan(title, tok.Span, tok.Text, opts...)
}

// ReplaceToken swaps tok's text for newText, guarded by the old text.
func ReplaceToken(title string, tok token.Token, newText string, opts ...Option) diag.Fix {
	return ReplaceSpan(title, tok.Span, newText, tok.Text, opts...)
}
