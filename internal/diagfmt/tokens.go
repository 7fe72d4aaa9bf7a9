package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"kwarg/internal/source"
	"kwarg/internal/token"
)

// TriviaOutput is one piece of leading trivia in JSON token dumps.
type TriviaOutput struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type TokenOutput struct {
	Kind string      `json:"kind"`
	Text string      `json:"text,omitempty"`
	Span source.Span `json:"span"`
	// Depth is the delimiter nesting the token sits in; a group's
	// delimiters share the depth of the group's surroundings.
	Depth   int            `json:"depth"`
	Leading []TriviaOutput `json:"leading,omitempty"`
}

// tokenDepths tracks delimiter nesting without validating it; unbalanced
// closers never take the depth below zero.
func tokenDepths(tokens []token.Token) []int {
	depths := make([]int, len(tokens))
	depth := 0
	for i, tok := range tokens {
		if tok.Kind.IsCloseDelim() && depth > 0 {
			depth--
		}
		depths[i] = depth
		if tok.Kind.IsOpenDelim() {
			depth++
		}
	}
	return depths
}

// FormatTokensPretty prints one token per line: position, nesting, kind,
// text and the kinds of its leading trivia.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	depths := tokenDepths(tokens)
	for i, tok := range tokens {
		start, end := fs.Resolve(tok.Span)

		pos := fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
		line := fmt.Sprintf("%4d  %-13s %s%-13s", i+1, pos, strings.Repeat("  ", depths[i]), tok.Kind.String())
		if tok.Text != "" {
			line += fmt.Sprintf(" %q", tok.Text)
		}
		if len(tok.Leading) > 0 {
			kinds := make([]string, len(tok.Leading))
			for j, tr := range tok.Leading {
				kinds[j] = tr.Kind.String()
			}
			line += " [" + strings.Join(kinds, " ") + "]"
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON encodes the token stream, trivia text included, as a
// JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	depths := tokenDepths(tokens)
	output := make([]TokenOutput, 0, len(tokens))
	for i, tok := range tokens {
		out := TokenOutput{
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Span:  tok.Span,
			Depth: depths[i],
		}
		for _, tr := range tok.Leading {
			out.Leading = append(out.Leading, TriviaOutput{Kind: tr.Kind.String(), Text: tr.Text})
		}
		output = append(output, out)
		if tok.Kind == token.EOF {
			break
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
