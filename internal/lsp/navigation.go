package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"kwarg/internal/decl"
	"kwarg/internal/lexer"
	"kwarg/internal/token"
)

// identAt returns the identifier token covering the position, if any.
func (a *analysis) identAt(pos protocol.Position) (token.Token, bool) {
	file := a.file()
	if file == nil {
		return token.Token{}, false
	}
	off := offsetForPosition(file, pos)
	lx := lexer.New(file, lexer.Options{})
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF || tok.Span.Start > off {
			return token.Token{}, false
		}
		if tok.IsIdent() && off <= tok.Span.End {
			return tok, true
		}
	}
}

func (a *analysis) declAt(pos protocol.Position) (*decl.Declaration, token.Token, bool) {
	tok, ok := a.identAt(pos)
	if !ok {
		return nil, tok, false
	}
	d, ok := a.decls[decl.NormalizeName(tok.Text)]
	return d, tok, ok
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	a := s.result(params.TextDocument.URI)
	if a == nil {
		return nil, nil
	}
	d, tok, ok := a.declAt(params.Position)
	if !ok {
		return nil, nil
	}
	r := rangeForSpan(a.file(), tok.Span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: hoverText(d),
		},
		Range: &r,
	}, nil
}

func hoverText(d *decl.Declaration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "```\n%s\n```\n", d.Signature())
	required := 0
	for _, p := range d.Params {
		if p.Required() {
			required++
		}
	}
	fmt.Fprintf(&b, "%d parameter(s), %d required", d.Arity(), required)
	return b.String()
}

func (s *Server) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	a := s.result(uri)
	if a == nil {
		return nil, nil
	}
	d, _, ok := a.declAt(params.Position)
	if !ok {
		return nil, nil
	}
	target := d.Target.Span
	file := a.fs.Get(target.File)
	loc := protocol.Location{URI: uri, Range: rangeForSpan(file, target)}
	if target.File != a.fileID {
		loc.URI = pathToURI(file.Path)
	}
	return loc, nil
}
