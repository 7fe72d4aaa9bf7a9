package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"kwarg/internal/diag"
)

// textDocumentCodeAction offers the fixes attached to diagnostics that
// overlap the requested range. Fixes touching other files are skipped.
func (s *Server) textDocumentCodeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI
	a := s.result(uri)
	if a == nil || a.file() == nil {
		return nil, nil
	}
	s.mu.Lock()
	doc, ok := s.docs[uri]
	stale := !ok || doc.version != a.version
	s.mu.Unlock()
	if stale {
		return nil, nil
	}

	kind := protocol.CodeActionKind(protocol.CodeActionKindQuickFix)
	var actions []protocol.CodeAction
	for i := range a.raw {
		if !rangesOverlap(a.diagnostics[i].Range, params.Range) {
			continue
		}
		for _, f := range a.raw[i].OrderedFixes() {
			edits, ok := a.textEdits(f)
			if !ok {
				continue
			}
			preferred := f.IsPreferred
			actions = append(actions, protocol.CodeAction{
				Title:       f.Title,
				Kind:        &kind,
				Diagnostics: []protocol.Diagnostic{a.diagnostics[i]},
				IsPreferred: &preferred,
				Edit: &protocol.WorkspaceEdit{
					Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
				},
			})
		}
	}
	return actions, nil
}

func (a *analysis) textEdits(f diag.Fix) ([]protocol.TextEdit, bool) {
	file := a.file()
	out := make([]protocol.TextEdit, 0, len(f.Edits))
	for _, e := range f.Edits {
		current, ok := file.Slice(e.Span)
		if !ok || (e.OldText != "" && current != e.OldText) {
			return nil, false
		}
		out = append(out, protocol.TextEdit{
			Range:   rangeForSpan(file, e.Span),
			NewText: e.NewText,
		})
	}
	return out, len(out) > 0
}
