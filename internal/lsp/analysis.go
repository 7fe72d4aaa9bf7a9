package lsp

import (
	"context"
	"path/filepath"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"kwarg/internal/decl"
	"kwarg/internal/diag"
	"kwarg/internal/driver"
	"kwarg/internal/project"
	"kwarg/internal/source"
)

// analysis is one expansion of a document snapshot.
type analysis struct {
	version     protocol.Integer
	fs          *source.FileSet
	fileID      source.FileID
	raw         []diag.Diagnostic
	diagnostics []protocol.Diagnostic
	// decls maps normalized names to the declaration a call at the end of
	// the document would see.
	decls map[string]*decl.Declaration
}

func (a *analysis) file() *source.File {
	if a == nil || a.fs == nil {
		return nil
	}
	return a.fs.Get(a.fileID)
}

func (s *Server) options(path string) driver.Options {
	dir := filepath.Dir(path)
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	if path == "" {
		dir = root
	}

	cfg := project.Default()
	if dir != "" {
		manifest, ok, err := project.LoadManifest(dir)
		switch {
		case err != nil:
			log.Warningf("config for %s: %v", path, err)
		case ok:
			cfg = manifest.Config
		}
	}
	opts, err := driver.OptionsFromConfig(cfg)
	if err != nil {
		log.Warningf("config for %s: %v", path, err)
		opts, _ = driver.OptionsFromConfig(project.Default())
	}
	opts.MaxDiagnostics = s.maxDiags
	opts.Jobs = 1
	return opts
}

func (s *Server) analyze(uri protocol.DocumentUri, doc document) *analysis {
	path := uriToPath(uri)
	name := path
	if name == "" {
		name = uri
	}
	opts := s.options(path)

	a := &analysis{version: doc.version, decls: make(map[string]*decl.Declaration)}
	res, err := driver.ExpandSource(context.Background(), name, []byte(doc.text), opts)
	if err != nil {
		log.Errorf("analysis of %s failed: %v", uri, err)
		a.diagnostics = []protocol.Diagnostic{{
			Severity: severityPtr(protocol.DiagnosticSeverityError),
			Source:   strPtr(lsName),
			Message:  err.Error(),
		}}
		return a
	}
	if len(res.Files) == 0 {
		a.diagnostics = []protocol.Diagnostic{}
		return a
	}

	a.fs = res.FileSet
	a.fileID = res.Files[0].FileID
	for _, d := range res.PreludeDecls {
		a.decls[d.Name] = d
	}
	for _, d := range res.Files[0].Decls {
		a.decls[d.Name] = d
	}

	a.diagnostics = make([]protocol.Diagnostic, 0, res.Bag.Len())
	for _, d := range res.Bag.Items() {
		if d.Primary.File != a.fileID {
			continue
		}
		a.raw = append(a.raw, d)
		a.diagnostics = append(a.diagnostics, a.toProtocol(uri, d))
	}
	log.Debugf("analysed %s: %d diagnostic(s), %d declaration(s)", uri, len(a.diagnostics), len(a.decls))
	return a
}

func (a *analysis) toProtocol(uri protocol.DocumentUri, d diag.Diagnostic) protocol.Diagnostic {
	file := a.file()
	out := protocol.Diagnostic{
		Range:    rangeForSpan(file, d.Primary),
		Severity: severityPtr(toSeverity(d.Severity)),
		Code:     &protocol.IntegerOrString{Value: d.Code.ID()},
		Source:   strPtr(lsName),
		Message:  d.Message,
	}
	for _, note := range d.Notes {
		noteURI := uri
		noteFile := file
		if note.Span.File != a.fileID {
			noteFile = a.fs.Get(note.Span.File)
			noteURI = pathToURI(noteFile.Path)
		}
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: noteURI, Range: rangeForSpan(noteFile, note.Span)},
			Message:  note.Msg,
		})
	}
	return out
}

func toSeverity(sev diag.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diag.SevError:
		return protocol.DiagnosticSeverityError
	case diag.SevWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
