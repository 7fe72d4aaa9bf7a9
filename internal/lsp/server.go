// Package lsp serves kwarg diagnostics, hovers, definitions and quick
// fixes over the Language Server Protocol.
package lsp

import (
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "kwarg"

var log = commonlog.GetLogger("kwarg.lsp")

// Server keeps the open documents and their latest analysis.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	mu       sync.Mutex
	docs     map[protocol.DocumentUri]*document
	results  map[protocol.DocumentUri]*analysis
	timers   map[protocol.DocumentUri]*time.Timer
	root     string
	debounce time.Duration
	maxDiags int
}

// Options tunes a Server. Zero values pick the defaults.
type Options struct {
	Debounce       time.Duration
	MaxDiagnostics int
}

func NewServer(version string, opts Options) *Server {
	s := &Server{
		version:  version,
		docs:     make(map[protocol.DocumentUri]*document),
		results:  make(map[protocol.DocumentUri]*analysis),
		timers:   make(map[protocol.DocumentUri]*time.Timer),
		debounce: opts.Debounce,
		maxDiags: opts.MaxDiagnostics,
	}
	if s.maxDiags <= 0 {
		s.maxDiags = 200
	}

	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentDidSave:    s.textDocumentDidSave,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentCodeAction: s.textDocumentCodeAction,
	}
	s.server = server.NewServer(&s.handler, lsName, false)
	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := ""
	if params.RootURI != nil && *params.RootURI != "" {
		root = uriToPath(*params.RootURI)
	} else if params.RootPath != nil {
		root = *params.RootPath
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	log.Infof("initialize: root=%q", root)

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// schedule analyses uri after the debounce delay; with no delay it runs
// inline.
func (s *Server) schedule(ctx *glsp.Context, uri protocol.DocumentUri) {
	if s.debounce <= 0 {
		s.refresh(ctx, uri)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[uri]; ok {
		t.Stop()
	}
	s.timers[uri] = time.AfterFunc(s.debounce, func() {
		s.refresh(ctx, uri)
	})
}

func (s *Server) refresh(ctx *glsp.Context, uri protocol.DocumentUri) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	var snapshot document
	if ok {
		snapshot = *doc
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	a := s.analyze(uri, snapshot)

	s.mu.Lock()
	if cur, still := s.docs[uri]; !still || cur.version != snapshot.version {
		// a newer edit is on its way
		s.mu.Unlock()
		return
	}
	s.results[uri] = a
	s.mu.Unlock()
	publish(ctx, uri, a.diagnostics)
}

func (s *Server) result(uri protocol.DocumentUri) *analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[uri]
}

func publish(ctx *glsp.Context, uri protocol.DocumentUri, diags []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
