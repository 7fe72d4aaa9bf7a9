// Package rewrite drives declaration parsing and call expansion over whole
// files. A Session owns one declaration registry; files are processed in
// the order given, and a declaration is visible to every call that follows
// it in that order.
package rewrite

import (
	"kwarg/internal/decl"
	"kwarg/internal/diag"
	"kwarg/internal/expand"
	"kwarg/internal/lexer"
	"kwarg/internal/source"
	"kwarg/internal/tree"
)

type Stats struct {
	Declarations int
	Expanded     int
	Failed       int
	Defaulted    int
	DeepestNest  int
}

func (s *Stats) Add(o Stats) {
	s.Declarations += o.Declarations
	s.Expanded += o.Expanded
	s.Failed += o.Failed
	s.Defaulted += o.Defaulted
	s.DeepestNest = max(s.DeepestNest, o.DeepestNest)
}

// Result is the outcome of processing one file.
type Result struct {
	File   source.FileID
	Output string
	// Decls lists the declarations this file registered.
	Decls  []*decl.Declaration
	Stats  Stats
	Errors int
	// Repeats counts diagnostics dropped as duplicates of one already
	// reported for this file.
	Repeats int
}

type Session struct {
	opts     Options
	registry *decl.Registry
	expander expand.Expander
	reporter diag.Reporter
	stats    Stats
}

// NewSession creates a session over registry. A nil registry gets a fresh
// one with the overwrite policy. r may be nil.
func NewSession(registry *decl.Registry, opts Options, r diag.Reporter) *Session {
	if registry == nil {
		registry = decl.NewRegistry(decl.PolicyOverwrite)
	}
	opts = opts.withDefaults()
	return &Session{
		opts:     opts,
		registry: registry,
		expander: expand.Expander{Suggest: opts.Suggest},
		reporter: r,
	}
}

func (s *Session) Registry() *decl.Registry { return s.registry }

func (s *Session) Options() Options { return s.opts }

// Stats accumulates over every file processed so far.
func (s *Session) Stats() Stats { return s.stats }

// Process lexes, groups and rewrites file. Problems are reported to the
// session reporter and counted in Result.Errors; the output is always
// produced. A default that fails the same way at several call sites is
// reported once.
func (s *Session) Process(file *source.File) *Result {
	dedup := diag.NewDedupReporter(s.reporter)
	counter := &errorCounter{next: dedup}
	toks := lexer.New(file, lexer.Options{Reporter: counter}).All()
	f := tree.Build(toks, counter)

	w := &walker{s: s, rep: counter, res: &Result{File: file.ID}, budget: s.opts.MaxExpansions}
	var p tree.Printer
	w.nodes(&p, f.Nodes, 0)
	p.Token(f.EOF)

	w.res.Output = p.String()
	w.res.Errors = counter.errors
	w.res.Repeats = dedup.Suppressed()
	s.stats.Add(w.res.Stats)
	return w.res
}

// Prelude processes file for its declarations only.
func (s *Session) Prelude(file *source.File) *Result {
	res := s.Process(file)
	res.Output = ""
	return res
}

type errorCounter struct {
	next   diag.Reporter
	errors int
}

func (c *errorCounter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	if sev >= diag.SevError {
		c.errors++
	}
	if c.next != nil {
		c.next.Report(code, sev, primary, msg, notes, fixes)
	}
}
