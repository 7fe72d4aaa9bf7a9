package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"kwarg/internal/source"
)

// listingLine is one row of a short or golden listing:
// `<severity> <code> <path>:<line>:<col> <message>`.
type listingLine struct {
	label string
	code  string
	path  string
	line  uint32
	col   uint32
	msg   string
}

func (l listingLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.label, l.code, l.path, l.line, l.col, l.msg)
}

func compareListingLines(a, b listingLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.line, b.line),
		cmp.Compare(a.col, b.col),
		cmp.Compare(a.label, b.label),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatGoldenDiagnostics lists diags one per line in a stable order for
// golden files. Locations inside prelude files are left out.
func FormatGoldenDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return listDiagnostics(diags, fs, includeNotes, true)
}

// FormatShortDiagnostics is the CLI listing; prelude locations are kept.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return listDiagnostics(diags, fs, includeNotes, false)
}

func listDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes, skipPrelude bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	var lines []listingLine
	add := func(label string, d *Diagnostic, span source.Span, msg string) {
		file, ok := fs.Lookup(span.File)
		if !ok || (skipPrelude && file.Flags.Has(source.FilePrelude)) {
			return
		}
		start, _ := fs.Resolve(span)
		lines = append(lines, listingLine{
			label: label,
			code:  d.Code.ID(),
			path:  listingPath(file.FormatPath("relative", fs.BaseDir())),
			line:  start.Line,
			col:   start.Col,
			msg:   oneLine(msg),
		})
	}
	for _, d := range diags {
		add(d.Severity.Label(), d, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d, n.Span, n.Msg)
			}
		}
	}
	slices.SortStableFunc(lines, compareListingLines)

	rows := make([]string, len(lines))
	for i, l := range lines {
		rows[i] = l.String()
	}
	return strings.Join(rows, "\n")
}

func listingPath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

func oneLine(msg string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg))
}
