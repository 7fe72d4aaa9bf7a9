package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"kwarg/internal/diag"
	"kwarg/internal/source"
)

type palette struct {
	err     *color.Color
	warning *color.Color
	info    *color.Color
	code    *color.Color
	path    *color.Color
	gutter  *color.Color
	caret   *color.Color
	note    *color.Color
	fix     *color.Color
	added   *color.Color
	removed *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		code:    color.New(color.Bold),
		path:    color.New(color.FgWhite, color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgRed, color.Bold),
		note:    color.New(color.FgCyan),
		fix:     color.New(color.FgGreen),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warning, p.info, p.code, p.path, p.gutter, p.caret, p.note, p.fix, p.added, p.removed} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warning
	default:
		return p.info
	}
}

// Pretty renders diagnostics for a terminal: a header line, the offending
// source with a caret underline, then notes and fixes when asked for.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	f := fs.Get(d.Primary.File)
	path := f.FormatPath(opts.PathMode.String(), fs.BaseDir())
	start, end := fs.Resolve(d.Primary)

	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pal.path.Sprintf("%s:%d:%d", path, start.Line, start.Col),
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		pal.code.Sprint(d.Code.ID()),
		d.Message,
	)

	if d.Code != diag.ObsTimings {
		printSnippet(w, f, start, end, opts, pal)
	}

	if opts.ShowNotes {
		for _, note := range d.Notes {
			nf := fs.Get(note.Span.File)
			ns, _ := fs.Resolve(note.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
				pal.note.Sprint("note:"),
				nf.FormatPath(opts.PathMode.String(), fs.BaseDir()), ns.Line, ns.Col,
				note.Msg,
			)
		}
	}

	if opts.ShowFixes {
		for i, fix := range d.OrderedFixes() {
			printFix(w, fs, i+1, fix, opts, pal)
		}
	}
}

func printSnippet(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, pal palette) {
	if start.Line == 0 {
		return
	}
	ctx := uint32(0)
	if opts.Context > 0 {
		ctx = uint32(opts.Context)
	}
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	if maxLine := uint32(len(f.LineIdx)) + 1; last > maxLine {
		last = maxLine
	}

	gutterWidth := len(strconv.FormatUint(uint64(last), 10))
	blank := strings.Repeat(" ", gutterWidth)

	for line := first; line <= last; line++ {
		text := f.GetLine(line)
		if line != start.Line && text == "" && line > start.Line {
			continue
		}
		fmt.Fprintf(w, " %s %s %s\n",
			pal.gutter.Sprintf("%*d", gutterWidth, line),
			pal.gutter.Sprint("|"),
			clipLine(text, opts.Width),
		)
		if line != start.Line {
			continue
		}
		endCol := end.Col
		if end.Line != start.Line {
			endCol = uint32(len(text)) + 1
		}
		fmt.Fprintf(w, " %s %s %s\n",
			blank,
			pal.gutter.Sprint("|"),
			pal.caret.Sprint(caretLine(text, start.Col, endCol)),
		)
	}
}

// caretLine builds an underline for the byte columns [startCol, endCol) of
// text. Tabs are kept so the carets line up with the printed source.
func caretLine(text string, startCol, endCol uint32) string {
	if startCol == 0 {
		startCol = 1
	}
	startByte := min(int(startCol-1), len(text))
	endByte := min(int(max(endCol, startCol)-1), len(text))

	var b strings.Builder
	for _, r := range text[:startByte] {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := runewidth.StringWidth(text[startByte:endByte])
	if width == 0 {
		width = 1
	}
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}

func clipLine(text string, width uint8) string {
	if width == 0 || runewidth.StringWidth(text) <= int(width) {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, int(width), "")
	}
	return runewidth.Truncate(text, int(width), "...")
}

func printFix(w io.Writer, fs *source.FileSet, n int, fix diag.Fix, opts PrettyOpts, pal palette) {
	tags := []string{fix.Applicability.String()}
	if fix.IsPreferred {
		tags = append(tags, "preferred")
	}
	header := fmt.Sprintf("fix #%d: %s [%s]", n, fix.Title, strings.Join(tags, ", "))
	if fix.ID != "" {
		header += " id=" + fix.ID
	}
	fmt.Fprintf(w, "  %s\n", pal.fix.Sprint(header))

	for _, edit := range fix.Edits {
		ef := fs.Get(edit.Span.File)
		es, ee := fs.Resolve(edit.Span)
		fmt.Fprintf(w, "    edit %s:%d:%d-%d:%d apply=%q\n",
			ef.FormatPath(opts.PathMode.String(), fs.BaseDir()),
			es.Line, es.Col, ee.Line, ee.Col,
			edit.NewText,
		)
		if !opts.ShowPreview {
			continue
		}
		preview, err := buildFixEditPreview(fs, edit)
		if err != nil {
			fmt.Fprintf(w, "      preview unavailable: %v\n", err)
			continue
		}
		fmt.Fprintln(w, "      preview:")
		for _, line := range preview.before {
			fmt.Fprintf(w, "        %s\n", pal.removed.Sprint("- "+line))
		}
		for _, line := range preview.after {
			fmt.Fprintf(w, "        %s\n", pal.added.Sprint("+ "+line))
		}
	}
}
