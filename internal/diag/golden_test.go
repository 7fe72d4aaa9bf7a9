package diag

import (
	"testing"

	"kwarg/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/golden/sample.kw", []byte("a\nb\n"), 0)
	preludeFile := fs.Add("/workspace/prelude/common.kw", []byte("x\n"), source.FilePrelude)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     ExpUnknownArgument,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: preludeFile, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     SynDeclRedeclared,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "error EXP3001 testdata/golden/sample.kw:1:1 first line second\n" +
		"note EXP3001 testdata/golden/sample.kw:2:1 note line\n" +
		"warning SYN2106 testdata/golden/sample.kw:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}

	short := FormatShortDiagnostics(diags, fs, true)
	if want := "note EXP3001 prelude/common.kw:1:1 skip me"; !containsLine(short, want) {
		t.Fatalf("short output should keep prelude notes, got:\n%s", short)
	}
}

func containsLine(out, line string) bool {
	start := 0
	for i := 0; i <= len(out); i++ {
		if i == len(out) || out[i] == '\n' {
			if out[start:i] == line {
				return true
			}
			start = i + 1
		}
	}
	return false
}

func TestSeverityLabelsRoundTrip(t *testing.T) {
	for _, sev := range []Severity{SevInfo, SevWarning, SevError} {
		for _, name := range []string{sev.String(), sev.Label()} {
			got, err := ParseSeverity(name)
			if err != nil {
				t.Fatalf("ParseSeverity(%q): %v", name, err)
			}
			if got != sev {
				t.Fatalf("ParseSeverity(%q) = %v, want %v", name, got, sev)
			}
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Fatal("expected error for unknown severity")
	}
	if got := Severity(9).Label(); got != "info" {
		t.Fatalf("unknown severity label = %q", got)
	}
}
