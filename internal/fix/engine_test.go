package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kwarg/internal/diag"
	"kwarg/internal/source"
)

func TestGatherCandidatesSkipsDuplicateFixIDs(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.kw", []byte("f!(,1)"))
	span := source.Span{File: fileID, Start: 3, End: 4}

	diagnostics := []diag.Diagnostic{{
		Code:    diag.ExpEmptyArgument,
		Message: "unexpected token: `,`",
		Primary: span,
		Fixes: []diag.Fix{
			DeleteSpan("remove the extra comma", span, ",", WithID("dup")),
			DeleteSpan("remove the extra comma again", span, ",", WithID("dup")),
		},
	}}

	candidates, skips := gatherCandidates(diagnostics)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if len(skips) != 1 || skips[0].Reason != "duplicate fix id" {
		t.Fatalf("expected a duplicate-id skip, got %+v", skips)
	}
}

func writeTemp(t *testing.T, content string) (*source.FileSet, source.FileID, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.kw")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return fs, id, path
}

func TestApplyAllWritesFile(t *testing.T) {
	fs, id, path := writeTemp(t, "f!(colr = 1,, 2)")

	rename := ReplaceSpan("rename to `color`", source.Span{File: id, Start: 3, End: 7}, "color", "colr",
		WithID("rename"), WithApplicability(diag.FixApplicabilitySafeWithHeuristics))
	comma := DeleteSpan("remove the extra comma", source.Span{File: id, Start: 12, End: 13}, ",", WithID("comma"))

	diags := []diag.Diagnostic{
		{Code: diag.ExpUnknownArgument, Primary: rename.Edits[0].Span, Fixes: []diag.Fix{rename}},
		{Code: diag.ExpEmptyArgument, Primary: comma.Edits[0].Span, Fixes: []diag.Fix{comma}},
	}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "comma" {
		t.Fatalf("only the always-safe fix should apply, got %+v", res.Applied)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != "rename" {
		t.Fatalf("expected rename to be skipped, got %+v", res.Skipped)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "f!(colr = 1, 2)" {
		t.Fatalf("file = %q", got)
	}

	fs, id, path = writeTemp(t, "f!(colr = 1,, 2)")
	for i := range diags {
		for j := range diags[i].Fixes {
			for k := range diags[i].Fixes[j].Edits {
				diags[i].Fixes[j].Edits[k].Span.File = id
			}
		}
	}
	if _, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll, AllowHeuristics: true}); err != nil {
		t.Fatalf("apply with heuristics: %v", err)
	}
	got, _ = os.ReadFile(path)
	if string(got) != "f!(color = 1, 2)" {
		t.Fatalf("file = %q", got)
	}
}

func TestApplyDryRunAndConflicts(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("virtual.kw", []byte("abcdef"))

	first := ReplaceSpan("one", source.Span{File: id, Start: 1, End: 3}, "X", "bc", WithID("one"))
	overlap := ReplaceSpan("two", source.Span{File: id, Start: 2, End: 4}, "Y", "", WithID("two"))
	later := DeleteSpan("three", source.Span{File: id, Start: 4, End: 5}, "e", WithID("three"))

	diags := []diag.Diagnostic{
		{Primary: first.Edits[0].Span, Fixes: []diag.Fix{first}},
		{Primary: overlap.Edits[0].Span, Fixes: []diag.Fix{overlap}},
		{Primary: later.Edits[0].Span, Fixes: []diag.Fix{later}},
	}
	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Applied) != 2 || len(res.Skipped) != 1 || res.Skipped[0].ID != "two" {
		t.Fatalf("applied=%+v skipped=%+v", res.Applied, res.Skipped)
	}
	if len(res.FileChanges) != 1 || string(res.FileChanges[0].Content) != "aXdf" {
		t.Fatalf("changes = %+v", res.FileChanges)
	}
}

func TestApplyByIDAndNoFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("v.kw", []byte("a,,b"))
	comma := DeleteSpan("remove", source.Span{File: id, Start: 2, End: 3}, ",", WithID("comma"))
	diags := []diag.Diagnostic{{Primary: comma.Edits[0].Span, Fixes: []diag.Fix{comma}}}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "comma", DryRun: true})
	if err != nil || string(res.FileChanges[0].Content) != "a,b" {
		t.Fatalf("apply by id: %v %+v", err, res)
	}
	if _, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "missing", DryRun: true}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if _, err := Apply(fs, nil, ApplyOptions{}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes for no diagnostics, got %v", err)
	}
}

func TestApplyKeepsInsertionOrder(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("ins.kw", []byte("f(a)"))
	at := source.Span{File: id, Start: 3, End: 3}

	first := ReplaceSpan("insert b", at, ", b", "", WithID("b"))
	second := ReplaceSpan("insert c", at, ", c", "", WithID("c"))
	wrap := ReplaceSpan("rename f", source.Span{File: id, Start: 0, End: 1}, "g", "f", WithID("g"))

	diags := []diag.Diagnostic{
		{Primary: at, Fixes: []diag.Fix{first, second}},
		{Primary: wrap.Edits[0].Span, Fixes: []diag.Fix{wrap}},
	}
	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Applied) != 3 || len(res.FileChanges) != 1 {
		t.Fatalf("applied=%+v changes=%+v", res.Applied, res.FileChanges)
	}
	if got := string(res.FileChanges[0].Content); got != "g(a, b, c)" {
		t.Fatalf("content = %q", got)
	}
	if res.FileChanges[0].EditCount != 3 {
		t.Fatalf("edit count = %d", res.FileChanges[0].EditCount)
	}
}

func TestApplyRejectsStaleAndVirtualWrites(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("v.kw", []byte("abc"))
	stale := DeleteSpan("stale", source.Span{File: id, Start: 0, End: 1}, "z", WithID("stale"))
	diags := []diag.Diagnostic{{Primary: stale.Edits[0].Span, Fixes: []diag.Fix{stale}}}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if !errors.Is(err, ErrNoFixes) || len(res.Skipped) != 1 || res.Skipped[0].Reason != "existing text does not match expected content" {
		t.Fatalf("stale: err=%v skipped=%+v", err, res.Skipped)
	}

	ok := DeleteSpan("ok", source.Span{File: id, Start: 0, End: 1}, "a", WithID("ok"))
	diags = []diag.Diagnostic{{Primary: ok.Edits[0].Span, Fixes: []diag.Fix{ok}}}
	res, err = Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) || res.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("virtual: err=%v skipped=%+v", err, res.Skipped)
	}
}

func TestWriteAtomicKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.kw")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := writeAtomic(path, []byte("new")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v", info.Mode())
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Fatalf("content = %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary file left behind: %v", entries)
	}
}

func TestApplyKeepsLineEndingsAndBOM(t *testing.T) {
	fs, id, path := writeTemp(t, "\xEF\xBB\xBFf!(1,,\r\n2)\r\n")
	// decoded text is "f!(1,,\n2)\n"
	comma := DeleteSpan("remove the extra comma", source.Span{File: id, Start: 5, End: 6}, ",", WithID("comma"))
	diags := []diag.Diagnostic{{Code: diag.ExpEmptyArgument, Primary: comma.Edits[0].Span, Fixes: []diag.Fix{comma}}}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if string(res.FileChanges[0].Content) != "f!(1,\n2)\n" {
		t.Fatalf("rendered = %q", res.FileChanges[0].Content)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "\xEF\xBB\xBFf!(1,\r\n2)\r\n" {
		t.Fatalf("file = %q", got)
	}
}
