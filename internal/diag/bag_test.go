package diag

import (
	"errors"
	"fmt"
	"testing"

	"kwarg/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(3)
	span := func(start uint32) source.Span { return source.Span{Start: start, End: start + 1} }

	b.Add(Diagnostic{Severity: SevWarning, Code: SynDeclRedeclared, Primary: span(5)})
	b.Add(Diagnostic{Severity: SevError, Code: ExpArityExceeded, Primary: span(1)})
	b.Add(Diagnostic{Severity: SevInfo, Code: ObsTimings, Primary: span(1)})
	if b.Add(Diagnostic{Severity: SevError, Code: ExpUnknownArgument, Primary: span(0)}) {
		t.Fatalf("bag accepted a diagnostic past its limit")
	}

	b.Sort()
	got := make([]Code, 0, b.Len())
	for _, d := range b.Items() {
		got = append(got, d.Code)
	}
	want := []Code{ExpArityExceeded, ObsTimings, SynDeclRedeclared}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("sorted codes = %v, want %v", got, want)
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("expected both errors and warnings")
	}
}

func TestBagErrAndAsDiagnostic(t *testing.T) {
	b := NewBag(10)
	if b.Err() != nil {
		t.Fatalf("empty bag must not report an error")
	}
	b.Add(Diagnostic{Severity: SevWarning, Code: SynDeclRedeclared, Message: "warn"})
	b.Add(Diagnostic{Severity: SevError, Code: ExpMissingArgument, Message: "argument `b` is required, but not given a value"})

	err := fmt.Errorf("expand: %w", b.Err())
	d, ok := AsDiagnostic(err)
	if !ok {
		t.Fatalf("AsDiagnostic failed on %v", err)
	}
	if d.Code != ExpMissingArgument {
		t.Fatalf("got code %s", d.Code.ID())
	}
	if d.Code.Kind() != "MissingRequiredArgument" {
		t.Fatalf("kind = %q", d.Code.Kind())
	}
	if _, ok := AsDiagnostic(errors.New("plain")); ok {
		t.Fatalf("plain error must not convert")
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: b})
	sp := source.Span{File: 1, Start: 2, End: 4}
	r.Report(ExpEmptyArgument, SevError, sp, "expected argument value after `=`", nil, nil)
	r.Report(ExpEmptyArgument, SevError, sp, "expected argument value after `=`", nil, nil)
	r.Report(ExpEmptyArgument, SevError, sp, "unexpected token: `,`", nil, nil)
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", b.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		LexUnknownChar:       "LEX1001",
		SynUnclosedDelimiter: "SYN2002",
		SynDeclEmptyDefault:  "SYN2104",
		ExpOrderingViolation: "EXP3002",
		IOLoadFileError:      "IO4001",
		ObsTimings:           "OBS6001",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if SynDeclBadParam.Kind() != "DeclarationSyntaxError" {
		t.Errorf("unexpected kind for SynDeclBadParam: %s", SynDeclBadParam.Kind())
	}
}

func TestBuilderChainsIntoReporter(t *testing.T) {
	bag := NewBag(4)
	at := source.Span{File: 1, Start: 2, End: 5}
	Errorf(ExpArityExceeded, at, "too many arguments passed to `%s` (expected %d)", "f", 2).
		WithNotef(at, "`%s` is declared here", "f").
		Emit(BagReporter{Bag: bag})

	var nilDiag *Diagnostic
	nilDiag.Emit(BagReporter{Bag: bag})
	New(SevInfo, ObsTimings, at, "dropped").Emit(nil)

	if bag.Len() != 1 {
		t.Fatalf("Len = %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Message != "too many arguments passed to `f` (expected 2)" || d.Severity != SevError {
		t.Fatalf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "`f` is declared here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestBagCountsDroppedAcrossMerge(t *testing.T) {
	perFile := NewBag(1)
	perFile.Add(Diagnostic{Severity: SevError, Code: ExpMissingArgument})
	perFile.Add(Diagnostic{Severity: SevError, Code: ExpMissingArgument})
	perFile.Add(Diagnostic{Severity: SevWarning, Code: SynDeclRedeclared})

	run := NewBag(1)
	run.Merge(perFile)
	run.Push(Diagnostic{Severity: SevInfo, Code: ObsTimings})

	if run.Len() != 2 || run.Cap() != 2 {
		t.Fatalf("len/cap = %d/%d, want 2/2", run.Len(), run.Cap())
	}
	if run.Dropped() != 2 {
		t.Fatalf("dropped = %d, want 2", run.Dropped())
	}

	errorsOnly := run.Filter(func(d *Diagnostic) bool { return d.Severity >= SevError })
	if errorsOnly.Len() != 1 || !errorsOnly.HasErrors() {
		t.Fatalf("filter kept %d diagnostics", errorsOnly.Len())
	}
}
