package observ

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func tickingClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.clock = tickingClock(2 * time.Millisecond)

	stopLoad := tm.Track("load")
	stopLoad("3 files")
	stopLoad("again")
	tm.Track("expand")("")

	want := Report{
		TotalMS: 4,
		Phases: []PhaseReport{
			{Name: "load", DurationMS: 2, Note: "3 files"},
			{Name: "expand", DurationMS: 2},
		},
	}
	if diff := cmp.Diff(want, tm.Report()); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestReportMergeSumsByName(t *testing.T) {
	var total Report
	total.Merge(Report{TotalMS: 3, Phases: []PhaseReport{{Name: "expand", DurationMS: 3, Note: "a.kw"}}})
	total.Merge(Report{TotalMS: 5, Phases: []PhaseReport{
		{Name: "cache_lookup", DurationMS: 1},
		{Name: "expand", DurationMS: 4, Note: "b.kw"},
	}})

	want := Report{
		TotalMS: 8,
		Phases: []PhaseReport{
			{Name: "expand", DurationMS: 7},
			{Name: "cache_lookup", DurationMS: 1},
		},
	}
	if diff := cmp.Diff(want, total); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestReportWriteTable(t *testing.T) {
	r := Report{TotalMS: 2.5, Phases: []PhaseReport{{Name: "expand", DurationMS: 2.5, Note: "cached"}}}
	var buf bytes.Buffer
	if err := r.WriteTable(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"expand", "2.50 ms", "(cached)", "total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Track("x")("")
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Fatalf("nil timer reported phases: %+v", got)
	}
}
