// Package observ measures where a rewrite run spends its time.
package observ

import (
	"fmt"
	"io"
	"time"
)

type span struct {
	name    string
	started time.Time
	took    time.Duration
	note    string
}

// Timer records named steps in the order they start. A nil *Timer is valid
// and records nothing. Timers are not safe for concurrent use.
type Timer struct {
	spans []span
	clock func() time.Time
}

func NewTimer() *Timer { return &Timer{clock: time.Now} }

// Track starts the step name; calling the returned func stops it. Stopping
// twice keeps the first measurement.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	t.spans = append(t.spans, span{name: name, started: t.clock()})
	idx := len(t.spans) - 1
	done := false
	return func(note string) {
		if done {
			return
		}
		done = true
		s := &t.spans[idx]
		s.took = t.clock().Sub(s.started)
		s.note = note
	}
}

// PhaseReport is the serialisable form of one tracked step.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	for _, s := range t.spans {
		ms := millis(s.took)
		r.TotalMS += ms
		r.Phases = append(r.Phases, PhaseReport{Name: s.name, DurationMS: ms, Note: s.note})
	}
	return r
}

// Merge folds other into r, summing steps that share a name. New names are
// appended in the order other lists them; notes are dropped.
func (r *Report) Merge(other Report) {
	for _, p := range other.Phases {
		found := false
		for i := range r.Phases {
			if r.Phases[i].Name == p.Name {
				r.Phases[i].DurationMS += p.DurationMS
				r.Phases[i].Note = ""
				found = true
				break
			}
		}
		if !found {
			r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: p.DurationMS})
		}
	}
	r.TotalMS += other.TotalMS
}

// WriteTable prints the report as an aligned two-column table.
func (r Report) WriteTable(w io.Writer) error {
	for _, p := range r.Phases {
		line := fmt.Sprintf("  %-16s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			line += "  (" + p.Note + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-16s %8.2f ms\n", "total", r.TotalMS)
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
