package diag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"kwarg/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// FixApplicability says how much a fix can be trusted without review.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// TextEdit replaces Span with NewText. OldText, when set, guards the edit.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

type Fix struct {
	ID            string
	Title         string
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Error lets phases hand a diagnostic back through an error return.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Code.ID(), d.Message)
}

// AsDiagnostic extracts a *Diagnostic from err, if there is one.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// compareFixes puts preferred fixes first, then the safest, then orders by
// title and ID.
func compareFixes(a, b Fix) int {
	if a.IsPreferred != b.IsPreferred {
		if a.IsPreferred {
			return -1
		}
		return 1
	}
	return cmp.Or(
		cmp.Compare(a.Applicability, b.Applicability),
		cmp.Compare(a.Title, b.Title),
		cmp.Compare(a.ID, b.ID),
	)
}

// OrderedFixes returns a sorted copy of d.Fixes in the order tools should
// offer them.
func (d *Diagnostic) OrderedFixes() []Fix {
	fixes := slices.Clone(d.Fixes)
	slices.SortStableFunc(fixes, compareFixes)
	return fixes
}
