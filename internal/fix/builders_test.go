package fix

import (
	"testing"

	"kwarg/internal/diag"
	"kwarg/internal/source"
	"kwarg/internal/token"
)

func TestTokenBuildersGuardWithTokenText(t *testing.T) {
	tok := token.Token{Kind: token.Ident, Text: "colr", Span: source.Span{File: 2, Start: 7, End: 11}}

	f := ReplaceToken("rename to `color`", tok, "color",
		AtSite("expand.rename-argument", tok.Span),
		WithApplicability(diag.FixApplicabilitySafeWithHeuristics),
		Preferred())

	if f.ID != "expand.rename-argument@2:7" {
		t.Fatalf("ID = %q", f.ID)
	}
	if !f.IsPreferred || f.Applicability != diag.FixApplicabilitySafeWithHeuristics {
		t.Fatalf("options not applied: %+v", f)
	}
	if len(f.Edits) != 1 || f.Edits[0].OldText != "colr" || f.Edits[0].NewText != "color" || f.Edits[0].Span != tok.Span {
		t.Fatalf("edits = %+v", f.Edits)
	}

	comma := token.Token{Kind: token.Comma, Text: ",", Span: source.Span{Start: 3, End: 4}}
	d := DeleteToken("remove the extra comma", comma, nil)
	if d.Applicability != diag.FixApplicabilityAlwaysSafe || d.ID != "" {
		t.Fatalf("defaults = %+v", d)
	}
	if d.Edits[0].NewText != "" || d.Edits[0].OldText != "," {
		t.Fatalf("delete edit = %+v", d.Edits[0])
	}
}
