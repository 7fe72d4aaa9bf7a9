package fuzztests

import (
	"bytes"
	"testing"

	"kwarg/internal/decl"
	"kwarg/internal/diag"
	"kwarg/internal/rewrite"
	"kwarg/internal/source"
)

func FuzzRewriteSession(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.kw", input))
		bag := diag.NewBag(64)
		session := rewrite.NewSession(decl.NewRegistry(decl.PolicyOverwrite), rewrite.DefaultOptions(), diag.BagReporter{Bag: bag})
		res := session.Process(file)

		if bag.HasErrors() {
			return
		}
		untouched := !bytes.Contains(input, []byte("!")) && !bytes.Contains(input, []byte(rewrite.DefaultKeyword))
		if untouched && res.Output != string(input) {
			t.Fatalf("input without constructs changed:\n got %q\nwant %q", res.Output, input)
		}
	})
}
