package rewrite_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"kwarg/internal/decl"
	"kwarg/internal/diag"
	"kwarg/internal/rewrite"
	"kwarg/internal/source"
)

type run struct {
	fs      *source.FileSet
	bag     *diag.Bag
	session *rewrite.Session
}

func newRun(opts rewrite.Options, policy decl.Policy) *run {
	bag := diag.NewBag(64)
	return &run{
		fs:      source.NewFileSet(),
		bag:     bag,
		session: rewrite.NewSession(decl.NewRegistry(policy), opts, diag.BagReporter{Bag: bag}),
	}
}

func (r *run) process(name, src string) *rewrite.Result {
	return r.session.Process(r.fs.Get(r.fs.AddVirtual(name, []byte(src))))
}

func (r *run) codes() []diag.Code {
	var out []diag.Code
	for _, d := range r.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestProcessRewritesFile(t *testing.T) {
	src := "declare foo(a = 1, b = 2, c = 3);\n" +
		"\n" +
		"fn main() {\n" +
		"    foo!(c = 30, a = 10);\n" +
		"    foo!();\n" +
		"    println!(\"{}\", foo!(7));\n" +
		"}\n"
	want := "\n" +
		"\n" +
		"fn main() {\n" +
		"    foo(10, 2, 30);\n" +
		"    foo(1, 2, 3);\n" +
		"    println!(\"{}\", foo(7, 2, 3));\n" +
		"}\n"

	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	res := r.process("main.kw", src)
	if diff := cmp.Diff(want, res.Output); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if res.Errors != 0 || r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.bag.Items())
	}
	wantStats := rewrite.Stats{Declarations: 1, Expanded: 3, Defaulted: 6, DeepestNest: 1}
	if diff := cmp.Diff(wantStats, res.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	if len(res.Decls) != 1 || res.Decls[0].Name != "foo" {
		t.Fatalf("expected foo to be recorded as declared here")
	}
}

func TestProcessWithoutConstructsIsIdentity(t *testing.T) {
	src := "// nothing to do\nlet x = vec![1, 2, 3]; /* keep */\n\tdeclare = 5;\n"
	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	if got := r.process("plain.kw", src).Output; got != src {
		t.Fatalf("output changed:\n got: %q\nwant: %q", got, src)
	}
}

func TestProcessNestedExpansion(t *testing.T) {
	src := "declare g(x, y = 0)\n" +
		"declare f(a, b = g!(1))\n" +
		"f!(a = g!(y = 2, x = 5))"
	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	res := r.process("nested.kw", src)
	if want := "\n\nf(g(5, 2), g(1, 0))"; res.Output != want {
		t.Fatalf("output = %q, want %q", res.Output, want)
	}
	if res.Stats.Expanded != 3 || res.Stats.DeepestNest != 2 {
		t.Fatalf("stats = %+v", res.Stats)
	}
}

func TestProcessFailedCallSiteGetsPlaceholder(t *testing.T) {
	src := "declare bar(a)\nlet v = bar!();\nlet w = bar!(1);"
	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	res := r.process("fail.kw", src)

	want := "\nlet v = /* kwarg: expansion failed */;\nlet w = bar(1);"
	if res.Output != want {
		t.Fatalf("output = %q, want %q", res.Output, want)
	}
	if res.Errors != 1 || res.Stats.Failed != 1 || res.Stats.Expanded != 1 {
		t.Fatalf("errors=%d stats=%+v", res.Errors, res.Stats)
	}
	if diff := cmp.Diff([]diag.Code{diag.ExpMissingArgument}, r.codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessReportsFailingDefaultOnce(t *testing.T) {
	src := "declare inner(a);\ndeclare outer(v = inner!(b = 1));\nouter!();\nouter!();\n"
	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	res := r.process("defaults.kw", src)
	if res.Errors != 2 || res.Stats.Failed != 2 || res.Repeats != 1 {
		t.Fatalf("errors=%d repeats=%d stats=%+v", res.Errors, res.Repeats, res.Stats)
	}
	if diff := cmp.Diff([]diag.Code{diag.ExpUnknownArgument}, r.codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessDeclarationOrder(t *testing.T) {
	src := "foo!(1)\ndeclare foo(a)\nfoo!(1)"
	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	if got, want := r.process("order.kw", src).Output, "foo!(1)\n\nfoo(1)"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestProcessPlainStyle(t *testing.T) {
	opts := rewrite.DefaultOptions()
	opts.Style = rewrite.StylePlain
	src := "declare area(w, h = 1);\n" +
		"fn area(w, h) { w * h }\n" +
		"let a = area(h = 2, w = 3);\n" +
		"let b = shape.area(1);\n"
	want := "\n" +
		"fn area(w, h) { w * h }\n" +
		"let a = area(3, 2);\n" +
		"let b = shape.area(1);\n"

	r := newRun(opts, decl.PolicyOverwrite)
	if got := r.process("plain.kw", src).Output; got != want {
		t.Fatalf("output mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestProcessRecursionLimit(t *testing.T) {
	opts := rewrite.DefaultOptions()
	opts.MaxDepth = 3
	opts.Placeholder = "X"
	r := newRun(opts, decl.PolicyOverwrite)
	res := r.process("deep.kw", "declare f(a)\nf!(f!(f!(f!(1))))")

	if want := "\nf(f(f(X)))"; res.Output != want {
		t.Fatalf("output = %q, want %q", res.Output, want)
	}
	if diff := cmp.Diff([]diag.Code{diag.ExpRecursionLimit}, r.codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessSelfReferentialDefaults(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     string
		failures int
	}{
		{"single", "declare f(a = f!())\nf!()", "\nf(X)", 1},
		{"twice", "declare f(a = f!(), b = f!())\nf!()", "\nf(X, X)", 2},
		{"mutual", "declare f(a = g!())\ndeclare g(b = f!())\nf!()", "\n\nf(g(X))", 1},
		{"explicit argument breaks the cycle", "declare f(a = f!(0))\nf!(1)", "\nf(1)", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := rewrite.DefaultOptions()
			opts.Placeholder = "X"
			r := newRun(opts, decl.PolicyOverwrite)
			res := r.process("cycle.kw", tt.src)
			if res.Output != tt.want {
				t.Fatalf("output = %q, want %q", res.Output, tt.want)
			}
			if res.Stats.Failed != tt.failures || res.Errors != tt.failures {
				t.Fatalf("errors=%d stats=%+v", res.Errors, res.Stats)
			}
			for _, code := range r.codes() {
				if code != diag.ExpRecursionLimit {
					t.Fatalf("unexpected code %s", code.ID())
				}
			}
		})
	}
}

func TestProcessExpansionBudget(t *testing.T) {
	opts := rewrite.DefaultOptions()
	opts.MaxExpansions = 4
	opts.Placeholder = "X"
	r := newRun(opts, decl.PolicyOverwrite)
	res := r.process("budget.kw", "declare g(x = 1)\ndeclare f(a = g!(), b = g!())\nf!()\nf!()")

	if want := "\n\nf(g(1), g(1))\nf(X, X)"; res.Output != want {
		t.Fatalf("output = %q, want %q", res.Output, want)
	}
	if res.Stats.Expanded != 4 || res.Stats.Failed != 2 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if diff := cmp.Diff([]diag.Code{diag.ExpRecursionLimit}, r.codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessDeclarationInsideDefaultIsNotRegistered(t *testing.T) {
	r := newRun(rewrite.DefaultOptions(), decl.PolicyError)
	res := r.process("inner.kw", "declare f(a = declare g(b))\nf!();\nf!();")

	if want := "\nf(declare g(b));\nf(declare g(b));"; res.Output != want {
		t.Fatalf("output = %q, want %q", res.Output, want)
	}
	if r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.bag.Items())
	}
	if _, ok := r.session.Registry().Lookup("g"); ok {
		t.Fatalf("g must not be declared")
	}
}

func TestProcessRedeclarationPolicies(t *testing.T) {
	src := "declare f(a)\ndeclare f(a, b = 9)\nf!(1)"

	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	if got := r.process("over.kw", src).Output; got != "\n\nf(1, 9)" {
		t.Fatalf("overwrite output = %q", got)
	}

	r = newRun(rewrite.DefaultOptions(), decl.PolicyError)
	res := r.process("strict.kw", src)
	if res.Output != "\n\nf(1)" {
		t.Fatalf("error-policy output = %q", res.Output)
	}
	if diff := cmp.Diff([]diag.Code{diag.SynDeclRedeclared}, r.codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessBrokenDeclarationIsDropped(t *testing.T) {
	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	res := r.process("broken.kw", "declare f(a = );\nf!(1)")
	if res.Output != "\nf!(1)" {
		t.Fatalf("output = %q", res.Output)
	}
	if diff := cmp.Diff([]diag.Code{diag.SynDeclEmptyDefault}, r.codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestPreludeSharesDeclarations(t *testing.T) {
	r := newRun(rewrite.DefaultOptions(), decl.PolicyOverwrite)
	pre := r.session.Prelude(r.fs.Get(r.fs.AddVirtual("prelude.kw", []byte("declare log(msg, level = 1)"))))
	if pre.Output != "" || len(pre.Decls) != 1 {
		t.Fatalf("prelude result = %+v", pre)
	}
	if got := r.process("user.kw", `log!(level = 3, msg = "hi")`).Output; got != `log("hi", 3)` {
		t.Fatalf("output = %q", got)
	}
	if st := r.session.Stats(); st.Declarations != 1 || st.Expanded != 1 {
		t.Fatalf("session stats = %+v", st)
	}
}

func TestCustomKeyword(t *testing.T) {
	opts := rewrite.DefaultOptions()
	opts.Keyword = "kwargs"
	r := newRun(opts, decl.PolicyOverwrite)
	if got := r.process("kw.kw", "kwargs f(a = 1)\ndeclare g(b)\nf!()").Output; got != "\ndeclare g(b)\nf(1)" {
		t.Fatalf("output = %q", got)
	}
}

func TestOptionsParsingAndFingerprint(t *testing.T) {
	if s, err := rewrite.ParseCallStyle("plain"); err != nil || s != rewrite.StylePlain {
		t.Fatalf("ParseCallStyle(plain) = %v, %v", s, err)
	}
	if _, err := rewrite.ParseCallStyle("dot"); err == nil {
		t.Fatalf("expected an error for an unknown style")
	}
	a := rewrite.DefaultOptions()
	b := rewrite.DefaultOptions()
	b.Placeholder = "0"
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("fingerprint must change with the placeholder")
	}
}
