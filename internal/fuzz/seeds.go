package fuzztests

import (
	"testing"
)

const maxFuzzInput = 1 << 16 // 64 KiB

var seeds = []string{
	"",
	"declare foo(a = 1, b = 2, c = 3);\nfoo!(c = 30, a = 10);\n",
	"declare bar(a);\nbar!(1 + 5);\nbar!();\n",
	"declare baz()\nbaz!(1)\n",
	"declare f(a, b = [1, 2], c = {x: 1});\nprintln!(\"{}\", f!(f!(1), c = (3, 4)));\n",
	"declare g(x = /* default */ 0);\ng!(x = 'c', 2);\n",
	"fn main() { let s = \"declare\"; call(1, 2); }\n",
	"declare broken(a = );\nbroken!(,);\n",
	"unclosed!( (a, b\n",
	"// comment only\n\t  \n",
	"declare ünïcode(αβ = 1);\nünïcode!(αβ = 2);\n",
}

func addSeeds(f *testing.F) {
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
