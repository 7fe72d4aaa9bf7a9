// Package fuzztests houses Go fuzz harnesses for the rewrite pipeline
// (source -> lexer -> token trees -> session). They guard against panics
// and check that text the rewriter does not touch comes back unchanged.
package fuzztests
