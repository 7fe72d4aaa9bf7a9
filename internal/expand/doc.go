// Package expand turns one invocation of a declared name into a fully
// positional call.
//
// The Expander is stateless: every call to Expand works on its own binding
// slots, so a single Expander may serve any number of goroutines. Argument
// values are opaque node sequences; they are moved, never inspected.
package expand
