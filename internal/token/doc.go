// Package token defines the lexical vocabulary shared by the lexer, the token
// tree builder and the rewriter.
//
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Whitespace and comments never appear in the token stream; they are kept
//     as Leading trivia on the following token (or on EOF), so concatenating
//     trivia and token text reproduces the input byte for byte.
//   - There are no reserved words. The declaration keyword is an identifier
//     recognised by the rewriter, which keeps it configurable.
package token
