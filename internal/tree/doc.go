// Package tree groups a flat token stream into delimited token trees.
//
// A Node is either a leaf token or a Group bracketed by (), [] or {}.
// Angle brackets never group. Because commas nested inside a group live in
// that group's Nodes, scanning one level of a tree for commas only ever sees
// top-level separators.
//
// Every byte of the input survives in the tree: leading trivia stays on its
// token and the file's trailing trivia stays on File.EOF, so Print
// reproduces the source exactly.
package tree
