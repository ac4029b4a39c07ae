// Package fuzztests houses Go fuzz harnesses for the header scanner and the
// layout engine. They load arbitrary bytes into a FileSet, run them through
// the lexer, the parser and the resolver, and check that nothing panics,
// hangs or produces a layout that breaks the packing invariants.
package fuzztests
