// Package token defines lexical token kinds for C-style header files.
// Invariants:
//   - Token.Text is the exact source text covered by Token.Span, except for
//     identifiers, which are NFC-normalized.
//   - Comments and whitespace are Trivia attached to the next token and never
//     appear in the main stream.
//   - Preprocessor lines are a single Directive token; the scanner interprets
//     #define and #include, everything else passes through.
//   - Builtin type names (float3, uint16_t, ...) are identifiers; they are
//     classified by internal/types.
package token
