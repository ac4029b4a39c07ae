// Package diag defines the diagnostic model shared by the scanner, the layout
// stage and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier with a stable string form (LEX1001,
//     SYN2005, LAY3004, ...). Ranges are listed in codes.go.
//   - Message: short, actionable text.
//   - Primary: the source.Span the message is about. Layout errors on
//     synthetic input may carry an empty span.
//   - Notes: secondary spans, e.g. "first declared here".
//
// # Emitting
//
// Phases take a Reporter and either call Report directly or build the entry
// with ReportError(...).WithNote(...).Emit(). BagReporter stores into a Bag;
// DedupReporter filters repeats produced by error recovery.
//
// Package diag does no formatting beyond the one-line FormatShort used by
// tests and `--format short`; rich output lives in internal/diagfmt.
package diag
