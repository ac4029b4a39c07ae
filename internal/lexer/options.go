package lexer

import (
	"cbgen/internal/diag"
	"cbgen/internal/source"
)

// DefaultMaxTokenLength caps a single token; longer input is reported and cut.
const DefaultMaxTokenLength = 1 << 16

type Options struct {
	Reporter       diag.Reporter // may be nil; errors are then dropped
	MaxTokenLength uint32        // 0 means DefaultMaxTokenLength
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}

func (lx *Lexer) maxTokenLength() uint32 {
	if lx.opts.MaxTokenLength == 0 {
		return DefaultMaxTokenLength
	}
	return lx.opts.MaxTokenLength
}
