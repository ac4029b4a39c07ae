// Package trace records where a cbgen run spends its time: one span for the
// command, one per stage, one per scanned header and a point for every struct
// the resolver lays out.
//
//	cbgen gen --trace=- shaders/
//	cbgen gen --trace=run.chrome.json --trace-level=struct shaders/
//	cbgen gen --trace=last.txt --trace-mode=ring --trace-ring-size=256 shaders/
//
// A *Tracer travels in the context. Code that records does not check whether
// tracing is on; a nil or disabled tracer drops everything.
package trace
