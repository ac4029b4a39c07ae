package trace

import (
	"context"
	"errors"
	"time"
)

type tracerKey struct{}

type spanKey struct{}

// With returns ctx carrying t.
func With(ctx context.Context, t *Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, t)
}

// From returns the tracer in ctx, or nil.
func From(ctx context.Context) *Tracer {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(tracerKey{}).(*Tracer)
	return t
}

func parentID(ctx context.Context) uint64 {
	id, _ := ctx.Value(spanKey{}).(uint64)
	return id
}

// Span is an open span. A nil *Span is valid; its methods do nothing.
type Span struct {
	t       *Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	start   time.Time
	structs int
}

// Start opens a span under the one carried by ctx. The returned context
// parents later spans and struct points to it. When the tracer drops scope,
// Start returns ctx unchanged and a nil span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := From(ctx)
	if !t.keeps(scope) {
		return ctx, nil
	}
	s := &Span{
		t:      t,
		id:     t.ids.Add(1),
		parent: parentID(ctx),
		scope:  scope,
		name:   name,
		start:  time.Now(),
	}
	t.record(Record{
		Time:   s.start,
		Kind:   KindBegin,
		Scope:  scope,
		ID:     s.id,
		Parent: s.parent,
		Name:   name,
	})
	return context.WithValue(ctx, spanKey{}, s.id), s
}

// SetStructs notes how many structs a file span produced.
func (s *Span) SetStructs(n int) *Span {
	if s != nil {
		s.structs = n
	}
	return s
}

// End closes the span and reports how long it was open. A non-nil err is
// recorded with it; context cancellation is recorded as such.
func (s *Span) End(err error) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	rec := Record{
		Time:    now,
		Kind:    KindEnd,
		Scope:   s.scope,
		ID:      s.id,
		Parent:  s.parent,
		Name:    s.name,
		Elapsed: now.Sub(s.start),
		Structs: s.structs,
	}
	switch {
	case errors.Is(err, context.Canceled):
		rec.Err = "canceled"
	case err != nil:
		rec.Err = err.Error()
	}
	s.t.record(rec)
	return rec.Elapsed
}

// Struct records that the resolver laid out a struct of size bytes with the
// given number of fields.
func Struct(ctx context.Context, name string, size uint32, fields int) {
	t := From(ctx)
	if !t.keeps(ScopeStruct) {
		return
	}
	t.record(Record{
		Time:   time.Now(),
		Kind:   KindStruct,
		Scope:  ScopeStruct,
		Parent: parentID(ctx),
		Name:   name,
		Size:   size,
		Fields: fields,
	})
}
