package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Mode chooses when records reach the output.
type Mode uint8

const (
	// ModeStream writes each record as it happens.
	ModeStream Mode = iota + 1
	// ModeRing keeps the newest RingSize records and writes them on Close,
	// so a long run leaves only its tail.
	ModeRing
)

// ParseMode reads a --trace-mode value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	}
	return ModeStream, fmt.Errorf("unknown trace mode %q (want stream|ring)", s)
}

const defaultRingSize = 4096

// Config selects a tracer's detail, storage and output.
type Config struct {
	Level  Level
	Mode   Mode
	Format Format // FormatAuto picks by Path
	// Output overrides Path. It is not closed.
	Output io.Writer
	// Path is the output file; "" and "-" mean stderr.
	Path     string
	RingSize int
}

// Tracer collects records for one cbgen process. A nil *Tracer is valid and
// records nothing.
type Tracer struct {
	level  Level
	format Format

	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	ring   *ring // nil in stream mode
	opened bool  // chrome array header written
	werr   error

	seq atomic.Uint64
	ids atomic.Uint64
}

// New builds a tracer from cfg. LevelOff yields a disabled tracer that opens
// no output.
func New(cfg Config) (*Tracer, error) {
	if cfg.Level == LevelOff {
		return &Tracer{}, nil
	}
	if cfg.Mode == 0 {
		cfg.Mode = ModeStream
	}
	if cfg.Mode != ModeStream && cfg.Mode != ModeRing {
		return nil, fmt.Errorf("unknown trace mode %d", cfg.Mode)
	}
	t := &Tracer{level: cfg.Level, format: cfg.Format}
	if t.format == FormatAuto {
		t.format = FormatFor(cfg.Path)
	}
	switch {
	case cfg.Output != nil:
		t.w = cfg.Output
	case cfg.Path == "" || cfg.Path == "-":
		t.w = os.Stderr
	default:
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open trace output: %w", err)
		}
		t.w, t.closer = f, f
	}
	if cfg.Mode == ModeRing {
		size := cfg.RingSize
		if size <= 0 {
			size = defaultRingSize
		}
		t.ring = newRing(size)
	}
	return t, nil
}

// Level is LevelOff for nil and disabled tracers.
func (t *Tracer) Level() Level {
	if t == nil {
		return LevelOff
	}
	return t.level
}

func (t *Tracer) keeps(s Scope) bool {
	return t.Level().keeps(s)
}

func (t *Tracer) record(rec Record) {
	rec.Seq = t.seq.Add(1)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ring != nil {
		t.ring.push(rec)
		return
	}
	t.writeLocked(&rec)
}

func (t *Tracer) writeLocked(rec *Record) {
	data := encode(rec, t.format)
	if data == nil || t.werr != nil {
		return
	}
	if t.format == FormatChrome {
		sep := ",\n"
		if !t.opened {
			sep = "{\"traceEvents\":[\n"
			t.opened = true
		}
		data = append([]byte(sep), data...)
	}
	if _, err := t.w.Write(data); err != nil {
		t.werr = err
	}
}

// Records returns what the ring currently holds, oldest first. Stream
// tracers hold nothing.
func (t *Tracer) Records() []Record {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ring == nil {
		return nil
	}
	return t.ring.ordered()
}

// Close writes out a ring, terminates chrome output and closes the file New
// opened. It reports the first write error.
func (t *Tracer) Close() error {
	if t == nil || t.level == LevelOff {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ring != nil {
		for _, rec := range t.ring.ordered() {
			t.writeLocked(&rec)
		}
		t.ring = nil
	}
	if t.format == FormatChrome && t.werr == nil {
		tail := "\n]}\n"
		if !t.opened {
			tail = "{\"traceEvents\":[]}\n"
		}
		if _, err := io.WriteString(t.w, tail); err != nil {
			t.werr = err
		}
	}
	err := t.werr
	if t.closer != nil {
		err = errors.Join(err, t.closer.Close())
		t.closer = nil
	}
	return err
}

// ring is a fixed-size buffer that overwrites its oldest record.
type ring struct {
	buf  []Record
	next int
	full bool
}

func newRing(size int) *ring {
	return &ring{buf: make([]Record, size)}
}

func (r *ring) push(rec Record) {
	r.buf[r.next] = rec
	r.next++
	if r.next == len(r.buf) {
		r.next, r.full = 0, true
	}
}

func (r *ring) ordered() []Record {
	if !r.full {
		return append([]Record(nil), r.buf[:r.next]...)
	}
	out := make([]Record, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}
