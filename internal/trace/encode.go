package trace

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Format is the encoding of trace output.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
	// FormatChrome is the chrome://tracing and Perfetto JSON array. Spans
	// become complete ("X") events when they end.
	FormatChrome
)

// ParseFormat reads a --trace-format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson":
		return FormatNDJSON, nil
	case "chrome":
		return FormatChrome, nil
	}
	return FormatAuto, fmt.Errorf("unknown trace format %q (want auto|text|ndjson|chrome)", s)
}

// FormatFor picks a format from an output path: *.ndjson is NDJSON, *.json
// is chrome, anything else is text.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson":
		return FormatNDJSON
	case ".json":
		return FormatChrome
	}
	return FormatText
}

// encode renders rec in format f. It returns nil for records f has no
// representation for.
func encode(rec *Record, f Format) []byte {
	switch f {
	case FormatNDJSON:
		return encodeNDJSON(rec)
	case FormatChrome:
		return encodeChrome(rec)
	}
	return encodeText(rec)
}

// encodeText writes one line per record, indented by scope:
//
//	12:00:01.000250     > light.h
//	12:00:01.000900       * Light size=32 fields=2
//	12:00:01.001020     < light.h 770µs structs=1
func encodeText(rec *Record) []byte {
	var b strings.Builder
	b.WriteString(rec.Time.Format("15:04:05.000000"))
	b.WriteByte(' ')
	b.WriteString(strings.Repeat("  ", int(rec.Scope)))
	switch rec.Kind {
	case KindBegin:
		b.WriteString("> ")
		b.WriteString(rec.Name)
	case KindEnd:
		b.WriteString("< ")
		b.WriteString(rec.Name)
		b.WriteByte(' ')
		b.WriteString(rec.Elapsed.String())
		if rec.Scope == ScopeFile {
			b.WriteString(" structs=")
			b.WriteString(strconv.Itoa(rec.Structs))
		}
		if rec.Err != "" {
			b.WriteString(" err=")
			b.WriteString(strconv.Quote(rec.Err))
		}
	case KindStruct:
		fmt.Fprintf(&b, "* %s size=%d fields=%d", rec.Name, rec.Size, rec.Fields)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

type jsonRecord struct {
	Seq     uint64  `json:"seq"`
	Time    string  `json:"time"`
	Kind    string  `json:"kind"`
	Scope   string  `json:"scope"`
	ID      uint64  `json:"id,omitempty"`
	Parent  uint64  `json:"parent,omitempty"`
	Name    string  `json:"name"`
	Millis  float64 `json:"ms,omitempty"`
	Err     string  `json:"err,omitempty"`
	Structs int     `json:"structs,omitempty"`
	Size    uint32  `json:"size,omitempty"`
	Fields  int     `json:"fields,omitempty"`
}

func encodeNDJSON(rec *Record) []byte {
	j := jsonRecord{
		Seq:     rec.Seq,
		Kind:    rec.Kind.String(),
		Time:    rec.Time.UTC().Format("2006-01-02T15:04:05.000000Z"),
		Scope:   rec.Scope.String(),
		ID:      rec.ID,
		Parent:  rec.Parent,
		Name:    rec.Name,
		Err:     rec.Err,
		Structs: rec.Structs,
		Size:    rec.Size,
		Fields:  rec.Fields,
	}
	if rec.Kind == KindEnd {
		j.Millis = float64(rec.Elapsed.Microseconds()) / 1000
	}
	data, err := json.Marshal(j)
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

type chromeEvent struct {
	Name string         `json:"name"`
	Cat  string         `json:"cat"`
	Ph   string         `json:"ph"`
	Ts   int64          `json:"ts"`
	Dur  int64          `json:"dur,omitempty"`
	Pid  int            `json:"pid"`
	Tid  uint64         `json:"tid"`
	S    string         `json:"s,omitempty"`
	Args map[string]any `json:"args,omitempty"`
}

// encodeChrome skips span begins; the end record carries the whole span.
// File spans get their own track since headers are scanned in parallel.
func encodeChrome(rec *Record) []byte {
	ev := chromeEvent{Name: rec.Name, Cat: rec.Scope.String(), Pid: 1, Tid: 1}
	switch rec.Kind {
	case KindEnd:
		ev.Ph = "X"
		ev.Ts = rec.start().UnixMicro()
		ev.Dur = rec.Elapsed.Microseconds()
		if rec.Scope == ScopeFile {
			ev.Tid = rec.ID + 1
			ev.Args = map[string]any{"structs": rec.Structs}
		}
		if rec.Err != "" {
			if ev.Args == nil {
				ev.Args = map[string]any{}
			}
			ev.Args["err"] = rec.Err
		}
	case KindStruct:
		ev.Ph, ev.S = "i", "t"
		ev.Ts = rec.Time.UnixMicro()
		ev.Args = map[string]any{"size": rec.Size, "fields": rec.Fields}
	default:
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil
	}
	return data
}
