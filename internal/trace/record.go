package trace

import (
	"fmt"
	"strings"
	"time"
)

// Level selects how fine-grained a trace is.
type Level uint8

const (
	LevelOff Level = iota
	// LevelPhase keeps the command span and its stages.
	LevelPhase
	// LevelFile adds a span per scanned header.
	LevelFile
	// LevelStruct adds a point per resolved struct.
	LevelStruct
)

var levelNames = [...]string{"off", "phase", "file", "struct"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// ParseLevel reads a --trace-level value.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("unknown trace level %q (want off|phase|file|struct)", s)
}

// Scope says what a record describes.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1
	ScopePhase
	ScopeFile
	ScopeStruct
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopePhase:
		return "phase"
	case ScopeFile:
		return "file"
	case ScopeStruct:
		return "struct"
	}
	return "unknown"
}

// keeps reports whether records of scope s are kept at level l.
func (l Level) keeps(s Scope) bool {
	switch l {
	case LevelPhase:
		return s <= ScopePhase
	case LevelFile:
		return s <= ScopeFile
	case LevelStruct:
		return s <= ScopeStruct
	}
	return false
}

// Kind distinguishes span boundaries from struct points.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindStruct
)

var kindNames = [...]string{KindBegin: "begin", KindEnd: "end", KindStruct: "struct"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Record is one trace entry. Only the fields that apply to its Kind and
// Scope are set.
type Record struct {
	Seq    uint64
	Time   time.Time
	Kind   Kind
	Scope  Scope
	ID     uint64 // span id, 0 for struct points
	Parent uint64
	Name   string

	Elapsed time.Duration // KindEnd
	Err     string        // KindEnd
	Structs int           // KindEnd of a file span: structs scanned

	Size   uint32 // KindStruct: laid-out size in bytes
	Fields int    // KindStruct
}

// start is when the span a KindEnd record closes was opened.
func (r *Record) start() time.Time {
	return r.Time.Add(-r.Elapsed)
}
