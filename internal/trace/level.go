package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
	}
}

// ShouldEmit reports whether spans of scope are recorded at this level.
// Point events are governed by ShouldEmitPoint.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopeUnit
	case LevelDetail:
		return scope <= ScopePass
	case LevelDebug:
		return true
	}
	return false
}

// ShouldEmitPoint reports whether instant events of scope are recorded.
// Points up to pass scope are errors, so LevelError already keeps them.
func (l Level) ShouldEmitPoint(scope Scope) bool {
	if l == LevelOff {
		return false
	}
	return scope <= ScopePass || l == LevelDebug
}

func (l Level) allows(ev *Event) bool {
	if ev.Kind == KindPoint {
		return l.ShouldEmitPoint(ev.Scope)
	}
	return l.ShouldEmit(ev.Scope)
}
