// Package navlog is the navigation core's logging seam.
//
// The core never imports a third-party logging library: nothing in the
// retrieval pack pulls one in for this kind of subsystem, and the teacher
// (arl-go-detour) logs ad hoc via the standard log package at the exact
// call sites this module mirrors (failed edge lookups, validation
// failures, capacity exhaustion). navlog keeps that idiom but gives it
// levels and a prefix so call sites read as intent rather than stray
// log.Println calls.
package navlog

import (
	"log"
	"os"
)

// Level controls which messages reach the underlying logger.
type Level int

const (
	LevelDebug Level = iota
	LevelWarn
	LevelError
	LevelSilent
)

var std = log.New(os.Stderr, "navcore: ", log.LstdFlags)

var level = LevelWarn

// SetLevel adjusts the minimum level that reaches the logger.
func SetLevel(l Level) { level = l }

// SetOutput redirects where log lines are written. Tests use this to
// silence the logger or capture its output.
func SetOutput(w interface{ Write([]byte) (int, error) }) {
	std = log.New(w, "navcore: ", log.LstdFlags)
}

// Debugf logs a development-build diagnostic (validation dumps, fringe
// node tracing). Silent by default.
func Debugf(format string, args ...interface{}) {
	if level <= LevelDebug {
		std.Printf("DEBUG "+format, args...)
	}
}

// Warnf logs a recoverable condition the caller is expected to tolerate
// (capacity exhaustion, stale handles, search truncation).
func Warnf(format string, args ...interface{}) {
	if level <= LevelWarn {
		std.Printf("WARN "+format, args...)
	}
}

// Errorf logs a condition that should not happen in a correctly driven
// system but that the core still returns as a status rather than panics
// on.
func Errorf(format string, args ...interface{}) {
	if level <= LevelError {
		std.Printf("ERROR "+format, args...)
	}
}
