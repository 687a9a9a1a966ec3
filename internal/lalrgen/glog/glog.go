// Package glog wraps pterm loggers the way tunaq's command layer wraps
// its own console output helpers: one scoped logger per subsystem,
// rather than a single global logger every package writes through
// directly.
//
// Grounded on npillmayer/gorgo's go.mod, which depends on pterm for its
// own generator console output; the teacher itself has no logging
// package (tunaq's server uses its own ad hoc fmt.Println-based
// reporting), so the *wrapping* idiom -- a logger scoped to a subsystem
// name, created by the caller with New -- follows how the teacher's own
// internal/command layer exposes one helper type per concern rather
// than a bag of free functions.
package glog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

// Logger scopes pterm output under a subsystem name and an optional run
// id (spec: "stamps each generator invocation with a run id included in
// log lines").
type Logger struct {
	subsystem string
	runID     uuid.UUID
}

// New returns a Logger for subsystem, stamped with runID.
func New(subsystem string, runID uuid.UUID) *Logger {
	return &Logger{subsystem: subsystem, runID: runID}
}

func (l *Logger) prefix() string {
	return fmt.Sprintf("[%s %s]", l.subsystem, l.runID.String()[:8])
}

// Info logs an informational line, e.g. progress or a non-fatal warning.
func (l *Logger) Info(format string, args ...any) {
	pterm.Info.Println(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// Warn logs a degraded-result warning -- used for the counterexample
// search's hard-deadline notice and for a failed cache write.
func (l *Logger) Warn(format string, args ...any) {
	pterm.Warning.Println(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// Error logs a fatal-path message (grammar errors, internal invariant
// violations) before the caller returns an error.
func (l *Logger) Error(format string, args ...any) {
	pterm.Error.Println(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// Progress starts a pterm spinner for a long-running operation (the
// counterexample search), returning a stop function that finalizes the
// spinner with a success or failure glyph.
func Progress(l *Logger, text string) (stop func(success bool, final string)) {
	spinner, _ := pterm.DefaultSpinner.Start(l.prefix() + " " + text)
	return func(success bool, final string) {
		if success {
			spinner.Success(final)
		} else {
			spinner.Warning(final)
		}
	}
}
