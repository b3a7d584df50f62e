// Package diag implements bironc's diagnostic sink: source-range-anchored
// errors with consecutive-range dedup and line/column formatting, grounded
// on _examples/original_source/src/biron/diagnostic.{h,cpp} and on the
// *diagnostics.DiagnosticError value funvibe/funxy's analyzer returns
// (internal/analyzer/analyzer.go references it as
// "[]*diagnostics.DiagnosticError"; the package's own source was not part
// of the retrieved pack, so this implementation follows the original C++
// behavior directly for the algorithm and funxy's field naming for the
// public shape).
package diag

import (
	"fmt"

	"github.com/biron-lang/bironc/internal/srcrange"
)

// Severity is the diagnostic's level.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem, anchored to a source range.
type Diagnostic struct {
	Range    srcrange.Range
	Severity Severity
	Message  string
}

// Sink collects diagnostics for one translation unit. It owns its own
// dedup state — there is no package-global mutable state, unlike the
// "Global mutable diagnostic deduplication" the Design Notes flag as a
// problem in the original.
type Sink struct {
	source    string
	diags     []Diagnostic
	lastRange srcrange.Range
	haveLast  bool
	fatal     bool
}

// NewSink creates a diagnostic sink over the given translation unit's
// source text, used to compute line/column positions on demand.
func NewSink(source string) *Sink {
	return &Sink{source: source}
}

// Report records a diagnostic. Consecutive diagnostics that share the same
// range as the immediately preceding one are dropped — this suppresses
// cascades from a single malformed construct (spec.md §4.2).
func (s *Sink) Report(r srcrange.Range, sev Severity, format string, args ...any) {
	if s.haveLast && s.lastRange == r {
		return
	}
	s.lastRange = r
	s.haveLast = true
	msg := Sprintf(format, args...)
	s.diags = append(s.diags, Diagnostic{Range: r, Severity: sev, Message: msg})
	if sev == Fatal {
		s.fatal = true
	}
}

// Warningf reports a warning-severity diagnostic.
func (s *Sink) Warningf(r srcrange.Range, format string, args ...any) {
	s.Report(r, Warning, format, args...)
}

// Errorf reports an error-severity diagnostic.
func (s *Sink) Errorf(r srcrange.Range, format string, args ...any) {
	s.Report(r, Error, format, args...)
}

// Fatalf reports a fatal-severity diagnostic. Callers must stop emitting
// code for the unit after a fatal, but the sink itself keeps accepting
// further diagnostics (spec.md §4.2: "later stages must stop emitting
// code ... but must continue reporting diagnostics").
func (s *Sink) Fatalf(r srcrange.Range, format string, args ...any) {
	s.Report(r, Fatal, format, args...)
}

// IsFatal reports whether any fatal diagnostic has been recorded.
func (s *Sink) IsFatal() bool { return s.fatal }

// HasErrors reports whether any diagnostic of severity Error or higher was
// recorded — the CLI's exit-code contract (spec.md §6.1, §8.1 invariant 8).
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}

// All returns every diagnostic recorded so far, in report order.
func (s *Sink) All() []Diagnostic {
	return s.diags
}

// Position computes the 1-based (line, column) of a byte offset by
// scanning from the start of the source, tracking the last line's length
// so an offset at the first column of a new line reports on the previous
// line's last column — matching diagnostic.cpp's position algorithm.
func (s *Sink) Position(offset uint32) (line, column int) {
	line = 1
	column = 1
	lastLineLen := 0
	for i := 0; i < int(offset) && i < len(s.source); i++ {
		if s.source[i] == '\n' {
			line++
			lastLineLen = column
			column = 1
		} else {
			column++
		}
	}
	if int(offset) > 0 && int(offset) <= len(s.source) && s.source[offset-1] == '\n' {
		line--
		column = lastLineLen
	}
	return line, column
}

// Format renders a diagnostic as "file:line:col: severity: message".
func (s *Sink) Format(file string, d Diagnostic) string {
	line, col := s.Position(d.Range.Offset)
	return fmt.Sprintf("%s:%d:%d: %s: %s", file, line, col, d.Severity, d.Message)
}
