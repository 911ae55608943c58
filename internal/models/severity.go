package models

import "errors"

// Severity is the accumulated failure level of one listing run.
// Levels are totally ordered and map directly to process exit codes.
type Severity int

const (
	// SeverityNone means every requested path was listed.
	SeverityNone Severity = iota
	// SeverityMinor means some paths or entries failed but output was produced.
	SeverityMinor
	// SeverityMajor means a fatal configuration error stopped the run.
	SeverityMajor
)

// ErrNotFound replaces fs.ErrNotExist in diagnostics. The text is the
// wording ls prints.
var ErrNotFound = errors.New("No such file or directory")

// Raise moves the severity up to s. It never lowers it.
func (s *Severity) Raise(other Severity) {
	if other > *s {
		*s = other
	}
}

// Code returns the process exit code for the severity.
func (s Severity) Code() int {
	return int(s)
}

// String returns a human-readable name for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "ok"
	case SeverityMinor:
		return "minor"
	case SeverityMajor:
		return "major"
	default:
		return "unknown"
	}
}
