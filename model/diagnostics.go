package model

import "strings"

// Severity of a non-fatal diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a non-fatal condition found while preparing a turn.
type Diagnostic struct {
	Severity Severity
	Message  string
}

// Diagnostics accumulates non-fatal conditions alongside a value.
type Diagnostics []Diagnostic

// Warn appends a warning.
func (d *Diagnostics) Warn(msg string) {
	*d = append(*d, Diagnostic{Severity: SeverityWarning, Message: msg})
}

// HasWarnings reports whether any warning was recorded.
func (d Diagnostics) HasWarnings() bool {
	for _, diag := range d {
		if diag.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Text joins all diagnostic messages, each prefixed by a space, in the
// order they were recorded.
func (d Diagnostics) Text() string {
	var sb strings.Builder
	for _, diag := range d {
		sb.WriteString(" ")
		sb.WriteString(diag.Message)
	}
	return sb.String()
}
