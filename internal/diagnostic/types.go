package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"wf-exporter/internal/common"
)

// Diagnostics holds all diagnostic information from validation or export.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Job identifies which job or pipeline this relates to (if any).
	Job string
	// Field identifies which setting or YAML field this relates to (if any).
	Field string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError records an error against job and field.
func (d *Diagnostics) AddError(code, message, job, field string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Job: job, Field: field})
}

// AddWarning records a warning against job and field.
func (d *Diagnostics) AddWarning(code, message, job, field string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Job: job, Field: field})
}

// AddInfo records an informational note.
func (d *Diagnostics) AddInfo(code, message, job, field string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Job: job, Field: field})
}

// Add appends a fully populated diagnostic according to its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid reports whether no error diagnostics were recorded.
func (d *Diagnostics) IsValid() bool { return len(d.Errors) == 0 }

// HasErrors is the negation of IsValid.
func (d *Diagnostics) HasErrors() bool { return !d.IsValid() }

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	return errors.New(strings.Join(messages(d.Errors), "; "))
}

// WarningMessages returns the formatted warnings in insertion order.
func (d *Diagnostics) WarningMessages() []string {
	return messages(d.Warnings)
}

func messages(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, diag := range diags {
		out = append(out, diag.String())
	}

	return out
}

// HasCode reports whether any diagnostic of any severity carries code.
func (d *Diagnostics) HasCode(code string) bool {
	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range group {
			if diag.Code == code {
				return true
			}
		}
	}

	return false
}

// String renders "[job] field: [code] message (did you mean: ...?)",
// omitting the parts that are empty.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Job != "" {
		fmt.Fprintf(&b, "[%s]", d.Job)
	}

	if d.Field != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = "[" + d.Code + "] " + msg
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean: " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if b.Len() == 0 {
		return msg
	}

	return b.String() + ": " + msg
}
