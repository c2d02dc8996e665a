package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostics holds every diagnostic produced by one build.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic is a single finding.
type Diagnostic struct {
	Severity Severity
	// Code identifies the kind of problem, e.g. "unknown_field".
	Code string
	// Message is the human-readable description.
	Message string
	// Subject names the schema, rule or function the finding relates to.
	Subject string
	// Field names the record field involved (if any).
	Field string
	// Suggestions are close alternatives for a misspelled name.
	Suggestions []string
	// Err is the typed error behind the finding, kept for errors.As.
	Err error
}

// Severity of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, subject, field string, suggestions ...string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:    SeverityError,
		Code:        code,
		Message:     message,
		Subject:     subject,
		Field:       field,
		Suggestions: suggestions,
	})
}

// AddErr records err as an error diagnostic. The original error stays
// reachable through Err.
func (d *Diagnostics) AddErr(code string, err error, subject, field string) {
	if err == nil {
		return
	}

	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  err.Error(),
		Subject:  subject,
		Field:    field,
		Err:      err,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, subject, field string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Subject:  subject,
		Field:    field,
	})
}

// HasErrors reports whether any error was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge appends the findings of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// Err joins all error diagnostics, or returns nil when there are none.
// Typed errors are joined as-is so callers can match them with errors.As.
func (d *Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}

	errs := make([]error, len(d.Errors))
	for i, e := range d.Errors {
		if e.Err != nil {
			errs[i] = e.Err
		} else {
			errs[i] = errors.New(e.String())
		}
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return errors.Join(errs...)
}

// String formats a diagnostic as "subject field: [code] message".
func (d Diagnostic) String() string {
	var prefix []string
	if d.Subject != "" {
		prefix = append(prefix, "["+d.Subject+"]")
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
