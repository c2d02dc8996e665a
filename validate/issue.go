package validate

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeMissingColumn = "missing_column"
	CodeMissingField  = "missing_field"
	CodeUnknownColumn = "unknown_column"
	CodeInvalidType   = "invalid_type"
	CodeNilValue      = "nil_value"
)

// ErrInvalid is wrapped by the error of a report with issues.
var ErrInvalid = errors.New("validation failed")

// Issue is a single finding. Row is -1 for findings about a whole column.
type Issue struct {
	Row      int
	Column   string
	Code     string
	Expected string
	Got      string
	Value    any
}

func (i Issue) String() string {
	where := "column " + i.Column
	if i.Row >= 0 {
		where = fmt.Sprintf("row %d column %s", i.Row, i.Column)
	}

	switch i.Code {
	case CodeInvalidType, CodeNilValue:
		return fmt.Sprintf("%s at %s: expected %s, got %s", i.Code, where, i.Expected, i.Got)
	default:
		return fmt.Sprintf("%s at %s", i.Code, where)
	}
}

// Issues is a collection of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	const maxShown = 3

	b := &strings.Builder{}
	for i, it := range iss {
		if i == maxShown {
			fmt.Fprintf(b, "; ... (total %d)", len(iss))
			break
		}

		if i > 0 {
			b.WriteString("; ")
		}

		b.WriteString(it.String())
	}

	return b.String()
}

// Report is the result of a validation.
type Report struct {
	Schema string
	Rows   int
	Issues Issues
	// Truncated is set when validation stopped at the issue limit.
	Truncated bool
}

// OK reports whether no issue was found.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// Err returns nil for a clean report, or an error wrapping both ErrInvalid
// and the Issues.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}

	return fmt.Errorf("%w against %s: %w", ErrInvalid, r.Schema, r.Issues)
}

// Columns returns the columns with at least one issue, in order of first
// appearance.
func (r *Report) Columns() []string {
	var cols []string

	seen := map[string]bool{}
	for _, it := range r.Issues {
		if !seen[it.Column] {
			seen[it.Column] = true
			cols = append(cols, it.Column)
		}
	}

	return cols
}
