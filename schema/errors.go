package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hgrecco/dataframing/internal/match"
)

// ErrUnknownField is matched by every *FieldError.
var ErrUnknownField = errors.New("unknown field")

const maxSuggestions = 3

// FieldError reports a field name that a schema does not declare.
type FieldError struct {
	Schema      string
	Field       string
	Suggestions []string
}

// NewFieldError builds a FieldError for name, suggesting close names from s.
func NewFieldError(s *Schema, name string) *FieldError {
	return &FieldError{
		Schema:      s.Name(),
		Field:       name,
		Suggestions: match.Suggest(name, s.Names(), maxSuggestions),
	}
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("unknown field %q in schema %s", e.Field, e.Schema)
	if len(e.Suggestions) > 0 {
		quoted := make([]string, len(e.Suggestions))
		for i, s := range e.Suggestions {
			quoted[i] = fmt.Sprintf("%q", s)
		}

		msg += " (did you mean " + strings.Join(quoted, ", ") + "?)"
	}

	return msg
}

func (e *FieldError) Unwrap() error {
	return ErrUnknownField
}
