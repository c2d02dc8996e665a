package tableio

import (
	"errors"
	"fmt"
)

var (
	ErrHashMissing       = errors.New("table has no content hash")
	ErrHashMismatch      = errors.New("table content hash mismatch")
	ErrUnsupportedFormat = errors.New("unsupported table format")
	ErrEmptyTableName    = errors.New("table name must not be empty")
)

// HashError reports a stored digest that does not match the content.
type HashError struct {
	Stored   string
	Computed string
}

func (e *HashError) Error() string {
	return fmt.Sprintf("%v: stored %s, computed %s", ErrHashMismatch, e.Stored, e.Computed)
}

func (e *HashError) Unwrap() error {
	return ErrHashMismatch
}
