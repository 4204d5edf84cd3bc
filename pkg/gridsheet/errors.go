package gridsheet

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions indicates a configuration that cannot be used.
var ErrInvalidOptions = errors.New("invalid options")

// DocumentError represents a failed load or save of a sheet.
type DocumentError struct {
	Sheet string
	Op    string // "load", "save", "list", "create"
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s of sheet %q failed: %v", e.Op, e.Sheet, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// NewDocumentError creates a new DocumentError.
func NewDocumentError(sheet, op string, err error) *DocumentError {
	return &DocumentError{
		Sheet: sheet,
		Op:    op,
		Err:   err,
	}
}
