// Package store persists sheets through a Gateway.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/models"
)

// ErrNotConnected indicates a gateway used before Connect or after Close.
var ErrNotConnected = errors.New("gateway not connected")

// ErrSheetExists indicates CreateSheet with a name already in the catalog.
var ErrSheetExists = errors.New("sheet already exists")

// ErrInvalidSheetName indicates an empty or unusable sheet name.
var ErrInvalidSheetName = errors.New("invalid sheet name")

// Gateway is a bulk key-value persistence backend for sheets. A gateway is
// constructed explicitly, connected once and injected into its users.
type Gateway interface {
	// Connect establishes the backend connection.
	Connect(ctx context.Context) error
	// IsHealthy reports whether the backend currently answers.
	IsHealthy(ctx context.Context) bool
	// Save upserts every entry of cells for the sheet. Empty texts are
	// skipped, never deleted.
	Save(ctx context.Context, sheetID string, cells models.Cells) error
	// Load returns every non-empty entry saved for the sheet.
	Load(ctx context.Context, sheetID string) (models.Cells, error)
	// ListSheets returns the sheet catalog in creation order.
	ListSheets(ctx context.Context) ([]models.SheetInfo, error)
	// CreateSheet adds an empty sheet to the catalog.
	CreateSheet(ctx context.Context, name string) error
	// Close releases the connection.
	Close() error
}

// PersistenceError represents a failed gateway operation.
type PersistenceError struct {
	Op    string // "connect", "save", "load", "list", "create"
	Sheet string
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("persistence error (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence error in sheet %q (%s): %v", e.Sheet, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(op, sheet string, err error) *PersistenceError {
	return &PersistenceError{
		Op:    op,
		Sheet: sheet,
		Err:   err,
	}
}

// ValidateSheetName rejects names that cannot serve as a namespace.
func ValidateSheetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSheetName)
	}
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("%w: %q contains a line break", ErrInvalidSheetName, name)
	}
	if Namespace(name) == CatalogKey || strings.HasPrefix(Namespace(name), CatalogKey+":") {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidSheetName, name)
	}
	return nil
}
