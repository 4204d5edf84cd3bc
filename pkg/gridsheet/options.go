// Package gridsheet ties the grid, the editor and a persistence gateway into
// an editable, savable sheet document.
package gridsheet

import (
	"fmt"
	"log/slog"
	"time"
)

// Backend selects the persistence gateway implementation.
type Backend string

const (
	// BackendMemory keeps sheets in process memory only.
	BackendMemory Backend = "memory"
	// BackendRedis stores sheets as redis hashes.
	BackendRedis Backend = "redis"
	// BackendXLSX stores sheets as worksheets of one .xlsx file.
	BackendXLSX Backend = "xlsx"
)

// Layout of the terminal view around the cell area.
const (
	// RowGutter is the width of the row-number column.
	RowGutter = 5
	// HeaderLines is the height of the column label row.
	HeaderLines = 1
	// StatusLines is the height of the status and command lines.
	StatusLines = 2
)

// Options configures a document and its gateway.
type Options struct {
	// Backend specifies the persistence backend (memory, redis, xlsx).
	Backend Backend
	// RedisAddr is the host:port of the redis server.
	RedisAddr string
	// RedisPassword authenticates against the redis server.
	RedisPassword string
	// RedisDB selects the redis logical database.
	RedisDB int
	// WorkbookPath is the .xlsx file used by the xlsx backend.
	WorkbookPath string
	// Sheet is the sheet opened on start.
	Sheet string
	// Rows and Cols fix the grid size. Zero fits the grid to the terminal.
	Rows int
	Cols int
	// CellWidth and CellHeight are the on-screen size of one cell.
	CellWidth  int
	CellHeight int
	// MaxRows and MaxCols cap the grid size when a loaded sheet is larger
	// than the view.
	MaxRows int
	MaxCols int
	// Timeout bounds each gateway call.
	Timeout time.Duration
	// Logger receives document events. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Backend:    BackendMemory,
		RedisAddr:  "127.0.0.1:6379",
		Sheet:      "1",
		CellWidth:  12,
		CellHeight: 3,
		MaxRows:    999,
		MaxCols:    26,
		Timeout:    5 * time.Second,
	}
}

// Validate checks that the options describe a usable configuration.
func (o Options) Validate() error {
	switch o.Backend {
	case BackendMemory:
	case BackendRedis:
		if o.RedisAddr == "" {
			return fmt.Errorf("%w: redis backend needs an address", ErrInvalidOptions)
		}
	case BackendXLSX:
		if o.WorkbookPath == "" {
			return fmt.Errorf("%w: xlsx backend needs a file", ErrInvalidOptions)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q (must be memory, redis, or xlsx)", ErrInvalidOptions, o.Backend)
	}

	if o.Rows < 0 || o.Cols < 0 {
		return fmt.Errorf("%w: negative grid size %dx%d", ErrInvalidOptions, o.Rows, o.Cols)
	}
	if o.CellWidth < 3 || o.CellHeight < 2 {
		return fmt.Errorf("%w: cells must be at least 3x2, got %dx%d", ErrInvalidOptions, o.CellWidth, o.CellHeight)
	}
	if o.MaxRows < 1 || o.MaxCols < 1 {
		return fmt.Errorf("%w: max size must be positive", ErrInvalidOptions)
	}
	if o.Rows > o.MaxRows || o.Cols > o.MaxCols {
		return fmt.Errorf("%w: grid %dx%d exceeds max %dx%d", ErrInvalidOptions, o.Rows, o.Cols, o.MaxRows, o.MaxCols)
	}
	return nil
}

// FixedSize reports whether the grid size is configured explicitly rather
// than derived from the terminal.
func (o Options) FixedSize() bool {
	return o.Rows > 0 && o.Cols > 0
}

// FitSize returns the grid size for a width x height terminal. Explicit
// Rows/Cols win; otherwise as many whole cells as fit, at least one each.
func (o Options) FitSize(width, height int) (rows, cols int) {
	rows, cols = o.Rows, o.Cols
	if rows == 0 {
		rows = (height - HeaderLines - StatusLines) / o.CellHeight
	}
	if cols == 0 {
		cols = (width - RowGutter) / o.CellWidth
	}
	return clamp(rows, 1, o.MaxRows), clamp(cols, 1, o.MaxCols)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
