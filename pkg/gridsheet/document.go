package gridsheet

import (
	"context"
	"log/slog"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/editor"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/grid"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/models"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/store"
)

// Document is one open sheet: its grid, the editor driving it and the
// gateway it is loaded from and saved to.
type Document struct {
	gw       store.Gateway
	opts     Options
	log      *slog.Logger
	sheet    string
	viewRows int
	viewCols int
	editor   *editor.Editor
}

// NewDocument creates a document holding an empty rows x cols grid for
// opts.Sheet. Nothing is loaded until Load is called.
func NewDocument(gw store.Gateway, opts Options, rows, cols int) (*Document, error) {
	g, err := grid.New(rows, cols)
	if err != nil {
		return nil, err
	}
	return &Document{
		gw:       gw,
		opts:     opts,
		log:      opts.logger(),
		sheet:    opts.Sheet,
		viewRows: rows,
		viewCols: cols,
		editor:   editor.New(g, opts.CellWidth),
	}, nil
}

// Sheet returns the current sheet id.
func (d *Document) Sheet() string { return d.sheet }

// Grid returns the current grid.
func (d *Document) Grid() *grid.Grid { return d.editor.Grid() }

// Editor returns the navigation and edit state machine.
func (d *Document) Editor() *editor.Editor { return d.editor }

// Load replaces the grid with the saved content of sheetID. The new grid
// is at least the view size and grows to fit the saved data up to
// MaxRows x MaxCols; cells beyond that are dropped. If the gateway fails the
// current grid is kept as is.
func (d *Document) Load(ctx context.Context, sheetID string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	cells, err := d.gw.Load(ctx, sheetID)
	if err != nil {
		d.log.Error("load failed", "sheet", sheetID, "err", err)
		return NewDocumentError(sheetID, "load", err)
	}

	needRows, needCols := grid.RequiredSize(cells)
	rows := clamp(max(d.viewRows, needRows), 1, d.opts.MaxRows)
	cols := clamp(max(d.viewCols, needCols), 1, d.opts.MaxCols)
	g, err := grid.New(rows, cols)
	if err != nil {
		return NewDocumentError(sheetID, "load", err)
	}
	applied := g.BulkLoad(cells)

	d.editor.SetGrid(g)
	d.sheet = sheetID
	d.log.Info("sheet loaded", "sheet", sheetID, "cells", applied, "dropped", len(cells)-applied, "rows", rows, "cols", cols)
	return nil
}

// Save writes every non-empty cell of the grid to the gateway. A cell being
// edited is saved with its last committed text.
func (d *Document) Save(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	cells := d.Grid().BulkExport()
	if err := d.gw.Save(ctx, d.sheet, cells); err != nil {
		d.log.Error("save failed", "sheet", d.sheet, "err", err)
		return NewDocumentError(d.sheet, "save", err)
	}
	d.log.Info("sheet saved", "sheet", d.sheet, "cells", len(cells))
	return nil
}

// Sheets lists the sheet catalog.
func (d *Document) Sheets(ctx context.Context) ([]models.SheetInfo, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	sheets, err := d.gw.ListSheets(ctx)
	if err != nil {
		return nil, NewDocumentError("", "list", err)
	}
	return sheets, nil
}

// CreateSheet adds an empty sheet to the catalog.
func (d *Document) CreateSheet(ctx context.Context, name string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	if err := d.gw.CreateSheet(ctx, name); err != nil {
		return NewDocumentError(name, "create", err)
	}
	d.log.Info("sheet created", "sheet", name)
	return nil
}

func (d *Document) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.opts.Timeout)
}
