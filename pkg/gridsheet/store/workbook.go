package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/models"
)

// WorkbookGateway stores every sheet as a worksheet of one .xlsx file. Cells
// use the workbook's own coordinates instead of "{row}:{col}" keys.
type WorkbookGateway struct {
	path string
	file *excelize.File
}

var _ Gateway = (*WorkbookGateway)(nil)

// NewWorkbookGateway creates an unconnected gateway for the workbook at path.
// The file is created on first save if it does not exist.
func NewWorkbookGateway(path string) *WorkbookGateway {
	return &WorkbookGateway{path: path}
}

func (g *WorkbookGateway) Connect(ctx context.Context) error {
	if g.file != nil {
		return nil
	}
	f, err := g.open()
	if err != nil {
		return NewPersistenceError("connect", "", err)
	}
	g.file = f
	return nil
}

func (g *WorkbookGateway) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), nil
	}
	return f, err
}

func (g *WorkbookGateway) IsHealthy(ctx context.Context) bool {
	return g.file != nil
}

func (g *WorkbookGateway) Save(ctx context.Context, sheetID string, cells models.Cells) error {
	if err := g.check("save", sheetID); err != nil {
		return err
	}

	err := g.batch(func(f *excelize.File) error {
		if err := ensureSheet(f, sheetID); err != nil {
			return err
		}
		for a, text := range cells {
			if text == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(a.Col+1, a.Row+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheetID, cellName, text); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return NewPersistenceError("save", sheetID, err)
	}
	return nil
}

func (g *WorkbookGateway) Load(ctx context.Context, sheetID string) (models.Cells, error) {
	if err := g.check("load", sheetID); err != nil {
		return nil, err
	}

	idx, err := g.file.GetSheetIndex(sheetID)
	if err != nil {
		return nil, NewPersistenceError("load", sheetID, err)
	}
	if idx < 0 {
		return models.Cells{}, nil
	}

	cells, err := readCells(g.file, sheetID)
	if err != nil {
		return nil, NewPersistenceError("load", sheetID, err)
	}
	return cells, nil
}

func (g *WorkbookGateway) ListSheets(ctx context.Context) ([]models.SheetInfo, error) {
	if g.file == nil {
		return nil, NewPersistenceError("list", "", ErrNotConnected)
	}
	names := g.file.GetSheetList()
	out := make([]models.SheetInfo, 0, len(names))
	for _, name := range names {
		out = append(out, models.SheetInfo{Name: name})
	}
	return out, nil
}

func (g *WorkbookGateway) CreateSheet(ctx context.Context, name string) error {
	if err := g.check("create", name); err != nil {
		return err
	}

	idx, err := g.file.GetSheetIndex(name)
	if err != nil {
		return NewPersistenceError("create", name, err)
	}
	if idx >= 0 {
		return NewPersistenceError("create", name, ErrSheetExists)
	}

	err = g.batch(func(f *excelize.File) error {
		return ensureSheet(f, name)
	})
	if err != nil {
		return NewPersistenceError("create", name, err)
	}
	return nil
}

func (g *WorkbookGateway) Close() error {
	if g.file == nil {
		return nil
	}
	err := g.file.Close()
	g.file = nil
	return err
}

func (g *WorkbookGateway) check(op, sheetID string) error {
	if g.file == nil {
		return NewPersistenceError(op, sheetID, ErrNotConnected)
	}
	if err := ValidateSheetName(sheetID); err != nil {
		return NewPersistenceError(op, sheetID, err)
	}
	return nil
}

// batch applies fn to the open workbook and writes it to disk through a
// temporary file renamed over the target. On failure the workbook is
// reopened from disk so the half-applied batch is dropped.
func (g *WorkbookGateway) batch(fn func(f *excelize.File) error) error {
	err := fn(g.file)
	if err == nil {
		err = g.write()
	}
	if err != nil {
		if f, reopenErr := g.open(); reopenErr == nil {
			_ = g.file.Close()
			g.file = f
		}
		return err
	}
	return nil
}

func (g *WorkbookGateway) write() error {
	dir := filepath.Dir(g.path)
	tmp, err := os.CreateTemp(dir, ".gridsheet-*.xlsx")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := g.file.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), g.path)
}

func ensureSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx >= 0 {
		return nil
	}
	_, err = f.NewSheet(name)
	return err
}

// ReadSheet imports the non-empty cells of one worksheet from an arbitrary
// .xlsx file. An empty sheet name selects the first worksheet.
func ReadSheet(path, sheetName string) (models.Cells, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheetName == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
		}
		sheetName = list[0]
	}
	return readCells(f, sheetName)
}

// readCells collects the raw text of every non-empty cell of a sheet.
func readCells(f *excelize.File, sheetName string) (models.Cells, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	result := make(models.Cells)
	for rowIdx, row := range rows {
		for colIdx, cellValue := range row {
			if cellValue == "" {
				continue
			}
			result[address.Address{Row: rowIdx, Col: colIdx}] = cellValue
		}
	}
	return result, nil
}
