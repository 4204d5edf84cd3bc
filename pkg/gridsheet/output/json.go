// Package output serialises sheets for export.
package output

import (
	"encoding/json"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/grid"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/models"
)

// Sheet builds the exported form of a grid. Only non-empty rows are
// included; formula cells also carry their displayed value.
func Sheet(name string, g *grid.Grid) models.SheetData {
	rows, cols := g.Size()
	data := models.SheetData{Name: name, Rows: rows, Cols: cols}

	for r := 0; r < rows; r++ {
		var row *models.CellRow
		for c := 0; c < cols; c++ {
			cell, err := g.Get(r, c)
			if err != nil || cell.Text == "" {
				continue
			}
			if row == nil {
				row = &models.CellRow{R: r + 1, C: make(map[string]string)}
			}
			label := address.ColumnLabel(c)
			row.C[label] = cell.Text
			if cell.Formula != nil {
				if row.V == nil {
					row.V = make(map[string]string)
				}
				row.V[label] = g.DisplayValue(r, c)
			}
		}
		if row != nil {
			data.CellRows = append(data.CellRows, *row)
		}
	}
	return data
}

// ToJSON serialises a value, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
