// Package models defines data structures shared by the grid, the
// persistence gateways and the exporters.
package models

import "github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"

// Cells maps a coordinate to the raw text of a non-empty cell. It is the
// unit of exchange between a grid and a persistence gateway; a missing key
// means the cell is empty.
type Cells map[address.Address]string

// CellRow represents a single exported row of a sheet.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// C maps column label to the raw cell text.
	C map[string]string `json:"c"`
	// V maps column label to the displayed value, for cells whose display
	// differs from their raw text (formulas).
	V map[string]string `json:"v,omitempty"`
}
