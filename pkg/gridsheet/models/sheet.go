package models

// SheetInfo is a catalog entry for a persisted sheet.
type SheetInfo struct {
	// Name is the sheet identifier used as its storage namespace.
	Name string `json:"name"`
}

// SheetData represents the exported content of a single sheet.
type SheetData struct {
	// Name is the sheet identifier.
	Name string `json:"name"`
	// Rows is the grid height.
	Rows int `json:"rows"`
	// Cols is the grid width.
	Cols int `json:"cols"`
	// CellRows contains the non-empty rows in increasing order.
	CellRows []CellRow `json:"cell_rows,omitempty"`
}
