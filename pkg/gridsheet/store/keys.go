package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
)

// NamespacePrefix scopes every sheet key.
const NamespacePrefix = "spreadsheet:"

// CatalogKey holds the ordered sheet catalog.
const CatalogKey = NamespacePrefix + "sheets"

// catalogSeqKey numbers catalog entries so they list in creation order.
const catalogSeqKey = NamespacePrefix + "sheets:seq"

// Namespace returns the key owning a sheet's cells.
func Namespace(sheetID string) string {
	return NamespacePrefix + sheetID
}

// FieldKey serialises a coordinate as "{row}:{col}".
func FieldKey(a address.Address) string {
	return strconv.Itoa(a.Row) + ":" + strconv.Itoa(a.Col)
}

// ParseFieldKey is the inverse of FieldKey.
func ParseFieldKey(key string) (address.Address, error) {
	rowStr, colStr, ok := strings.Cut(key, ":")
	if !ok {
		return address.Address{}, fmt.Errorf("malformed cell key %q", key)
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil || row < 0 {
		return address.Address{}, fmt.Errorf("malformed cell key %q", key)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 0 {
		return address.Address{}, fmt.Errorf("malformed cell key %q", key)
	}
	return address.Address{Row: row, Col: col}, nil
}
