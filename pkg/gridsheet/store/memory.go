package store

import (
	"context"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/models"
)

// MemoryGateway keeps sheets in process memory, laid out like the redis
// backend: one hash of "{row}:{col}" fields per namespace.
type MemoryGateway struct {
	connected bool
	hashes    map[string]map[string]string
	catalog   []string
}

var _ Gateway = (*MemoryGateway)(nil)

// NewMemoryGateway creates an empty, unconnected in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{hashes: make(map[string]map[string]string)}
}

func (m *MemoryGateway) Connect(ctx context.Context) error {
	m.connected = true
	return nil
}

func (m *MemoryGateway) IsHealthy(ctx context.Context) bool {
	return m.connected
}

func (m *MemoryGateway) Save(ctx context.Context, sheetID string, cells models.Cells) error {
	if err := m.check("save", sheetID); err != nil {
		return err
	}

	ns := Namespace(sheetID)
	h, ok := m.hashes[ns]
	if !ok {
		h = make(map[string]string)
		m.hashes[ns] = h
	}
	for a, text := range cells {
		if text == "" {
			continue
		}
		h[FieldKey(a)] = text
	}
	m.register(sheetID)
	return nil
}

func (m *MemoryGateway) Load(ctx context.Context, sheetID string) (models.Cells, error) {
	if err := m.check("load", sheetID); err != nil {
		return nil, err
	}

	out := make(models.Cells)
	for key, text := range m.hashes[Namespace(sheetID)] {
		a, err := ParseFieldKey(key)
		if err != nil {
			return nil, NewPersistenceError("load", sheetID, err)
		}
		out[a] = text
	}
	return out, nil
}

func (m *MemoryGateway) ListSheets(ctx context.Context) ([]models.SheetInfo, error) {
	if !m.connected {
		return nil, NewPersistenceError("list", "", ErrNotConnected)
	}
	out := make([]models.SheetInfo, 0, len(m.catalog))
	for _, name := range m.catalog {
		out = append(out, models.SheetInfo{Name: name})
	}
	return out, nil
}

func (m *MemoryGateway) CreateSheet(ctx context.Context, name string) error {
	if err := m.check("create", name); err != nil {
		return err
	}
	if !m.register(name) {
		return NewPersistenceError("create", name, ErrSheetExists)
	}
	return nil
}

func (m *MemoryGateway) Close() error {
	m.connected = false
	return nil
}

func (m *MemoryGateway) check(op, sheetID string) error {
	if !m.connected {
		return NewPersistenceError(op, sheetID, ErrNotConnected)
	}
	if err := ValidateSheetName(sheetID); err != nil {
		return NewPersistenceError(op, sheetID, err)
	}
	return nil
}

// register appends name to the catalog and reports whether it was new.
func (m *MemoryGateway) register(name string) bool {
	for _, existing := range m.catalog {
		if existing == name {
			return false
		}
	}
	m.catalog = append(m.catalog, name)
	return true
}
