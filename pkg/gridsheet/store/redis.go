package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/models"
)

// RedisGateway stores each sheet as a hash under "spreadsheet:{id}" with one
// "{row}:{col}" field per non-empty cell. The catalog is a sorted set scored
// by a creation sequence number.
type RedisGateway struct {
	opts   *redis.Options
	client *redis.Client
}

var _ Gateway = (*RedisGateway)(nil)

// NewRedisGateway creates an unconnected gateway for the given server.
func NewRedisGateway(addr, password string, db int) *RedisGateway {
	return &RedisGateway{
		opts: &redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		},
	}
}

func (g *RedisGateway) Connect(ctx context.Context) error {
	if g.client != nil {
		return nil
	}
	client := redis.NewClient(g.opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewPersistenceError("connect", "", err)
	}
	g.client = client
	return nil
}

func (g *RedisGateway) IsHealthy(ctx context.Context) bool {
	return g.client != nil && g.client.Ping(ctx).Err() == nil
}

func (g *RedisGateway) Save(ctx context.Context, sheetID string, cells models.Cells) error {
	if err := g.check("save", sheetID); err != nil {
		return err
	}

	fields := make(map[string]interface{}, len(cells))
	for a, text := range cells {
		if text == "" {
			continue
		}
		fields[FieldKey(a)] = text
	}

	if len(fields) > 0 {
		_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, Namespace(sheetID), fields)
			return nil
		})
		if err != nil {
			return NewPersistenceError("save", sheetID, err)
		}
	}

	if _, err := g.register(ctx, sheetID); err != nil {
		return NewPersistenceError("save", sheetID, err)
	}
	return nil
}

func (g *RedisGateway) Load(ctx context.Context, sheetID string) (models.Cells, error) {
	if err := g.check("load", sheetID); err != nil {
		return nil, err
	}

	fields, err := g.client.HGetAll(ctx, Namespace(sheetID)).Result()
	if err != nil {
		return nil, NewPersistenceError("load", sheetID, err)
	}

	out := make(models.Cells, len(fields))
	for key, text := range fields {
		a, err := ParseFieldKey(key)
		if err != nil {
			return nil, NewPersistenceError("load", sheetID, err)
		}
		if text != "" {
			out[a] = text
		}
	}
	return out, nil
}

func (g *RedisGateway) ListSheets(ctx context.Context) ([]models.SheetInfo, error) {
	if g.client == nil {
		return nil, NewPersistenceError("list", "", ErrNotConnected)
	}

	names, err := g.client.ZRange(ctx, CatalogKey, 0, -1).Result()
	if err != nil {
		return nil, NewPersistenceError("list", "", err)
	}
	out := make([]models.SheetInfo, 0, len(names))
	for _, name := range names {
		out = append(out, models.SheetInfo{Name: name})
	}
	return out, nil
}

func (g *RedisGateway) CreateSheet(ctx context.Context, name string) error {
	if err := g.check("create", name); err != nil {
		return err
	}
	added, err := g.register(ctx, name)
	if err != nil {
		return NewPersistenceError("create", name, err)
	}
	if !added {
		return NewPersistenceError("create", name, ErrSheetExists)
	}
	return nil
}

func (g *RedisGateway) Close() error {
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

func (g *RedisGateway) check(op, sheetID string) error {
	if g.client == nil {
		return NewPersistenceError(op, sheetID, ErrNotConnected)
	}
	if err := ValidateSheetName(sheetID); err != nil {
		return NewPersistenceError(op, sheetID, err)
	}
	return nil
}

// register adds name to the catalog unless present and reports whether it
// was added.
func (g *RedisGateway) register(ctx context.Context, name string) (bool, error) {
	err := g.client.ZScore(ctx, CatalogKey, name).Err()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, redis.Nil) {
		return false, err
	}

	seq, err := g.client.Incr(ctx, catalogSeqKey).Result()
	if err != nil {
		return false, err
	}
	n, err := g.client.ZAddNX(ctx, CatalogKey, redis.Z{Score: float64(seq), Member: name}).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
