package gridsheet

import (
	"context"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/store"
)

// NewGateway builds the gateway selected by opts. The gateway is returned
// unconnected.
func NewGateway(opts Options) (store.Gateway, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch opts.Backend {
	case BackendRedis:
		return store.NewRedisGateway(opts.RedisAddr, opts.RedisPassword, opts.RedisDB), nil
	case BackendXLSX:
		return store.NewWorkbookGateway(opts.WorkbookPath), nil
	}
	return store.NewMemoryGateway(), nil
}

// Connect builds and connects the gateway selected by opts.
func Connect(ctx context.Context, opts Options) (store.Gateway, error) {
	gw, err := NewGateway(opts)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if err := gw.Connect(ctx); err != nil {
		return nil, err
	}
	opts.logger().Info("gateway connected", "backend", string(opts.Backend))
	return gw, nil
}
