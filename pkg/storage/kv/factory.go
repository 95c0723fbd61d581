package kv

import (
	"context"
	"fmt"

	"github.com/pharmalink/pharmacy-pos/pkg/config"
	"github.com/pharmalink/pharmacy-pos/pkg/db"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
	"github.com/pharmalink/pharmacy-pos/pkg/redis"
)

// Backend is an opened store together with the resources behind it. Counter
// is shared through redis when that driver is selected, otherwise it is local
// to the process.
type Backend struct {
	Store   Store
	Counter Counter
	Pinger  interface{ Ping(context.Context) error }
	Close   func() error
}

// Open builds the store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: NewRedis(client), Counter: client, Pinger: client, Close: client.Close}, nil
	case config.StoreDriverSQLite:
		client, err := db.New(ctx, cfg.Store, logg)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: NewSQLite(client.DB()), Counter: NewMemoryCounter(), Pinger: client, Close: client.Close}, nil
	case config.StoreDriverMemory:
		return &Backend{Store: NewMemory(), Counter: NewMemoryCounter(), Close: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
