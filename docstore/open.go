package docstore

import (
	"context"
	"fmt"

	"github.com/etnz/fiado"
)

// Options selects and configures a store.
type Options struct {
	Driver   string `mapstructure:"driver" validate:"oneof=dir sqlite postgres redis memory"`
	Dir      string `mapstructure:"dir"`
	DSN      string `mapstructure:"dsn"`
	RedisURL string `mapstructure:"redis_url"`
}

// Open opens the store described by opts. The returned function releases it.
func Open(ctx context.Context, opts Options) (fiado.DocumentStore, func() error, error) {
	nop := func() error { return nil }
	switch opts.Driver {
	case "memory":
		return fiado.NewMemoryStore(), nop, nil
	case "", "dir":
		s, err := OpenDir(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, nop, nil
	case "sqlite", "postgres":
		if opts.DSN == "" {
			return nil, nil, fmt.Errorf("store.dsn is required by the %s driver", opts.Driver)
		}
		s, err := OpenSQL(opts.Driver, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		s, err := OpenRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
