package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rhyrak/go-registrar/internal/config"
	"github.com/rhyrak/go-registrar/internal/database"
)

// Open connects the backend named by cfg.StoreBackend. The returned close
// function releases its connections.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Store, func(), error) {
	switch cfg.StoreBackend {
	case "", "memory":
		log.Info().Str("backend", "memory").Msg("Run store ready")
		return NewMemoryStore(), func() {}, nil
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(pool), pool.Close, nil
	case "redis":
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(rdb, cfg.RunTTL), func() { rdb.Close() }, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
}
