package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	configx "github.com/tanpawarit/golf-caddy-agent/pkg/config"
)

// Open builds the configured backend and wraps it in Resilient.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (Client, error) {
	var (
		backend Client
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		backend = NewMemoryClient()
	case BackendSQLite:
		var sc *SQLiteConfig
		if sc, err = configx.New[SQLiteConfig]("SQLITE"); err == nil {
			backend, err = NewSQLiteClient(ctx, *sc)
		}
	case BackendPostgres:
		var pc *PostgresConfig
		if pc, err = configx.New[PostgresConfig]("POSTGRES"); err == nil {
			backend, err = NewPostgresClient(ctx, *pc)
		}
	case BackendUpstash:
		var uc *UpstashRedisConfig
		if uc, err = configx.New[UpstashRedisConfig]("UPSTASH_REDIS"); err == nil {
			backend, err = NewUpstashClient(*uc)
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	log.Info().Str("backend", cfg.Backend).Msg("round store ready")
	return NewResilient(backend, cfg, log), nil
}
