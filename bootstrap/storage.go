package bootstrap

import (
	"context"
	"fmt"
	"os"

	"whiteknight/config"
	"whiteknight/storage"

	"go.uber.org/zap"
)

// InitStore opens the entity store selected by storage.backend. For the
// SQLite backend it also starts pool metrics collection, which stops with ctx.
func InitStore(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		sugar.Info("Using in-memory entity store; data is lost on restart")
		return storage.NewMemoryStore(), nil

	case config.BackendSQLite:
		return initSQLiteStore(ctx, cfg, sugar)

	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Storage.Backend)
	}
}

func initSQLiteStore(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (storage.Store, error) {
	path := cfg.Storage.SQLitePath

	db, err := storage.NewSQLite(path, sugar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n========================================\n")
		fmt.Fprintf(os.Stderr, "FATAL: SQLite Initialization Failed\n")
		fmt.Fprintf(os.Stderr, "========================================\n")
		fmt.Fprintf(os.Stderr, "%s\n", ClassifySQLiteError(err, path))
		fmt.Fprintf(os.Stderr, "========================================\n\n")
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}

	store, err := storage.NewSQLiteStore(db, cfg.Storage.CacheSize, sugar)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	if cfg.Storage.MetricsInterval > 0 {
		db.StartMetricsCollection(ctx, cfg.Storage.MetricsInterval)
	}

	sugar.Infow("Using SQLite entity store", "path", path, "cache_size", cfg.Storage.CacheSize)
	return store, nil
}
