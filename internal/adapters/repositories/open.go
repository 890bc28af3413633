package repositories

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"pitstop-service/internal/config"
	"pitstop-service/internal/platform/db"
	"pitstop-service/internal/ports"
)

// Store is a RestroomStore the composition roots can health-check and close.
type Store interface {
	ports.RestroomStore
	ports.Pinger
	io.Closer
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return openPostgres(ctx, cfg)
	case "sqlite":
		return openSqlite(ctx, cfg)
	case "redis":
		return openRedis(ctx, cfg)
	case "elastic":
		return openElastic(ctx, cfg)
	default:
		return nil, eris.Errorf("open store: unknown driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if cfg.AutoMigrate {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		err = Migrate(ctx, sqlDB, "postgres")
		sqlDB.Close()
		if err != nil {
			return nil, err
		}
	}

	pool, err := db.OpenPool(ctx, cfg.DatabaseURL, cfg.MaxConns)
	if err != nil {
		return nil, err
	}
	return NewPostgresRestroomStore(pool, cfg.BatchSize, cfg.WriteAttempts), nil
}

func openSqlite(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "open store: create %s", dir)
		}
	}

	sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(ctx, sqlDB, "sqlite3"); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}
	return NewSqliteRestroomStore(sqlDB, cfg.BatchSize, cfg.WriteAttempts), nil
}

func openRedis(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, eris.Wrapf(err, "open store: ping redis %s", cfg.RedisAddr)
	}
	return NewRedisRestroomStore(client, cfg.RedisPrefix, cfg.BatchSize, cfg.WriteAttempts), nil
}

func openElastic(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	client, err := NewElasticClient(cfg.ElasticURL, nil)
	if err != nil {
		return nil, err
	}

	store := NewElasticRestroomStore(client, cfg.ElasticIndex, cfg.BatchSize, cfg.WriteAttempts)
	if cfg.AutoMigrate {
		if err := store.EnsureIndex(ctx); err != nil {
			client.Stop()
			return nil, err
		}
	}
	return store, nil
}
