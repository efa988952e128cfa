// Package infra selects the persistence backend named by configuration.
package infra

import (
	"context"
	"fmt"
	"os"
	"taskboard/internal/config"
	"taskboard/internal/infra/filestore"
	"taskboard/internal/infra/memstore"
	"taskboard/internal/infra/redisstore"
	"taskboard/internal/infra/sqlstore"
	"taskboard/internal/ports"
)

func OpenPersister(ctx context.Context, cfg config.Storage, rcfg config.Redis) (ports.Persister, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memstore.New(), nil
	case config.DriverFile:
		return filestore.New(cfg.DataDir), nil
	case config.DriverRedis:
		cli := redisstore.New(rcfg)
		if err := cli.Connect(ctx); err != nil {
			_ = cli.Close()
			return nil, err
		}
		return cli, nil
	case config.DriverSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlstore.New(cfg.SQLitePath())
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// Shared reports whether other processes can write the same backend.
func Shared(driver string) bool {
	return driver == config.DriverRedis || driver == config.DriverSQLite
}
