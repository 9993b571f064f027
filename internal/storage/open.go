package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/splits/internal/config"
)

// Backend is a training store that also records import logs.
type Backend interface {
	Store
	ImportLogStore
}

// Open connects to the store selected by cfg.Driver. For postgres, migrations
// in migrationsPath are applied first unless migrationsPath is empty. The
// returned func releases the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, migrationsPath string) (Backend, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := OpenLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil

	case config.DriverPostgres:
		dsn := cfg.DSN()
		if migrationsPath != "" {
			if err := RunMigrations(dsn, migrationsPath); err != nil {
				return nil, nil, err
			}
		}
		db, err := New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
