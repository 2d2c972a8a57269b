// Package storetest opens migrated in-memory databases for tests.
package storetest

import (
	"context"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/store"
	"gorm.io/gorm"
)

// NewDB returns a fresh SQLite in-memory database with every migration applied.
func NewDB() (*gorm.DB, error) {
	db, err := store.Open(internal.DatabaseConfig{
		Driver: internal.DriverSQLite,
		Source: ":memory:",
	})
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(context.Background(), db); err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
