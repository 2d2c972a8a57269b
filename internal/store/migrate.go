package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/frahmantamala/shiftboard/internal/store/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

const migrationTable = "schema_migrations"

func prepareGoose(db *gorm.DB) (*sql.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetTableName(migrationTable)
	goose.SetLogger(goose.NopLogger())

	dialect := "sqlite3"
	if DriverName(db) == postgresDriverName {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return sqlDB, nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := prepareGoose(db)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Rollback reverts the latest applied migration.
func Rollback(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := prepareGoose(db)
	if err != nil {
		return err
	}
	if err := goose.DownContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// Version reports the current schema version.
func Version(ctx context.Context, db *gorm.DB) (int64, error) {
	sqlDB, err := prepareGoose(db)
	if err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}
