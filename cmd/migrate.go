package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded sql migrations against the configured database",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	if migrateRollback {
		if err := store.Rollback(ctx, db); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
	} else if err := store.Migrate(ctx, db); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := store.Version(ctx, db)
	if err != nil {
		return err
	}
	logger.LoggerWrapper().Info("migrations applied", "version", version, "rollback", migrateRollback)
	return nil
}
