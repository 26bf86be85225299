package main

import (
	"fmt"

	"github.com/fekuna/omnipos-order-service/config"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/fekuna/omnipos-order-service/internal/sequence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and raise id counters past existing rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			appLogger := newLogger(cfg)
			defer appLogger.Sync()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := sequence.NewSQLAllocator(db).Sync(cmd.Context()); err != nil {
				return fmt.Errorf("sync id sequences: %w", err)
			}

			appLogger.Info("Schema migrated", zap.String("driver", db.DriverName()))
			return nil
		},
	}
}
