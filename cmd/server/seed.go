package main

import (
	"github.com/fekuna/omnipos-order-service/config"
	menuRepoPkg "github.com/fekuna/omnipos-order-service/internal/menu/repository"
	"github.com/fekuna/omnipos-order-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/fekuna/omnipos-order-service/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd(cfg *config.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load ingredients, menu items and recipes from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			appLogger := newLogger(cfg)
			defer appLogger.Sync()

			fixture, err := seed.Load(file)
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := seed.Apply(cmd.Context(), database.NewTxManager(db, cfg.Database.LockTimeout), db, fixture)
			if err != nil {
				return err
			}
			appLogger.Info("Fixture applied",
				zap.String("file", file),
				zap.Int("ingredients", res.Ingredients),
				zap.Int("menu_items", res.MenuItems),
				zap.Int("recipe_lines", res.RecipeLines),
			)

			// Cached recipes are now stale.
			redisClient, err := cache.NewRedisClient(&cache.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				appLogger.Warn("Could not connect to Redis, cached recipes expire by TTL", zap.Error(err))
				return nil
			}
			defer redisClient.Close()

			n, err := redisClient.DeletePrefix(cmd.Context(), menuRepoPkg.RecipeKeyPrefix)
			if err != nil {
				appLogger.Warn("Could not invalidate recipe cache", zap.Error(err))
				return nil
			}
			appLogger.Info("Recipe cache invalidated", zap.Int("keys", n))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "fixture file")
	return cmd
}
