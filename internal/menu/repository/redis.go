package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/menu"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const RecipeKeyPrefix = "menu:recipe:"

// CachedRecipeIndex is a cache-aside RecipeIndex. Recipes are read-only to the
// order flow, so a stale entry lives at most ttl. Redis failures fall through
// to the wrapped index.
type CachedRecipeIndex struct {
	next   menu.RecipeIndex
	cache  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewCachedRecipeIndex(next menu.RecipeIndex, c *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *CachedRecipeIndex {
	return &CachedRecipeIndex{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: log,
	}
}

func RecipeKey(menuItemID int64) string {
	return fmt.Sprintf("%s%d", RecipeKeyPrefix, menuItemID)
}

func (c *CachedRecipeIndex) Recipe(ctx context.Context, menuItemID int64) (*model.Recipe, error) {
	key := RecipeKey(menuItemID)

	val, err := c.cache.Client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var recipe model.Recipe
		if err := json.Unmarshal([]byte(val), &recipe); err == nil {
			return &recipe, nil
		}
		c.logger.Warn("discarding malformed cached recipe", zap.String("key", key))
	case err != redis.Nil:
		c.logger.Warn("recipe cache read failed", zap.String("key", key), zap.Error(err))
	}

	recipe, err := c.next.Recipe(ctx, menuItemID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(recipe); err == nil {
		if err := c.cache.Client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("recipe cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return recipe, nil
}

// Invalidate drops the cached recipe of one menu item.
func (c *CachedRecipeIndex) Invalidate(ctx context.Context, menuItemID int64) error {
	return c.cache.Client.Del(ctx, RecipeKey(menuItemID)).Err()
}
