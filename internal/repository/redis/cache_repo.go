package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jimlawless/whereami"
	"github.com/modlrn/go-backend/internal/cfg"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/repository/redis/converter"
	"github.com/modlrn/go-backend/pkg/clients"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует аналитику пользователя.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.AnalyticsConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.AnalyticsConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetAnalytics возвращает закэшированную аналитику или e.ErrCacheMiss.
// Поврежденная запись удаляется и считается промахом.
func (c *CacheRepo) GetAnalytics(ctx context.Context, userID string) (*domain.Analytics, error) {
	key := analyticsKey(userID)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, e.ErrCacheMiss
		}
		c.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.AnalyticsRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(key)
		return nil, e.ErrCacheMiss
	}

	if model.UserID != userID {
		c.logger.Warnf("Cache user mismatch: key_user: %s, model_user: %s", userID, model.UserID)
		c.drop(key)
		return nil, e.ErrCacheMiss
	}

	analytics, err := c.conv.ToEntity(&model)
	if err != nil {
		c.logger.Warnf("Cached analytics conversion failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(key)
		return nil, e.ErrCacheMiss
	}

	return analytics, nil
}

func (c *CacheRepo) SetAnalytics(ctx context.Context, userID string, analytics *domain.Analytics) error {
	data, err := json.Marshal(c.conv.ToRedisModel(userID, analytics))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, analyticsKey(userID), data, c.cfg.AnalyticsTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) DeleteAnalytics(ctx context.Context, userID string) error {
	if err := c.client.Client.Del(ctx, analyticsKey(userID)).Err(); err != nil {
		c.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) drop(key string) {
	if err := c.client.Client.Del(context.Background(), key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// analyticsKey возвращает Redis-ключ аналитики пользователя
func analyticsKey(userID string) string {
	return fmt.Sprintf("analytics:%s", userID)
}
