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
	r "github.com/redis/go-redis/v9"
)

// AssessmentRepo хранит конфигурацию теста пользователя как сессию с TTL.
type AssessmentRepo struct {
	client *clients.RedisClient
	conv   converter.AssessmentConfigConverter
	cfg    *cfg.RedisCfg
}

func NewAssessmentRepo(client *clients.RedisClient, conv converter.AssessmentConfigConverter,
	cfg *cfg.RedisCfg) *AssessmentRepo {
	return &AssessmentRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
	}
}

// SaveConfig перезаписывает конфигурацию и продлевает TTL.
func (a *AssessmentRepo) SaveConfig(ctx context.Context, config *domain.AssessmentConfig) error {
	data, err := json.Marshal(a.conv.ToRedisModel(config))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := a.client.Client.Set(ctx, assessmentKey(config.UserID), data, a.cfg.SessionTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (a *AssessmentRepo) GetConfig(ctx context.Context, userID string) (*domain.AssessmentConfig, error) {
	data, err := a.client.Client.Get(ctx, assessmentKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAssessmentConfigNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.AssessmentConfigRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}

func assessmentKey(userID string) string {
	return fmt.Sprintf("assessment:config:%s", userID)
}
