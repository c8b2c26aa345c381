package usecase

import (
	"context"
	"time"

	"github.com/modlrn/go-backend/pkg/logger"
)

// HealthUseCase проверяет доступность базы и кэша.
type HealthUseCase struct {
	db     Pinger
	cache  Pinger
	logger logger.Logger
	now    func() time.Time
}

func NewHealthUC(db, cache Pinger, logger logger.Logger) *HealthUseCase {
	return &HealthUseCase{
		db:     db,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

func (h *HealthUseCase) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    StatusOK,
		Database:  h.ping(ctx, "database", h.db),
		Cache:     h.ping(ctx, "cache", h.cache),
		Timestamp: h.now().UTC(),
	}

	if status.Database != DependencyConnected || status.Cache != DependencyConnected {
		status.Status = StatusDegraded
	}

	return status
}

func (h *HealthUseCase) ping(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return DependencyDisconnected
	}

	if err := p.Ping(ctx); err != nil {
		h.logger.Warnf("health check: %s is unavailable: %v", name, err)
		return DependencyDisconnected
	}

	return DependencyConnected
}
