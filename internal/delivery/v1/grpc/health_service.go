package grpc

import (
	"context"

	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName — имя сервиса для точечной проверки; пустое имя означает весь сервер.
const ServiceName = "modlrn.API"

// HealthService отдает состояние тех же зависимостей, что и /api/health.
type HealthService struct {
	healthpb.UnimplementedHealthServer
	healthUC usecase.HealthUC
	logger   logger.Logger
}

func NewHealthService(healthUC usecase.HealthUC, logger logger.Logger) *HealthService {
	return &HealthService{healthUC: healthUC, logger: logger}
}

func (h *HealthService) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	const op = "grpc.HealthCheck"

	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, GRPCErrorResponse(e.Wrap(op, errUnknownService))
	}

	st := h.healthUC.Check(ctx)
	if !st.Healthy() {
		h.logger.Warnf("%s: database=%s cache=%s", op, st.Database, st.Cache)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
