package http

import (
	"net/http"

	"github.com/modlrn/go-backend/internal/usecase"
)

type HealthHandler struct {
	healthUsecase usecase.HealthUC
}

func NewHealthHandler(healthUsecase usecase.HealthUC) *HealthHandler {
	return &HealthHandler{healthUsecase: healthUsecase}
}

// root
//
//	@Summary	Проверка, что API запущен
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/ [get]
func (h *HealthHandler) root(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{"message": "modLRN API is running"})
}

// health
//
//	@Summary	Состояние сервиса и зависимостей
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Failure	503	{object}	healthResponse
//	@Router		/api/health [get]
func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	status := h.healthUsecase.Check(r.Context())

	code := http.StatusOK
	message := "modLRN API is healthy"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		message = "some dependencies are unavailable"
	}

	WriteSuccess(w, code, healthResponse{
		Status:    status.Status,
		Message:   message,
		Database:  status.Database,
		Cache:     status.Cache,
		Timestamp: status.Timestamp,
	})
}
