package http

import (
	"net/http"

	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/logger"
)

type AssessmentHandler struct {
	assessmentUsecase usecase.AssessmentUC
	logger            logger.Logger
}

func NewAssessmentHandler(assessmentUsecase usecase.AssessmentUC, logger logger.Logger) *AssessmentHandler {
	return &AssessmentHandler{assessmentUsecase: assessmentUsecase, logger: logger}
}

// setConfig
//
//	@Summary	Параметры следующего теста
//	@Tags		assessment
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		assessmentRequest	true	"Тема, количество, сложность"
//	@Success	200		{object}	assessmentResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/api/topic [post]
func (h *AssessmentHandler) setConfig(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	var req assessmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	config, err := h.assessmentUsecase.SetConfig(r.Context(), &usecase.AssessmentConfigReq{
		UserID:     userID,
		Topic:      req.Topic,
		QnCount:    req.QnCount,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toAssessmentResponse(config))
}

// getConfig
//
//	@Summary	Сохраненные параметры теста
//	@Tags		assessment
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	assessmentResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/topic [get]
func (h *AssessmentHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	config, err := h.assessmentUsecase.GetConfig(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toAssessmentResponse(config))
}
