package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/logger"
)

type ResultHandler struct {
	resultUsecase usecase.ResultUC
	logger        logger.Logger
}

func NewResultHandler(resultUsecase usecase.ResultUC, logger logger.Logger) *ResultHandler {
	return &ResultHandler{resultUsecase: resultUsecase, logger: logger}
}

// createResult
//
//	@Summary	Сохранение результата теста
//	@Tags		results
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		createResultRequest	true	"Результат"
//	@Success	201		{object}	map[string]interface{}
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Router		/api/results [post]
func (h *ResultHandler) createResult(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	var req createResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.resultUsecase.Create(r.Context(), requesterID, req.toUseCase())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Result saved successfully",
		"result":  toResultResponse(result),
	})
}

// userResults
//
//	@Summary	Результаты пользователя, новые первыми
//	@Tags		results
//	@Produce	json
//	@Security	BearerAuth
//	@Param		userId	path	string	true	"ID пользователя"
//	@Success	200		{array}	resultSummaryResponse
//	@Router		/api/results/user/{userId} [get]
func (h *ResultHandler) userResults(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	results, err := h.resultUsecase.ListByUser(r.Context(), requesterID, chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toResultSummaries(results))
}

// analytics
//
//	@Summary	Аналитика по всем тестам пользователя
//	@Tags		results
//	@Produce	json
//	@Security	BearerAuth
//	@Param		userId	path		string	true	"ID пользователя"
//	@Success	200		{object}	domain.Analytics
//	@Router		/api/results/analytics/{userId} [get]
func (h *ResultHandler) analytics(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	analytics, err := h.resultUsecase.Analytics(r.Context(), requesterID, chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, analytics)
}

// resultsByTopic
//
//	@Summary	Результаты текущего пользователя по подстроке темы
//	@Tags		results
//	@Produce	json
//	@Security	BearerAuth
//	@Param		topic		path	string	true	"Тема"
//	@Param		difficulty	query	string	false	"Сложность"
//	@Success	200			{array}	resultSummaryResponse
//	@Router		/api/results/topic/{topic} [get]
func (h *ResultHandler) resultsByTopic(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	results, err := h.resultUsecase.ByTopic(r.Context(), requesterID, chi.URLParam(r, "topic"), r.URL.Query().Get("difficulty"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toResultSummaries(results))
}

// getResult
//
//	@Summary	Результат по ID
//	@Tags		results
//	@Produce	json
//	@Security	BearerAuth
//	@Param		resultId	path		string	true	"ID результата"
//	@Success	200			{object}	resultResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/api/results/{resultId} [get]
func (h *ResultHandler) getResult(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	result, err := h.resultUsecase.Get(r.Context(), requesterID, chi.URLParam(r, "resultId"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toResultResponse(result))
}

// detailedResult
//
//	@Summary	Разбор результата по вопросам
//	@Tags		results
//	@Produce	json
//	@Security	BearerAuth
//	@Param		resultId	path		string	true	"ID результата"
//	@Success	200			{object}	detailedResultResponse
//	@Router		/api/results/{resultId}/detailed [get]
func (h *ResultHandler) detailedResult(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	res, err := h.resultUsecase.Detailed(r.Context(), requesterID, chi.URLParam(r, "resultId"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toDetailedResponse(res))
}
