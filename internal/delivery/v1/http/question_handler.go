package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
)

type QuestionHandler struct {
	questionUsecase usecase.QuestionUC
	logger          logger.Logger
}

func NewQuestionHandler(questionUsecase usecase.QuestionUC, logger logger.Logger) *QuestionHandler {
	return &QuestionHandler{questionUsecase: questionUsecase, logger: logger}
}

// generateQuestions
//
//	@Summary	Генерация вопросов генеративной моделью
//	@Tags		questions
//	@Produce	json
//	@Security	BearerAuth
//	@Param		topic		query		string	true	"Тема"
//	@Param		difficulty	query		string	true	"Сложность"
//	@Param		count		query		int		true	"Количество (1..50)"
//	@Success	200			{array}		questionResponse
//	@Failure	502			{object}	ErrorResponse
//	@Failure	503			{object}	ErrorResponse
//	@Router		/db/questions [get]
func (q *QuestionHandler) generateQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	count, err := strconv.Atoi(query.Get("count"))
	if err != nil {
		WriteError(w, e.ErrInvalidQuestionCount)
		return
	}

	questions, err := q.questionUsecase.Generate(r.Context(), &usecase.GenerateQuestionsReq{
		Topic:      query.Get("topic"),
		Difficulty: query.Get("difficulty"),
		Count:      count,
	})
	if err != nil {
		q.logger.Warnf("question generation failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toQuestionResponses(questions))
}

// addQuestions
//
//	@Summary	Ручное добавление вопросов в банк
//	@Tags		questions
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		addQuestionsRequest	true	"Вопросы"
//	@Success	201		{object}	map[string]interface{}
//	@Router		/db/questions [post]
func (q *QuestionHandler) addQuestions(w http.ResponseWriter, r *http.Request) {
	var req addQuestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	inserted, err := q.questionUsecase.Add(r.Context(), &usecase.AddQuestionsReq{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Questions:  toResultQuestions(req.Questions),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]any{
		"success":  true,
		"message":  "Questions added successfully",
		"inserted": inserted,
	})
}

// questionsByTopic
//
//	@Summary	Вопросы из банка по подстроке темы
//	@Tags		questions
//	@Produce	json
//	@Security	BearerAuth
//	@Param		topic		path	string	true	"Тема"
//	@Param		difficulty	query	string	false	"Сложность"
//	@Param		limit		query	int		false	"Лимит (1..50, по умолчанию 10)"
//	@Success	200			{array}	questionResponse
//	@Router		/db/questions/{topic} [get]
func (q *QuestionHandler) questionsByTopic(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil {
			WriteError(w, e.ErrInvalidLimit)
			return
		}
		if limit == 0 {
			WriteError(w, e.ErrInvalidLimit)
			return
		}
	}

	questions, err := q.questionUsecase.ListByTopic(r.Context(), &usecase.ListQuestionsReq{
		Topic:      chi.URLParam(r, "topic"),
		Difficulty: query.Get("difficulty"),
		Limit:      limit,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toQuestionResponses(questions))
}

// explain
//
//	@Summary	Пояснения к правильным ответам
//	@Tags		questions
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		explainRequest	true	"Вопросы"
//	@Success	200		{object}	explanationsResponse
//	@Router		/db/questions/explanations [post]
func (q *QuestionHandler) explain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := q.questionUsecase.Explain(r.Context(), &usecase.ExplainReq{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Questions:  toResultQuestions(req.Questions),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, explanationsResponse{Success: true, Explanations: res.Explanations, Note: res.Note})
}
