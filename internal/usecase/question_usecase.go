package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
)

const (
	defaultQuestionLimit = 10
	fallbackNote         = "AI explanations unavailable - using fallback explanations"
)

// QuestionUseCase генерирует вопросы через генеративную модель и хранит банк вопросов.
type QuestionUseCase struct {
	questionRepo QuestionRepository
	genAI        GenAIInfra
	logger       logger.Logger
}

func NewQuestionUC(questionRepo QuestionRepository, genAI GenAIInfra, logger logger.Logger) *QuestionUseCase {
	return &QuestionUseCase{
		questionRepo: questionRepo,
		genAI:        genAI,
		logger:       logger,
	}
}

// Generate просит модель сгенерировать вопросы, сохраняет новые в банк и возвращает весь список.
func (q *QuestionUseCase) Generate(ctx context.Context, req *GenerateQuestionsReq) ([]domain.Question, error) {
	const op = "QuestionUseCase.Generate"

	topic := strings.TrimSpace(req.Topic)
	difficulty := strings.TrimSpace(req.Difficulty)
	if topic == "" {
		return nil, e.Wrap(op, e.ErrTopicRequired)
	}
	if difficulty == "" {
		return nil, e.Wrap(op, e.ErrInvalidDifficulty)
	}
	if req.Count < domain.MinQuestionCount || req.Count > domain.MaxQuestionCount {
		return nil, e.Wrap(op, e.ErrInvalidQuestionCount)
	}

	if !q.genAI.Enabled() {
		return nil, e.Wrap(op, e.ErrGenAIUnavailable)
	}

	text, err := q.genAI.Generate(ctx, questionsPrompt(topic, difficulty, req.Count))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var generated []domain.ResultQuestion
	if err := json.Unmarshal([]byte(stripJSONFence(text)), &generated); err != nil {
		q.logger.Warnf("Unparsable questions from generative model: %v", err)
		return nil, e.Wrap(op, e.ErrGenAIBadResponse)
	}

	questions := make([]domain.Question, 0, len(generated))
	for _, g := range generated {
		if strings.TrimSpace(g.Question) == "" || len(g.Options) == 0 {
			continue
		}
		questions = append(questions, *domain.NewQuestion(topic, difficulty, g.Question, g.Options, g.CorrectAnswer))
	}
	if len(questions) == 0 {
		return nil, e.Wrap(op, e.ErrGenAIBadResponse)
	}

	// Ошибка сохранения в банк не мешает вернуть вопросы пользователю
	if inserted, err := q.questionRepo.AddBatch(ctx, questions); err != nil {
		q.logger.Warnf("Failed to store generated questions: %v", e.Wrap(op, err))
	} else {
		q.logger.Debugf("stored %d of %d generated questions, topic: %s", inserted, len(questions), topic)
	}

	return questions, nil
}

// Add добавляет вопросы вручную. Дубликаты (question, topic) пропускаются.
func (q *QuestionUseCase) Add(ctx context.Context, req *AddQuestionsReq) (int, error) {
	const op = "QuestionUseCase.Add"

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return 0, e.Wrap(op, e.ErrTopicRequired)
	}
	if len(req.Questions) == 0 {
		return 0, e.Wrap(op, e.ErrNoQuestions)
	}

	questions := make([]domain.Question, 0, len(req.Questions))
	for _, rq := range req.Questions {
		if strings.TrimSpace(rq.Question) == "" || rq.CorrectAnswer == "" {
			return 0, e.Wrap(op, e.ErrMissingFields)
		}
		questions = append(questions, *domain.NewQuestion(topic, strings.TrimSpace(req.Difficulty), rq.Question, rq.Options, rq.CorrectAnswer))
	}

	inserted, err := q.questionRepo.AddBatch(ctx, questions)
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	return inserted, nil
}

// ListByTopic ищет вопросы по подстроке темы без учета регистра. limit == 0 означает значение по умолчанию.
func (q *QuestionUseCase) ListByTopic(ctx context.Context, req *ListQuestionsReq) ([]domain.Question, error) {
	const op = "QuestionUseCase.ListByTopic"

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, e.Wrap(op, e.ErrTopicRequired)
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultQuestionLimit
	}
	if limit < domain.MinQuestionCount || limit > domain.MaxQuestionCount {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}

	questions, err := q.questionRepo.ListByTopic(ctx, topic, strings.TrimSpace(req.Difficulty), limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return questions, nil
}

// Explain возвращает пояснения к ответам. Любой сбой модели заменяется резервными текстами.
func (q *QuestionUseCase) Explain(ctx context.Context, req *ExplainReq) (*ExplainRes, error) {
	const op = "QuestionUseCase.Explain"

	if len(req.Questions) == 0 {
		return nil, e.Wrap(op, e.ErrNoQuestions)
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = "General"
	}
	difficulty := strings.TrimSpace(req.Difficulty)
	if difficulty == "" {
		difficulty = "medium"
	}

	if !q.genAI.Enabled() {
		return fallbackExplanations(len(req.Questions), "currently unavailable"), nil
	}

	text, err := q.genAI.Generate(ctx, explanationsPrompt(topic, difficulty, req.Questions))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, e.Wrap(op, err)
		}
		q.logger.Warnf("Explanation generation failed, using fallback: %v", e.Wrap(op, err))
		return fallbackExplanations(len(req.Questions), "temporarily unavailable"), nil
	}

	var parsed []struct {
		QuestionIndex *int   `json:"questionIndex"`
		Explanation   string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(stripJSONFence(text)), &parsed); err != nil {
		q.logger.Warnf("Unparsable explanations, using fallback: %v", err)
		return fallbackExplanations(len(req.Questions), "returned an invalid response"), nil
	}

	explanations := make([]domain.Explanation, 0, len(parsed))
	for i, p := range parsed {
		if p.Explanation == "" {
			continue
		}
		idx := i
		if p.QuestionIndex != nil {
			idx = *p.QuestionIndex
		}
		explanations = append(explanations, domain.Explanation{QuestionIndex: idx, Explanation: p.Explanation})
	}

	return &ExplainRes{Explanations: explanations}, nil
}

func fallbackExplanations(n int, reason string) *ExplainRes {
	explanations := make([]domain.Explanation, n)
	for i := range explanations {
		explanations[i] = domain.Explanation{
			QuestionIndex: i,
			Explanation: fmt.Sprintf("This is the correct answer for question %d. The AI explanation service is %s. "+
				"Please refer to your study materials for detailed explanations.", i+1, reason),
		}
	}

	return &ExplainRes{Explanations: explanations, Note: fallbackNote}
}

// stripJSONFence убирает обрамление ```json ... ``` вокруг ответа модели.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func questionsPrompt(topic, difficulty string, count int) string {
	return fmt.Sprintf(`Generate %d multiple-choice questions on %s with %s difficulty.
Provide the questions in JSON format with the following structure:
[
    {
        "question": "Your question here?",
        "options": ["Option A", "Option B", "Option C", "Option D"],
        "correctAnswer": "Correct option"
    }
]

Make sure:
1. Questions are relevant to the topic
2. Difficulty matches the requested level
3. All options are plausible
4. Only one correct answer per question
5. Return valid JSON format`, count, topic, difficulty)
}

func explanationsPrompt(topic, difficulty string, questions []domain.ResultQuestion) string {
	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "\nQuestion %d: %s\nOptions: %s\nCorrect Answer: %s\n",
			i+1, q.Question, strings.Join(q.Options, ", "), q.CorrectAnswer)
	}

	return fmt.Sprintf(`For the following %s questions at %s difficulty level, provide clear and educational explanations for why each correct answer is right.
%s
Please provide explanations in JSON format:
[
    {
        "questionIndex": 0,
        "explanation": "Clear explanation of why this answer is correct"
    }
]

Keep each explanation 2-3 sentences maximum and suitable for the %s level.`, topic, difficulty, b.String(), difficulty)
}
