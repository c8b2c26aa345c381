package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result описывает пройденный пользователем тест
type Result struct {
	ID             string // uuid
	UserID         string
	Topic          string
	Difficulty     string
	Score          int
	TotalQuestions int
	Correct        int
	Incorrect      int
	Percentage     decimal.Decimal // округляется до 2 знаков
	Questions      []ResultQuestion
	UserAnswers    []string
	Explanations   []string
	TimeTaken      *int // секунды, если клиент их передал
	CreatedAt      time.Time
}

// ResultQuestion — вопрос в том виде, в котором он был показан пользователю.
type ResultQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

func NewResult(userID, topic, difficulty string, score int, questions []ResultQuestion, answers, explanations []string) *Result {
	total := len(questions)
	return &Result{
		UserID:         userID,
		Topic:          topic,
		Difficulty:     difficulty,
		Score:          score,
		TotalQuestions: total,
		Correct:        score,
		Incorrect:      total - score,
		Percentage:     Percentage(score, total),
		Questions:      questions,
		UserAnswers:    answers,
		Explanations:   explanations,
	}
}

// Percentage возвращает score/total*100, округленное до 2 знаков. Для total == 0 возвращает 0.
func Percentage(score, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(int64(score)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2)
}

// QuestionReview — разбор одного вопроса пройденного теста.
type QuestionReview struct {
	Question      string
	Options       []string
	CorrectAnswer string
	UserAnswer    string
	IsCorrect     bool
	Explanation   string
}

// Review строит разбор по индексам вопросов. Отсутствующие ответы и пояснения становятся пустыми строками.
func (r *Result) Review() []QuestionReview {
	reviews := make([]QuestionReview, 0, len(r.Questions))
	for i, q := range r.Questions {
		var answer, explanation string
		if i < len(r.UserAnswers) {
			answer = r.UserAnswers[i]
		}
		if i < len(r.Explanations) {
			explanation = r.Explanations[i]
		}

		reviews = append(reviews, QuestionReview{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			UserAnswer:    answer,
			IsCorrect:     answer != "" && answer == q.CorrectAnswer,
			Explanation:   explanation,
		})
	}

	return reviews
}
