package domain

import (
	"strings"
	"time"
)

const (
	MinQuestionCount = 1
	MaxQuestionCount = 50
)

var difficulties = map[string]struct{}{
	"very easy": {},
	"easy":      {},
	"medium":    {},
	"hard":      {},
	"very hard": {},
}

// NormalizeDifficulty приводит сложность к нижнему регистру и проверяет допустимость.
func NormalizeDifficulty(d string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(d))
	_, ok := difficulties[n]
	return n, ok
}

// AssessmentConfig — параметры очередного теста пользователя
type AssessmentConfig struct {
	UserID     string    `json:"userId"`
	Topic      string    `json:"topic"`
	QnCount    int       `json:"qnCount"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewAssessmentConfig(userID, topic string, qnCount int, difficulty string) *AssessmentConfig {
	return &AssessmentConfig{
		UserID:     userID,
		Topic:      topic,
		QnCount:    qnCount,
		Difficulty: difficulty,
	}
}
