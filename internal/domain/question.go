package domain

import "time"

// Question — вопрос теста с вариантами ответа
type Question struct {
	ID            int64
	Topic         string
	Difficulty    string
	Text          string
	Options       []string
	CorrectAnswer string
	CreatedAt     time.Time
}

func NewQuestion(topic, difficulty, text string, options []string, correct string) *Question {
	return &Question{
		Topic:         topic,
		Difficulty:    difficulty,
		Text:          text,
		Options:       options,
		CorrectAnswer: correct,
	}
}

// Explanation — пояснение к вопросу с индексом QuestionIndex.
type Explanation struct {
	QuestionIndex int    `json:"questionIndex"`
	Explanation   string `json:"explanation"`
}
