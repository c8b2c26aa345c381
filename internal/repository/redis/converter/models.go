package converter

import "time"

type TopicStatsRedisModel struct {
	Count          int    `json:"count"`
	TotalScore     int    `json:"total_score"`
	TotalQuestions int    `json:"total_questions"`
	AverageScore   string `json:"average_score"`
}

type RecentResultRedisModel struct {
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	Date           time.Time `json:"date"`
}

// AnalyticsRedisModel — закэшированная аналитика; UserID сверяется с ключом при чтении.
type AnalyticsRedisModel struct {
	UserID           string                          `json:"user_id"`
	TotalAssessments int                             `json:"total_assessments"`
	AverageScore     string                          `json:"average_score"`
	TotalQuestions   int                             `json:"total_questions"`
	Topics           []string                        `json:"topics"`
	RecentResults    []RecentResultRedisModel        `json:"recent_results"`
	TopicStats       map[string]TopicStatsRedisModel `json:"topic_stats"`
}

type AssessmentConfigRedisModel struct {
	UserID     string    `json:"user_id"`
	Topic      string    `json:"topic"`
	QnCount    int       `json:"qn_count"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}
