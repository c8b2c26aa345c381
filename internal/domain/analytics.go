package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RecentResultsLimit — сколько последних результатов попадает в аналитику.
const RecentResultsLimit = 5

// TopicStats — агрегаты по одной теме.
type TopicStats struct {
	Count          int             `json:"count"`
	TotalScore     int             `json:"total_score"`
	TotalQuestions int             `json:"total_questions"`
	AverageScore   decimal.Decimal `json:"average_score"`
}

// DifficultyStats — агрегаты по одному уровню сложности.
type DifficultyStats struct {
	Count        int             `json:"count"`
	TotalScore   int             `json:"total_score"`
	AverageScore decimal.Decimal `json:"average_score"`
}

// RecentResult — краткая запись для блока «последние результаты».
type RecentResult struct {
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	Date           time.Time `json:"date"`
}

// Analytics — сводка по всем тестам пользователя
type Analytics struct {
	TotalAssessments int                   `json:"total_assessments"`
	AverageScore     decimal.Decimal       `json:"average_score"`
	TotalQuestions   int                   `json:"total_questions"`
	Topics           []string              `json:"topics"`
	RecentResults    []RecentResult        `json:"recent_results"`
	TopicStats       map[string]TopicStats `json:"topic_stats"`
}

// UserStats — статистика профиля
type UserStats struct {
	TotalAssessments int                        `json:"total_assessments"`
	TotalQuestions   int                        `json:"total_questions"`
	AverageScore     decimal.Decimal            `json:"average_score"`
	TopicsCovered    int                        `json:"topics_covered"`
	Topics           []string                   `json:"topics"`
	DifficultyStats  map[string]DifficultyStats `json:"difficulty_stats"`
}

// average возвращает sum/count, округленное до 2 знаков.
func average(sum, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(count)), 2)
}

// uniqueTopics возвращает темы в порядке первого появления.
func uniqueTopics(results []Result) []string {
	seen := make(map[string]struct{}, len(results))
	topics := make([]string, 0)
	for _, r := range results {
		if _, ok := seen[r.Topic]; ok {
			continue
		}
		seen[r.Topic] = struct{}{}
		topics = append(topics, r.Topic)
	}
	return topics
}

// BuildAnalytics считает сводку. Средний балл считается по сырым score, как в профиле.
func BuildAnalytics(results []Result) *Analytics {
	a := &Analytics{
		TotalAssessments: len(results),
		AverageScore:     decimal.Zero,
		Topics:           uniqueTopics(results),
		RecentResults:    make([]RecentResult, 0, RecentResultsLimit),
		TopicStats:       make(map[string]TopicStats),
	}

	var totalScore int
	for _, r := range results {
		totalScore += r.Score
		a.TotalQuestions += r.TotalQuestions

		ts := a.TopicStats[r.Topic]
		ts.Count++
		ts.TotalScore += r.Score
		ts.TotalQuestions += r.TotalQuestions
		a.TopicStats[r.Topic] = ts
	}
	a.AverageScore = average(totalScore, len(results))

	for topic, ts := range a.TopicStats {
		ts.AverageScore = average(ts.TotalScore, ts.Count)
		a.TopicStats[topic] = ts
	}

	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	for i := 0; i < len(sorted) && i < RecentResultsLimit; i++ {
		r := sorted[i]
		a.RecentResults = append(a.RecentResults, RecentResult{
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Topic:          r.Topic,
			Difficulty:     r.Difficulty,
			Date:           r.CreatedAt,
		})
	}

	return a
}

// BuildUserStats считает статистику профиля.
func BuildUserStats(results []Result) *UserStats {
	s := &UserStats{
		TotalAssessments: len(results),
		Topics:           uniqueTopics(results),
		DifficultyStats:  make(map[string]DifficultyStats),
	}
	s.TopicsCovered = len(s.Topics)

	var totalScore int
	for _, r := range results {
		totalScore += r.Score
		s.TotalQuestions += r.TotalQuestions

		ds := s.DifficultyStats[r.Difficulty]
		ds.Count++
		ds.TotalScore += r.Score
		s.DifficultyStats[r.Difficulty] = ds
	}
	s.AverageScore = average(totalScore, len(results))

	for d, ds := range s.DifficultyStats {
		ds.AverageScore = average(ds.TotalScore, ds.Count)
		s.DifficultyStats[d] = ds
	}

	return s
}
