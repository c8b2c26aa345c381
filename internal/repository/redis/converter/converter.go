package converter

import (
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type AnalyticsConverter interface {
	ToRedisModel(userID string, entity *domain.Analytics) *AnalyticsRedisModel
	ToEntity(model *AnalyticsRedisModel) (*domain.Analytics, error)
}

type AssessmentConfigConverter interface {
	ToRedisModel(entity *domain.AssessmentConfig) *AssessmentConfigRedisModel
	ToEntity(model *AssessmentConfigRedisModel) *domain.AssessmentConfig
}

type AnalyticsConverterImpl struct{}

func (AnalyticsConverterImpl) ToRedisModel(userID string, entity *domain.Analytics) *AnalyticsRedisModel {
	if entity == nil {
		return nil
	}

	model := &AnalyticsRedisModel{
		UserID:           userID,
		TotalAssessments: entity.TotalAssessments,
		AverageScore:     entity.AverageScore.String(),
		TotalQuestions:   entity.TotalQuestions,
		Topics:           entity.Topics,
		RecentResults:    make([]RecentResultRedisModel, 0, len(entity.RecentResults)),
		TopicStats:       make(map[string]TopicStatsRedisModel, len(entity.TopicStats)),
	}
	for _, r := range entity.RecentResults {
		model.RecentResults = append(model.RecentResults, RecentResultRedisModel(r))
	}
	for topic, s := range entity.TopicStats {
		model.TopicStats[topic] = TopicStatsRedisModel{
			Count:          s.Count,
			TotalScore:     s.TotalScore,
			TotalQuestions: s.TotalQuestions,
			AverageScore:   s.AverageScore.String(),
		}
	}

	return model
}

func (AnalyticsConverterImpl) ToEntity(model *AnalyticsRedisModel) (*domain.Analytics, error) {
	if model == nil {
		return nil, nil
	}

	avg, err := decimal.NewFromString(model.AverageScore)
	if err != nil {
		return nil, err
	}

	entity := &domain.Analytics{
		TotalAssessments: model.TotalAssessments,
		AverageScore:     avg,
		TotalQuestions:   model.TotalQuestions,
		Topics:           model.Topics,
		RecentResults:    make([]domain.RecentResult, 0, len(model.RecentResults)),
		TopicStats:       make(map[string]domain.TopicStats, len(model.TopicStats)),
	}
	if entity.Topics == nil {
		entity.Topics = []string{}
	}
	for _, r := range model.RecentResults {
		entity.RecentResults = append(entity.RecentResults, domain.RecentResult(r))
	}
	for topic, s := range model.TopicStats {
		topicAvg, err := decimal.NewFromString(s.AverageScore)
		if err != nil {
			return nil, err
		}
		entity.TopicStats[topic] = domain.TopicStats{
			Count:          s.Count,
			TotalScore:     s.TotalScore,
			TotalQuestions: s.TotalQuestions,
			AverageScore:   topicAvg,
		}
	}

	return entity, nil
}

type AssessmentConfigConverterImpl struct{}

func (AssessmentConfigConverterImpl) ToRedisModel(entity *domain.AssessmentConfig) *AssessmentConfigRedisModel {
	if entity == nil {
		return nil
	}
	return &AssessmentConfigRedisModel{
		UserID:     entity.UserID,
		Topic:      entity.Topic,
		QnCount:    entity.QnCount,
		Difficulty: entity.Difficulty,
		CreatedAt:  entity.CreatedAt,
	}
}

func (AssessmentConfigConverterImpl) ToEntity(model *AssessmentConfigRedisModel) *domain.AssessmentConfig {
	if model == nil {
		return nil
	}
	return &domain.AssessmentConfig{
		UserID:     model.UserID,
		Topic:      model.Topic,
		QnCount:    model.QnCount,
		Difficulty: model.Difficulty,
		CreatedAt:  model.CreatedAt,
	}
}
