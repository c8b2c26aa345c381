package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
)

// AssessmentUseCase хранит параметры следующего теста пользователя.
type AssessmentUseCase struct {
	repo   AssessmentRepository
	logger logger.Logger
	now    func() time.Time
}

func NewAssessmentUC(repo AssessmentRepository, logger logger.Logger) *AssessmentUseCase {
	return &AssessmentUseCase{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// SetConfig проверяет и сохраняет конфигурацию. Сложность приводится к нижнему регистру.
func (a *AssessmentUseCase) SetConfig(ctx context.Context, req *AssessmentConfigReq) (*domain.AssessmentConfig, error) {
	const op = "AssessmentUseCase.SetConfig"

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, e.Wrap(op, e.ErrTopicRequired)
	}

	if req.QnCount < domain.MinQuestionCount || req.QnCount > domain.MaxQuestionCount {
		return nil, e.Wrap(op, e.ErrInvalidQuestionCount)
	}

	difficulty, ok := domain.NormalizeDifficulty(req.Difficulty)
	if !ok {
		return nil, e.Wrap(op, e.ErrInvalidDifficulty)
	}

	config := domain.NewAssessmentConfig(req.UserID, topic, req.QnCount, difficulty)
	config.CreatedAt = a.now().UTC()

	if err := a.repo.SaveConfig(ctx, config); err != nil {
		return nil, e.Wrap(op, err)
	}

	return config, nil
}

func (a *AssessmentUseCase) GetConfig(ctx context.Context, userID string) (*domain.AssessmentConfig, error) {
	const op = "AssessmentUseCase.GetConfig"

	config, err := a.repo.GetConfig(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return config, nil
}
