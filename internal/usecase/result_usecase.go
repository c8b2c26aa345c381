package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const analyticsBuildTimeout = 10 * time.Second

// ResultUseCase сохраняет результаты тестов и считает по ним аналитику.
type ResultUseCase struct {
	resultRepo    ResultRepository
	outboxRepo    OutboxRepository
	cacheRepo     AnalyticsCacheRepository
	txManager     TxManager
	publishEvents bool
	logger        logger.Logger

	// склеивает одновременные пересчеты аналитики одного пользователя
	analyticsGroup singleflight.Group
}

// NewResultUC создает usecase. Если publishEvents == false, события в outbox не пишутся.
func NewResultUC(
	resultRepo ResultRepository,
	outboxRepo OutboxRepository,
	cacheRepo AnalyticsCacheRepository,
	txManager TxManager,
	publishEvents bool,
	logger logger.Logger,
) *ResultUseCase {
	return &ResultUseCase{
		resultRepo:    resultRepo,
		outboxRepo:    outboxRepo,
		cacheRepo:     cacheRepo,
		txManager:     txManager,
		publishEvents: publishEvents,
		logger:        logger,
	}
}

// Create сохраняет результат и, в той же транзакции, событие result.created.
func (r *ResultUseCase) Create(ctx context.Context, requesterID string, req *CreateResultReq) (*domain.Result, error) {
	const op = "ResultUseCase.Create"

	if err := checkOwner(requesterID, req.UserID); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := validateResult(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	result := domain.NewResult(req.UserID, strings.TrimSpace(req.Topic), strings.TrimSpace(req.Difficulty),
		req.Score, req.Questions, req.UserAnswers, req.Explanations)
	result.TotalQuestions = req.TotalQuestions
	result.Incorrect = req.TotalQuestions - req.Score
	result.Percentage = domain.Percentage(req.Score, req.TotalQuestions)
	result.TimeTaken = req.TimeTaken

	var saved *domain.Result
	err := r.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		saved, err = r.resultRepo.Create(ctx, result)
		if err != nil {
			return err
		}

		if !r.publishEvents {
			return nil
		}

		payload, err := resultCreatedPayload(saved)
		if err != nil {
			return err
		}

		_, err = r.outboxRepo.Create(ctx, NewOutboxEvent(uuid.NewString(), ResultCreated, saved.UserID, payload))
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	r.invalidateAnalytics(ctx, saved.UserID)

	r.logger.Infof("result saved, user_id: %s, result_id: %s, score: %d/%d",
		saved.UserID, saved.ID, saved.Score, saved.TotalQuestions)
	return saved, nil
}

// ListByUser возвращает результаты пользователя, новые первыми.
func (r *ResultUseCase) ListByUser(ctx context.Context, requesterID, userID string) ([]domain.Result, error) {
	const op = "ResultUseCase.ListByUser"

	if err := checkOwner(requesterID, userID); err != nil {
		return nil, e.Wrap(op, err)
	}

	results, err := r.resultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return results, nil
}

func (r *ResultUseCase) Get(ctx context.Context, requesterID, resultID string) (*domain.Result, error) {
	const op = "ResultUseCase.Get"

	result, err := r.getOwned(ctx, requesterID, resultID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return result, nil
}

// Detailed возвращает результат с разбором каждого вопроса.
func (r *ResultUseCase) Detailed(ctx context.Context, requesterID, resultID string) (*DetailedResultRes, error) {
	const op = "ResultUseCase.Detailed"

	result, err := r.getOwned(ctx, requesterID, resultID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &DetailedResultRes{
		Result:  result,
		Reviews: result.Review(),
	}, nil
}

// Analytics возвращает сводку, по возможности из кэша.
func (r *ResultUseCase) Analytics(ctx context.Context, requesterID, userID string) (*domain.Analytics, error) {
	const op = "ResultUseCase.Analytics"

	if err := checkOwner(requesterID, userID); err != nil {
		return nil, e.Wrap(op, err)
	}

	cached, err := r.cacheRepo.GetAnalytics(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, e.ErrCacheMiss) {
		r.logger.Warnf("Analytics cache read failed: %v", e.Wrap(op, err))
	}

	// Пересчет общий для всех ожидающих, поэтому не зависит от отмены контекста первого из них.
	// Каждый вызывающий при этом ждет результат не дольше своего ctx.
	ch := r.analyticsGroup.DoChan(userID, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), analyticsBuildTimeout)
		defer cancel()
		return r.buildAnalytics(buildCtx, userID)
	})

	select {
	case <-ctx.Done():
		return nil, e.Wrap(op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, e.Wrap(op, res.Err)
		}
		return res.Val.(*domain.Analytics), nil
	}
}

func (r *ResultUseCase) buildAnalytics(ctx context.Context, userID string) (*domain.Analytics, error) {
	const op = "ResultUseCase.buildAnalytics"

	results, err := r.resultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	analytics := domain.BuildAnalytics(results)

	// Фоновое добавление аналитики в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := r.cacheRepo.SetAnalytics(bgCtx, userID, analytics); err != nil {
			r.logger.Warnf("Failed to cache analytics in background: %v", e.Wrap(op, err))
		}
	}()

	return analytics, nil
}

// ByTopic ищет результаты пользователя по подстроке темы без учета регистра.
func (r *ResultUseCase) ByTopic(ctx context.Context, requesterID, topic, difficulty string) ([]domain.Result, error) {
	const op = "ResultUseCase.ByTopic"

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, e.Wrap(op, e.ErrTopicRequired)
	}

	results, err := r.resultRepo.ListByTopic(ctx, requesterID, topic, strings.TrimSpace(difficulty))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return results, nil
}

// getOwned загружает результат. Отсутствие дает 404, чужой результат дает 403.
func (r *ResultUseCase) getOwned(ctx context.Context, requesterID, resultID string) (*domain.Result, error) {
	if err := validateID(resultID); err != nil {
		return nil, err
	}

	result, err := r.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(result.UserID, requesterID) {
		return nil, e.ErrAccessDenied
	}

	return result, nil
}

func (r *ResultUseCase) invalidateAnalytics(ctx context.Context, userID string) {
	if err := r.cacheRepo.DeleteAnalytics(ctx, userID); err != nil {
		r.logger.Warnf("Failed to drop analytics cache, user_id: %s: %v", userID, err)
	}
}

func validateResult(req *CreateResultReq) error {
	if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.Difficulty) == "" {
		return e.ErrMissingFields
	}

	if len(req.Questions) == 0 {
		return e.ErrNoQuestions
	}

	if req.TotalQuestions <= 0 || req.Score < 0 || req.Score > req.TotalQuestions {
		return e.ErrInvalidScore
	}

	return nil
}

// resultCreatedPayload кодирует событие в protobuf Struct.
func resultCreatedPayload(result *domain.Result) ([]byte, error) {
	percentage, _ := result.Percentage.Float64()

	payload, err := structpb.NewStruct(map[string]any{
		"result_id":       result.ID,
		"user_id":         result.UserID,
		"topic":           result.Topic,
		"difficulty":      result.Difficulty,
		"score":           result.Score,
		"total_questions": result.TotalQuestions,
		"percentage":      percentage,
		"created_at":      result.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	return proto.Marshal(payload)
}
