package usecase

import (
	"context"

	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpsertGoogle(ctx context.Context, profile *domain.GoogleProfile) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	SaveSettings(ctx context.Context, id string, settings map[string]any) error
	GetSettings(ctx context.Context, id string) (map[string]any, error)
}

// EnrollmentRepository хранит дескрипторы лиц. ListEnrolled отдает записи в стабильном порядке.
type EnrollmentRepository interface {
	biometric.CandidateSource
	Get(ctx context.Context, userID string) ([]float64, error)
	Upsert(ctx context.Context, userID string, descriptor []float64) error
	Delete(ctx context.Context, userID string) error
}

type ResultRepository interface {
	Create(ctx context.Context, result *domain.Result) (*domain.Result, error)
	GetByID(ctx context.Context, id string) (*domain.Result, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Result, error)
	ListByTopic(ctx context.Context, userID, topic, difficulty string) ([]domain.Result, error)
}

type QuestionRepository interface {
	AddBatch(ctx context.Context, questions []domain.Question) (int, error)
	ListByTopic(ctx context.Context, topic, difficulty string, limit int) ([]domain.Question, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// MarkAsPending возвращает событие в очередь после неудачной отправки.
	MarkAsPending(ctx context.Context, id int64) error
}

type AssessmentRepository interface {
	SaveConfig(ctx context.Context, cfg *domain.AssessmentConfig) error
	GetConfig(ctx context.Context, userID string) (*domain.AssessmentConfig, error)
}

type AnalyticsCacheRepository interface {
	GetAnalytics(ctx context.Context, userID string) (*domain.Analytics, error)
	SetAnalytics(ctx context.Context, userID string, analytics *domain.Analytics) error
	DeleteAnalytics(ctx context.Context, userID string) error
}

type ObjectRepository interface {
	Upload(ctx context.Context, object *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

// TxManager выполняет fn в одной транзакции; репозитории берут ее из контекста.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
