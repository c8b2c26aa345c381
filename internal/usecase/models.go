package usecase

import (
	"time"

	"github.com/modlrn/go-backend/internal/domain"
)

// AUTH

// RegisterReq — запрос на регистрацию по email и паролю.
type RegisterReq struct {
	Email          string
	Password       string
	Username       *string
	Name           *string
	ProfilePicture *string
}

type LoginReq struct {
	Email    string
	Password string
}

// AuthRes — выпущенный токен и пользователь, для которого он выпущен.
type AuthRes struct {
	Token string
	User  *domain.User
}

// USERS

type ChangePasswordReq struct {
	RequesterID     string
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// UploadAvatarReq — изображение, загруженное через multipart/form-data.
type UploadAvatarReq struct {
	RequesterID string
	UserID      string
	Data        []byte
	MimeType    string
	Size        int64
	Name        string // оригинальное имя файла (для логов)
}

// UploadAvatarRes — ключ объекта в MinIO и публичный адрес.
type UploadAvatarRes struct {
	Key string
	URL string
}

// QUESTIONS

type GenerateQuestionsReq struct {
	Topic      string
	Difficulty string
	Count      int
}

type AddQuestionsReq struct {
	Topic      string
	Difficulty string
	Questions  []domain.ResultQuestion
}

type ListQuestionsReq struct {
	Topic      string
	Difficulty string
	Limit      int
}

type ExplainReq struct {
	Topic      string
	Difficulty string
	Questions  []domain.ResultQuestion
}

// ExplainRes — пояснения. Note заполняется, если использованы резервные тексты.
type ExplainRes struct {
	Explanations []domain.Explanation
	Note         string
}

// RESULTS

type CreateResultReq struct {
	UserID         string
	Topic          string
	Difficulty     string
	Score          int
	TotalQuestions int
	Questions      []domain.ResultQuestion
	UserAnswers    []string
	Explanations   []string
	TimeTaken      *int
}

type DetailedResultRes struct {
	Result  *domain.Result
	Reviews []domain.QuestionReview
}

// ASSESSMENT

type AssessmentConfigReq struct {
	UserID     string
	Topic      string
	QnCount    int
	Difficulty string
}

// HEALTH

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	DependencyConnected    = "connected"
	DependencyDisconnected = "disconnected"
)

type HealthStatus struct {
	Status    string
	Database  string
	Cache     string
	Timestamp time.Time
}

// Healthy сообщает, что все зависимости доступны.
func (h *HealthStatus) Healthy() bool {
	return h.Status == StatusOK
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	ResultCreated OutboxEventType = "result.created"
	UserDeleted   OutboxEventType = "user.deleted"
)

// OutboxEvent — событие, ожидающее публикации в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID string // ключ партиционирования: ID пользователя
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// WriteRawMessageReq — готовое сообщение для Kafka.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewAuthRes(token string, user *domain.User) *AuthRes {
	return &AuthRes{Token: token, User: user}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, aggregateID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{Key: key, Payload: payload}
}
