package usecase

import (
	"context"

	"github.com/modlrn/go-backend/internal/domain"
)

type AuthUC interface {
	Register(ctx context.Context, req *RegisterReq) (*AuthRes, error)
	Login(ctx context.Context, req *LoginReq) (*AuthRes, error)
	FaceLogin(ctx context.Context, descriptor []float64) (*AuthRes, error)
	FaceStatus(ctx context.Context, userID string) (bool, error)
	RegisterFace(ctx context.Context, userID string, descriptor []float64) error
	RemoveFace(ctx context.Context, userID string) error
	GoogleAuthURL(state string) (string, error)
	GoogleCallback(ctx context.Context, code string) (*AuthRes, error)
	Status(ctx context.Context, userID string) (*domain.User, error)
	VerifyToken(raw string) (string, error)
}

type UserUC interface {
	Get(ctx context.Context, requesterID, userID string) (*domain.User, error)
	Update(ctx context.Context, requesterID, userID string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, requesterID, userID string) error
	Stats(ctx context.Context, requesterID, userID string) (*domain.UserStats, error)
	ChangePassword(ctx context.Context, req *ChangePasswordReq) error
	SaveSettings(ctx context.Context, requesterID, userID string, settings map[string]any) error
	GetSettings(ctx context.Context, requesterID, userID string) (map[string]any, error)
	UploadAvatar(ctx context.Context, req *UploadAvatarReq) (*domain.User, error)
}

type QuestionUC interface {
	Generate(ctx context.Context, req *GenerateQuestionsReq) ([]domain.Question, error)
	Add(ctx context.Context, req *AddQuestionsReq) (int, error)
	ListByTopic(ctx context.Context, req *ListQuestionsReq) ([]domain.Question, error)
	Explain(ctx context.Context, req *ExplainReq) (*ExplainRes, error)
}

type ResultUC interface {
	Create(ctx context.Context, requesterID string, req *CreateResultReq) (*domain.Result, error)
	ListByUser(ctx context.Context, requesterID, userID string) ([]domain.Result, error)
	Get(ctx context.Context, requesterID, resultID string) (*domain.Result, error)
	Detailed(ctx context.Context, requesterID, resultID string) (*DetailedResultRes, error)
	Analytics(ctx context.Context, requesterID, userID string) (*domain.Analytics, error)
	ByTopic(ctx context.Context, requesterID, topic, difficulty string) ([]domain.Result, error)
}

type AssessmentUC interface {
	SetConfig(ctx context.Context, req *AssessmentConfigReq) (*domain.AssessmentConfig, error)
	GetConfig(ctx context.Context, userID string) (*domain.AssessmentConfig, error)
}

type HealthUC interface {
	Check(ctx context.Context) *HealthStatus
}
