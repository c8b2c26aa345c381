package usecase

import (
	"context"

	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/internal/domain"
)

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type AvatarInfra interface {
	UploadAvatar(ctx context.Context, req *UploadAvatarReq) (*UploadAvatarRes, error)
	// KeyFromURL возвращает ключ объекта, если url указывает на наш бакет.
	KeyFromURL(url string) (string, bool)
	CleanupObjects(keys []string)
}

type GenAIInfra interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Enabled() bool
}

type OAuthProvider interface {
	AuthCodeURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error)
}

type TokenManager interface {
	Issue(userID, email string) (string, error)
	Verify(raw string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type FaceMatcher interface {
	Match(ctx context.Context, probe []float64) (*biometric.Match, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
