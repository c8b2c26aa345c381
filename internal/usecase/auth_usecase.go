package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
)

const minPasswordLength = 6

// AuthUseCase реализует вход по паролю, по лицу и через Google.
type AuthUseCase struct {
	userRepo       UserRepository
	enrollmentRepo EnrollmentRepository
	matcher        FaceMatcher
	tokens         TokenManager
	hasher         PasswordHasher
	oauth          OAuthProvider
	logger         logger.Logger
}

func NewAuthUC(
	userRepo UserRepository,
	enrollmentRepo EnrollmentRepository,
	matcher FaceMatcher,
	tokens TokenManager,
	hasher PasswordHasher,
	oauth OAuthProvider,
	logger logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:       userRepo,
		enrollmentRepo: enrollmentRepo,
		matcher:        matcher,
		tokens:         tokens,
		hasher:         hasher,
		oauth:          oauth,
		logger:         logger,
	}
}

// Register создает пользователя с паролем и сразу выпускает токен.
func (a *AuthUseCase) Register(ctx context.Context, req *RegisterReq) (*AuthRes, error) {
	const op = "AuthUseCase.Register"

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(req.Password) < minPasswordLength {
		return nil, e.Wrap(op, e.ErrPasswordTooShort)
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user, err := a.userRepo.Create(ctx, domain.NewUser(email, req.Username, req.Name, req.ProfilePicture, &hash))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("user registered, user_id: %s", user.ID)
	return a.issue(op, user)
}

// Login проверяет email и пароль. Неизвестный email и неверный пароль неотличимы снаружи.
func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*AuthRes, error) {
	const op = "AuthUseCase.Login"

	email, err := normalizeEmail(req.Email)
	if err != nil || req.Password == "" {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	user, err := a.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if !user.HasPassword() {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	ok, err := a.hasher.Compare(*user.PasswordHash, req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !ok {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	return a.issue(op, user)
}

// FaceLogin сопоставляет дескриптор с зарегистрированными лицами и выпускает токен совпавшему пользователю.
func (a *AuthUseCase) FaceLogin(ctx context.Context, descriptor []float64) (*AuthRes, error) {
	const op = "AuthUseCase.FaceLogin"

	match, err := a.matcher.Match(ctx, descriptor)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user, err := a.userRepo.GetByID(ctx, match.Identity)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			// запись лица пережила удаление пользователя
			a.logger.Warnf("matched identity without user, user_id: %s", match.Identity)
			return nil, e.Wrap(op, &biometric.NoMatchError{BestDistance: match.Distance})
		}
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("face login succeeded, user_id: %s", user.ID)
	return a.issue(op, user)
}

// FaceStatus сообщает, зарегистрировано ли у пользователя корректное лицо.
func (a *AuthUseCase) FaceStatus(ctx context.Context, userID string) (bool, error) {
	const op = "AuthUseCase.FaceStatus"

	descriptor, err := a.enrollmentRepo.Get(ctx, userID)
	if err != nil {
		return false, e.Wrap(op, err)
	}

	return len(descriptor) == biometric.DescriptorSize, nil
}

// RegisterFace полностью заменяет дескриптор лица пользователя.
func (a *AuthUseCase) RegisterFace(ctx context.Context, userID string, descriptor []float64) error {
	const op = "AuthUseCase.RegisterFace"

	if err := biometric.ValidateDescriptor(descriptor); err != nil {
		return e.Wrap(op, err)
	}

	if _, err := a.userRepo.GetByID(ctx, userID); err != nil {
		return e.Wrap(op, err)
	}

	stored := make([]float64, len(descriptor))
	copy(stored, descriptor)

	if err := a.enrollmentRepo.Upsert(ctx, userID, stored); err != nil {
		return e.Wrap(op, err)
	}

	a.logger.Infof("face registered, user_id: %s", userID)
	return nil
}

func (a *AuthUseCase) RemoveFace(ctx context.Context, userID string) error {
	const op = "AuthUseCase.RemoveFace"

	if err := a.enrollmentRepo.Delete(ctx, userID); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (a *AuthUseCase) GoogleAuthURL(state string) (string, error) {
	const op = "AuthUseCase.GoogleAuthURL"

	url, err := a.oauth.AuthCodeURL(state)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return url, nil
}

// GoogleCallback обменивает код на профиль Google и создает или обновляет пользователя по email.
func (a *AuthUseCase) GoogleCallback(ctx context.Context, code string) (*AuthRes, error) {
	const op = "AuthUseCase.GoogleCallback"

	if code == "" {
		return nil, e.Wrap(op, e.ErrMissingOAuthCode)
	}

	profile, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	email, err := normalizeEmail(profile.Email)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	profile.Email = email

	user, err := a.userRepo.UpsertGoogle(ctx, profile)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return a.issue(op, user)
}

func (a *AuthUseCase) Status(ctx context.Context, userID string) (*domain.User, error) {
	const op = "AuthUseCase.Status"

	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return user, nil
}

func (a *AuthUseCase) VerifyToken(raw string) (string, error) {
	return a.tokens.Verify(raw)
}

func (a *AuthUseCase) issue(op string, user *domain.User) (*AuthRes, error) {
	token, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewAuthRes(token, user), nil
}

// normalizeEmail приводит email к нижнему регистру и проверяет формат.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", e.ErrMissingFields
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", e.ErrInvalidEmail
	}

	return email, nil
}
