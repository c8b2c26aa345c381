package usecase

import (
	"context"
	"strings"

	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/infrastructure"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
	"github.com/google/uuid"
)

// UserUseCase управляет профилем пользователя. Все операции доступны только владельцу.
type UserUseCase struct {
	userRepo       UserRepository
	resultRepo     ResultRepository
	enrollmentRepo EnrollmentRepository
	cacheRepo      AnalyticsCacheRepository
	avatars        AvatarInfra
	hasher         PasswordHasher
	txManager      TxManager
	maxAvatarSize  int64
	logger         logger.Logger
}

func NewUserUC(
	userRepo UserRepository,
	resultRepo ResultRepository,
	enrollmentRepo EnrollmentRepository,
	cacheRepo AnalyticsCacheRepository,
	avatars AvatarInfra,
	hasher PasswordHasher,
	txManager TxManager,
	maxAvatarSize int64,
	logger logger.Logger,
) *UserUseCase {
	return &UserUseCase{
		userRepo:       userRepo,
		resultRepo:     resultRepo,
		enrollmentRepo: enrollmentRepo,
		cacheRepo:      cacheRepo,
		avatars:        avatars,
		hasher:         hasher,
		txManager:      txManager,
		maxAvatarSize:  maxAvatarSize,
		logger:         logger,
	}
}

func (u *UserUseCase) Get(ctx context.Context, requesterID, userID string) (*domain.User, error) {
	const op = "UserUseCase.Get"

	if err := checkOwner(requesterID, userID); err != nil {
		return nil, e.Wrap(op, err)
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return user, nil
}

// Update меняет только username, name и profile_picture.
func (u *UserUseCase) Update(ctx context.Context, requesterID, userID string, patch domain.UserPatch) (*domain.User, error) {
	const op = "UserUseCase.Update"

	if err := checkOwner(requesterID, userID); err != nil {
		return nil, e.Wrap(op, err)
	}

	if patch.Empty() {
		return nil, e.Wrap(op, e.ErrNoValidFields)
	}

	user, err := u.userRepo.Update(ctx, userID, patch)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return user, nil
}

// Delete удаляет пользователя вместе с результатами и дескриптором лица.
func (u *UserUseCase) Delete(ctx context.Context, requesterID, userID string) error {
	const op = "UserUseCase.Delete"

	if err := checkOwner(requesterID, userID); err != nil {
		return e.Wrap(op, err)
	}

	var avatarURL *string
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		user, err := u.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		avatarURL = user.ProfilePicture

		// результаты удаляются каскадом по внешнему ключу
		return u.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	// у Qdrant-хранилища нет каскада, поэтому дескриптор удаляется явно
	if err := u.enrollmentRepo.Delete(ctx, userID); err != nil {
		u.logger.Warnf("Failed to delete face enrollment for removed user %s: %v", userID, e.Wrap(op, err))
	}

	if err := u.cacheRepo.DeleteAnalytics(ctx, userID); err != nil {
		u.logger.Warnf("Failed to drop analytics cache: %v", e.Wrap(op, err))
	}

	if avatarURL != nil {
		if key, ok := u.avatars.KeyFromURL(*avatarURL); ok {
			u.avatars.CleanupObjects([]string{key})
		}
	}

	u.logger.Infof("user deleted, user_id: %s", userID)
	return nil
}

func (u *UserUseCase) Stats(ctx context.Context, requesterID, userID string) (*domain.UserStats, error) {
	const op = "UserUseCase.Stats"

	if err := checkOwner(requesterID, userID); err != nil {
		return nil, e.Wrap(op, err)
	}

	results, err := u.resultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return domain.BuildUserStats(results), nil
}

// ChangePassword меняет пароль после проверки текущего.
func (u *UserUseCase) ChangePassword(ctx context.Context, req *ChangePasswordReq) error {
	const op = "UserUseCase.ChangePassword"

	if err := checkOwner(req.RequesterID, req.UserID); err != nil {
		return e.Wrap(op, err)
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return e.Wrap(op, e.ErrMissingFields)
	}

	if len(req.NewPassword) < minPasswordLength {
		return e.Wrap(op, e.ErrPasswordTooShort)
	}

	user, err := u.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return e.Wrap(op, err)
	}

	if !user.HasPassword() {
		return e.Wrap(op, e.ErrIncorrectPassword)
	}

	ok, err := u.hasher.Compare(*user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return e.Wrap(op, err)
	}
	if !ok {
		return e.Wrap(op, e.ErrIncorrectPassword)
	}

	hash, err := u.hasher.Hash(req.NewPassword)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := u.userRepo.UpdatePassword(ctx, req.UserID, hash); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (u *UserUseCase) SaveSettings(ctx context.Context, requesterID, userID string, settings map[string]any) error {
	const op = "UserUseCase.SaveSettings"

	if err := checkOwner(requesterID, userID); err != nil {
		return e.Wrap(op, err)
	}

	if settings == nil {
		return e.Wrap(op, e.ErrMissingFields)
	}

	if err := u.userRepo.SaveSettings(ctx, userID, settings); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (u *UserUseCase) GetSettings(ctx context.Context, requesterID, userID string) (map[string]any, error) {
	const op = "UserUseCase.GetSettings"

	if err := checkOwner(requesterID, userID); err != nil {
		return nil, e.Wrap(op, err)
	}

	settings, err := u.userRepo.GetSettings(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return settings, nil
}

// UploadAvatar сохраняет изображение в MinIO и записывает его адрес в profile_picture.
// Если запись в БД не удалась, загруженный объект удаляется в фоне; старый аватар удаляется после успеха.
func (u *UserUseCase) UploadAvatar(ctx context.Context, req *UploadAvatarReq) (*domain.User, error) {
	const op = "UserUseCase.UploadAvatar"

	if err := checkOwner(req.RequesterID, req.UserID); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.validateAvatar(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	current, err := u.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	uploaded, err := u.avatars.UploadAvatar(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	updated, err := u.userRepo.Update(ctx, req.UserID, domain.UserPatch{ProfilePicture: &uploaded.URL})
	if err != nil {
		u.logger.Warnf("Cleaning up orphaned avatar after update failure. user_id: %s, error: %v", req.UserID, e.Wrap(op, err))
		u.avatars.CleanupObjects([]string{uploaded.Key})
		return nil, e.Wrap(op, err)
	}

	if current.ProfilePicture != nil {
		if key, ok := u.avatars.KeyFromURL(*current.ProfilePicture); ok && key != uploaded.Key {
			u.avatars.CleanupObjects([]string{key})
		}
	}

	return updated, nil
}

func (u *UserUseCase) validateAvatar(req *UploadAvatarReq) error {
	if len(req.Data) == 0 {
		return e.ErrNoImages
	}

	if req.Size > u.maxAvatarSize || int64(len(req.Data)) > u.maxAvatarSize {
		return e.ErrFileTooLarge
	}

	if _, err := infrastructure.GetExtensionFromMIME(req.MimeType); err != nil {
		return err
	}

	return nil
}

// checkOwner разрешает доступ только к собственным данным. Чужой ID получает 403 раньше любой другой проверки.
func checkOwner(requesterID, userID string) error {
	if requesterID == "" || !strings.EqualFold(requesterID, userID) {
		return e.ErrAccessDenied
	}

	return validateID(userID)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return e.ErrInvalidID
	}

	return nil
}
