package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
)

type UserHandler struct {
	userUsecase   usecase.UserUC
	maxAvatarSize int64
	logger        logger.Logger
}

func NewUserHandler(userUsecase usecase.UserUC, maxAvatarSize int64, logger logger.Logger) *UserHandler {
	return &UserHandler{userUsecase: userUsecase, maxAvatarSize: maxAvatarSize, logger: logger}
}

// getUser
//
//	@Summary	Профиль пользователя
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		userId	path		string	true	"ID пользователя"
//	@Success	200		{object}	map[string]interface{}
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/db/users/{userId} [get]
func (u *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	user, err := u.userUsecase.Get(r.Context(), requesterID, chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"success": true, "user": toUserResponse(user)})
}

// updateUser
//
//	@Summary	Обновление профиля (username, name, profile_picture)
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		userId	path		string				true	"ID пользователя"
//	@Param		body	body		updateUserRequest	true	"Изменяемые поля"
//	@Success	200		{object}	map[string]interface{}
//	@Failure	400		{object}	ErrorResponse
//	@Router		/db/users/{userId} [put]
func (u *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	patch := domain.UserPatch{Username: req.Username, Name: req.Name, ProfilePicture: req.ProfilePicture}
	user, err := u.userUsecase.Update(r.Context(), requesterID, chi.URLParam(r, "userId"), patch)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User updated successfully",
		"user":    toUserResponse(user),
	})
}

// deleteUser
//
//	@Summary	Удаление аккаунта вместе с результатами и лицом
//	@Tags		users
//	@Security	BearerAuth
//	@Param		userId	path		string	true	"ID пользователя"
//	@Success	200		{object}	successResponse
//	@Router		/db/users/{userId} [delete]
func (u *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())
	userID := chi.URLParam(r, "userId")

	if err := u.userUsecase.Delete(r.Context(), requesterID, userID); err != nil {
		WriteError(w, err)
		return
	}

	u.logger.Infof("user account deleted, user_id: %s", userID)
	WriteSuccess(w, http.StatusOK, ok("User account deleted successfully"))
}

// userStats
//
//	@Summary	Статистика пользователя
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		userId	path		string	true	"ID пользователя"
//	@Success	200		{object}	map[string]interface{}
//	@Router		/db/users/{userId}/stats [get]
func (u *UserHandler) userStats(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	stats, err := u.userUsecase.Stats(r.Context(), requesterID, chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

// changePassword
//
//	@Summary	Смена пароля
//	@Tags		users
//	@Accept		json
//	@Security	BearerAuth
//	@Param		userId	path		string					true	"ID пользователя"
//	@Param		body	body		changePasswordRequest	true	"Текущий и новый пароль"
//	@Success	200		{object}	successResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/db/users/{userId}/change-password [post]
func (u *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	err := u.userUsecase.ChangePassword(r.Context(), &usecase.ChangePasswordReq{
		RequesterID:     requesterID,
		UserID:          chi.URLParam(r, "userId"),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ok("Password changed successfully"))
}

// uploadAvatar
//
//	@Summary	Загрузка аватара (jpeg, png, webp)
//	@Tags		users
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		userId	path		string	true	"ID пользователя"
//	@Param		avatar	formData	file	true	"Изображение"
//	@Success	200		{object}	map[string]interface{}
//	@Failure	413		{object}	ErrorResponse
//	@Failure	415		{object}	ErrorResponse
//	@Router		/db/users/{userId}/avatar [post]
func (u *UserHandler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	const formOverhead = 1 << 20

	requesterID, _ := UserIDFromCtx(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, u.maxAvatarSize+formOverhead)

	if err := ensureMultipartForm(r, u.maxAvatarSize+formOverhead); err != nil {
		u.logger.Warnf("%d %s: %v", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err)
		WriteError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["avatar"]
	if len(files) == 0 {
		WriteError(w, e.ErrNoImages)
		return
	}

	data, mimeType, err := readFile(files[0], u.maxAvatarSize)
	if err != nil {
		WriteError(w, err)
		return
	}

	user, err := u.userUsecase.UploadAvatar(r.Context(), &usecase.UploadAvatarReq{
		RequesterID: requesterID,
		UserID:      chi.URLParam(r, "userId"),
		Data:        data,
		MimeType:    mimeType,
		Size:        int64(len(data)),
		Name:        files[0].Filename,
	})
	if err != nil {
		u.logger.Warnf("avatar upload failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"success": true, "user": toUserResponse(user)})
}

// saveSettings
//
//	@Summary	Сохранение настроек; userId в теле должен совпадать с владельцем токена
//	@Tags		users
//	@Accept		json
//	@Security	BearerAuth
//	@Param		body	body		map[string]interface{}	true	"Настройки"
//	@Success	200		{object}	successResponse
//	@Router		/db/settings [post]
func (u *UserHandler) saveSettings(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	var settings map[string]any
	if err := decodeJSON(w, r, &settings); err != nil {
		WriteError(w, err)
		return
	}

	userID, _ := settings["userId"].(string)
	if userID == "" {
		WriteError(w, e.ErrMissingFields)
		return
	}

	if err := u.userUsecase.SaveSettings(r.Context(), requesterID, userID, settings); err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ok("Settings saved successfully"))
}

// getSettings
//
//	@Summary	Настройки пользователя
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		userId	path		string	true	"ID пользователя"
//	@Success	200		{object}	map[string]interface{}
//	@Router		/db/settings/{userId} [get]
func (u *UserHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := UserIDFromCtx(r.Context())

	settings, err := u.userUsecase.GetSettings(r.Context(), requesterID, chi.URLParam(r, "userId"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"success": true, "settings": settings})
}
