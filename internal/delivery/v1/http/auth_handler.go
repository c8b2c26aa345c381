package http

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

type AuthHandler struct {
	authUsecase usecase.AuthUC
	frontendURL string
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, frontendURL string, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, frontendURL: frontendURL, logger: logger}
}

// register
//
//	@Summary	Регистрация по email и паролю
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		registerRequest	true	"Данные пользователя"
//	@Success	201		{object}	authResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/auth/register [post]
func (a *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := a.authUsecase.Register(r.Context(), &usecase.RegisterReq{
		Email:          req.Email,
		Password:       req.Password,
		Username:       req.Username,
		Name:           req.Name,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		a.logger.Warnf("register failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toAuthResponse("User registered successfully", res))
}

// login
//
//	@Summary	Вход по email и паролю
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		loginRequest	true	"Учетные данные"
//	@Success	200		{object}	authResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/login [post]
func (a *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := a.authUsecase.Login(r.Context(), &usecase.LoginReq{Email: req.Email, Password: req.Password})
	if err != nil {
		a.logger.Warnf("login failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toAuthResponse("Login successful", res))
}

// faceLogin
//
//	@Summary	Вход по дескриптору лица
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		faceRequest	true	"128-мерный дескриптор"
//	@Success	200		{object}	authResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	503		{object}	ErrorResponse
//	@Router		/auth/face-login [post]
func (a *AuthHandler) faceLogin(w http.ResponseWriter, r *http.Request) {
	var req faceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := a.authUsecase.FaceLogin(r.Context(), req.FaceDescriptor)
	if err != nil {
		a.logger.Warnf("face login failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toAuthResponse("Face login successful", res))
}

// faceStatus
//
//	@Summary	Зарегистрировано ли лицо текущего пользователя
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]interface{}
//	@Router		/auth/face-status [get]
func (a *AuthHandler) faceStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	hasFace, err := a.authUsecase.FaceStatus(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"success": true, "has_face": hasFace})
}

// registerFace
//
//	@Summary	Регистрация или замена лица текущего пользователя
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		faceRequest	true	"128-мерный дескриптор"
//	@Success	200		{object}	successResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/auth/register-face [post]
func (a *AuthHandler) registerFace(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	var req faceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := a.authUsecase.RegisterFace(r.Context(), userID, req.FaceDescriptor); err != nil {
		a.logger.Warnf("register face failed, user_id: %s: %v", userID, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ok("Face registered successfully"))
}

// removeFace
//
//	@Summary	Удаление зарегистрированного лица
//	@Tags		auth
//	@Security	BearerAuth
//	@Success	200	{object}	successResponse
//	@Router		/auth/face [delete]
func (a *AuthHandler) removeFace(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	if err := a.authUsecase.RemoveFace(r.Context(), userID); err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ok("Face removed successfully"))
}

// googleLogin
//
//	@Summary	Перенаправление на страницу входа Google
//	@Tags		auth
//	@Success	307
//	@Failure	500	{object}	ErrorResponse
//	@Router		/auth/google [get]
func (a *AuthHandler) googleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	authURL, err := a.authUsecase.GoogleAuthURL(state)
	if err != nil {
		a.logger.Errorf(err, "google oauth is not available")
		WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// googleCallback
//
//	@Summary	Обработка ответа Google, редирект на фронтенд с токеном
//	@Tags		auth
//	@Param		code	query	string	true	"Authorization code"
//	@Param		state	query	string	true	"OAuth state"
//	@Success	307
//	@Router		/auth/google/callback [get]
func (a *AuthHandler) googleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		a.logger.Warnf("google callback with invalid state")
		a.redirectToFrontend(w, r, "error", "Google login failed")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/google", MaxAge: -1})

	res, err := a.authUsecase.GoogleCallback(r.Context(), query.Get("code"))
	if err != nil {
		if errors.Is(err, e.ErrGoogleOAuthNotConfigured) {
			WriteError(w, err)
			return
		}
		a.logger.Warnf("google callback failed: %v", err)
		a.redirectToFrontend(w, r, "error", "Google login failed")
		return
	}

	a.redirectToFrontend(w, r, "token", res.Token)
}

func (a *AuthHandler) redirectToFrontend(w http.ResponseWriter, r *http.Request, key, value string) {
	target := a.frontendURL + "/login?" + url.Values{key: {value}}.Encode()
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// logout
//
//	@Summary	Выход (токены не хранятся на сервере)
//	@Tags		auth
//	@Success	200	{object}	successResponse
//	@Router		/auth/logout [post]
func (a *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, ok("Logged out successfully"))
}

// status
//
//	@Summary	Статус аутентификации
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	authStatusResponse
//	@Router		/auth/status [get]
func (a *AuthHandler) status(w http.ResponseWriter, r *http.Request) {
	userID, authenticated := UserIDFromCtx(r.Context())
	if !authenticated {
		WriteSuccess(w, http.StatusOK, authStatusResponse{})
		return
	}

	user, err := a.authUsecase.Status(r.Context(), userID)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) || errors.Is(err, e.ErrInvalidID) {
			WriteSuccess(w, http.StatusOK, authStatusResponse{})
			return
		}
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, authStatusResponse{IsAuthenticated: true, User: toUserResponse(user)})
}
