package http

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/modlrn/go-backend/docs" // Импорт описания API для swagger
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// UseCases — зависимости, из которых собираются обработчики.
type UseCases struct {
	Auth       usecase.AuthUC
	User       usecase.UserUC
	Question   usecase.QuestionUC
	Result     usecase.ResultUC
	Assessment usecase.AssessmentUC
	Health     usecase.HealthUC
}

// Options — параметры HTTP-слоя, не относящиеся к бизнес-логике.
type Options struct {
	AllowedOrigins []string
	FrontendURL    string
	MaxAvatarSize  int64
	// AuthRateLimit — запросов в минуту с IP на /auth/login и /auth/face-login; 0 отключает
	AuthRateLimit int
	// TrustedProxies — прокси, чьим X-Forwarded-For / X-Real-IP можно верить
	TrustedProxies []netip.Prefix
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(uc *UseCases, opts Options) {
	r.router.Use(middleware.RequestID)
	r.router.Use(TrustedRealIP(opts.TrustedProxies))
	r.router.Use(middleware.Recoverer)
	r.router.Use(RequestLogger(r.logger))
	r.router.Use(CORS(opts.AllowedOrigins))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	authHandler := NewAuthHandler(uc.Auth, opts.FrontendURL, r.logger)
	userHandler := NewUserHandler(uc.User, opts.MaxAvatarSize, r.logger)
	questionHandler := NewQuestionHandler(uc.Question, r.logger)
	resultHandler := NewResultHandler(uc.Result, r.logger)
	assessmentHandler := NewAssessmentHandler(uc.Assessment, r.logger)
	healthHandler := NewHealthHandler(uc.Health)

	r.router.Get("/", healthHandler.root)

	limit := func(next http.Handler) http.Handler { return next }
	if opts.AuthRateLimit > 0 {
		limit = NewIPRateLimiter(opts.AuthRateLimit, opts.AuthRateLimit).Middleware
	}

	r.router.Route("/auth", func(auth chi.Router) {
		registerAuthRoutes(auth, authHandler, uc.Auth, limit)
	})

	r.router.Route("/db", func(db chi.Router) {
		// регистрация и вход продублированы под /db для старых клиентов
		db.Post("/users/register", authHandler.register)
		db.With(limit).Post("/users/login", authHandler.login)

		db.Group(func(protected chi.Router) {
			protected.Use(RequireAuth(uc.Auth))
			registerUserRoutes(protected, userHandler)
			registerQuestionRoutes(protected, questionHandler)
		})
	})

	r.router.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler.health)

		api.Group(func(protected chi.Router) {
			protected.Use(RequireAuth(uc.Auth))
			registerResultRoutes(protected, resultHandler)
			protected.Post("/topic", assessmentHandler.setConfig)
			protected.Get("/topic", assessmentHandler.getConfig)
		})
	})
}

func registerAuthRoutes(router chi.Router, h *AuthHandler, verifier TokenVerifier, limit func(http.Handler) http.Handler) {
	router.Post("/register", h.register)
	router.With(limit).Post("/login", h.login)
	router.With(limit).Post("/face-login", h.faceLogin)
	router.Post("/logout", h.logout)
	router.Get("/google", h.googleLogin)
	router.Get("/google/callback", h.googleCallback)
	router.With(OptionalAuth(verifier)).Get("/status", h.status)

	router.Group(func(face chi.Router) {
		face.Use(RequireAuth(verifier))
		face.Get("/face-status", h.faceStatus)
		face.Post("/register-face", h.registerFace)
		face.Delete("/face", h.removeFace)
	})
}

func registerUserRoutes(router chi.Router, h *UserHandler) {
	router.Route("/users/{userId}", func(u chi.Router) {
		u.Get("/", h.getUser)
		u.Put("/", h.updateUser)
		u.Delete("/", h.deleteUser)
		u.Get("/stats", h.userStats)
		u.Post("/change-password", h.changePassword)
		u.Post("/avatar", h.uploadAvatar)
	})

	router.Post("/settings", h.saveSettings)
	router.Get("/settings/{userId}", h.getSettings)
}

func registerQuestionRoutes(router chi.Router, h *QuestionHandler) {
	router.Get("/questions", h.generateQuestions)
	router.Post("/questions", h.addQuestions)
	router.Post("/questions/explanations", h.explain)
	router.Get("/questions/{topic}", h.questionsByTopic)
}

func registerResultRoutes(router chi.Router, h *ResultHandler) {
	router.Route("/results", func(res chi.Router) {
		res.Post("/", h.createResult)
		res.Get("/user/{userId}", h.userResults)
		res.Get("/analytics/{userId}", h.analytics)
		res.Get("/topic/{topic}", h.resultsByTopic)
		res.Get("/{resultId}", h.getResult)
		res.Get("/{resultId}/detailed", h.detailedResult)
	})
}
