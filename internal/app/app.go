package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/modlrn/go-backend/internal/biometric"
	config "github.com/modlrn/go-backend/internal/cfg"
	v1Grpc "github.com/modlrn/go-backend/internal/delivery/v1/grpc"
	v1Http "github.com/modlrn/go-backend/internal/delivery/v1/http"
	genaiInfra "github.com/modlrn/go-backend/internal/infrastructure/genai"
	"github.com/modlrn/go-backend/internal/infrastructure/google"
	"github.com/modlrn/go-backend/internal/infrastructure/kafka"
	minioInfra "github.com/modlrn/go-backend/internal/infrastructure/minio"
	s3Repo "github.com/modlrn/go-backend/internal/repository/minio"
	"github.com/modlrn/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/modlrn/go-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/modlrn/go-backend/internal/repository/qdrant"
	"github.com/modlrn/go-backend/internal/repository/redis"
	redisConv "github.com/modlrn/go-backend/internal/repository/redis/converter"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/clients"
	"github.com/modlrn/go-backend/pkg/closer"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/hasher"
	"github.com/modlrn/go-backend/pkg/logger"
	"github.com/modlrn/go-backend/pkg/postgres"
	"github.com/modlrn/go-backend/pkg/token"
	"github.com/modlrn/go-backend/pkg/tr"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	cleanupTimeout  = 5 * time.Second
	topicTimeout    = 10 * time.Second
)

// App держит собранные зависимости и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	grpcSrv      *v1Grpc.GRPCServer
	outboxWorker *kafka.OutboxWorker

	// контекст фоновых задач (outbox, очистка MinIO)
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   log,
		closer:   closer.NewCloser(0),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}

	if err := a.init(); err != nil {
		bgCancel()
		// закрываем то, что успели открыть
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			log.Warnf("partial init cleanup: %v", closeErr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	cfg, log := a.cfg, a.logger

	// фоновый контекст отменяется последним, после ожидания очистки MinIO
	a.closer.Add(func(context.Context) error {
		a.bgCancel()
		return nil
	})

	db, err := initPGDB(log, cfg)
	if err != nil {
		return err
	}
	a.closer.Add(func(context.Context) error {
		db.Close()
		return nil
	})

	txManager := tr.NewManager(db.Pool)

	userRepo := pgdb.NewUserRepo(db.Pool, pgdbConv.UserConverterImpl{})
	resultRepo := pgdb.NewResultRepo(db.Pool, pgdbConv.ResultConverterImpl{})
	questionRepo := pgdb.NewQuestionRepo(db.Pool, pgdbConv.QuestionConverterImpl{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverterImpl{})

	enrollmentRepo, err := a.initEnrollmentStore(db)
	if err != nil {
		return err
	}

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add(func(context.Context) error {
		return redisClient.Client.Close()
	})
	redisCtx, redisCancel := context.WithTimeout(context.Background(), initTimeout)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		return e.Wrap("failed to connect to redis", err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.AnalyticsConverterImpl{}, cfg.Redis, log)
	assessmentRepo := redis.NewAssessmentRepo(redisClient, redisConv.AssessmentConfigConverterImpl{}, cfg.Redis)

	minioClient, err := clients.NewMinIOClient(cfg)
	if err != nil {
		return e.Wrap("failed to initialize minio client", err)
	}
	minioCtx, minioCancel := context.WithTimeout(context.Background(), initTimeout)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		return e.Wrap("failed to initialize MinIO bucket", err)
	}
	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	avatars := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, a.bgCtx)
	a.closer.Add(func(ctx context.Context) error {
		cleanupCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
		defer cancel()
		if err := avatars.WaitForCleanup(cleanupCtx); err != nil {
			log.Warnf("MinIO cleanup did not finish before shutdown, some objects may remain: %v", err)
		}
		return nil
	})

	genAI, err := genaiInfra.NewGenAIService(context.Background(), cfg.GenAI, log)
	if err != nil {
		return e.Wrap("failed to initialize genai client", err)
	}

	publishEvents := cfg.Kafka.Enabled
	if publishEvents {
		if err := a.initOutbox(db, outboxRepo); err != nil {
			return err
		}
	} else {
		log.Infof("KAFKA_BROKERS is not set, result events will not be published")
	}

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	passwords := hasher.NewBcryptHasher(cfg.Auth.BcryptCost)
	oauth := google.NewOAuthProvider(cfg.Auth)
	matcher := biometric.NewMatcher(enrollmentRepo, log)

	useCases := &v1Http.UseCases{
		Auth: usecase.NewAuthUC(userRepo, enrollmentRepo, matcher, tokens, passwords, oauth, log),
		User: usecase.NewUserUC(
			userRepo,
			resultRepo,
			enrollmentRepo,
			cacheRepo,
			avatars,
			passwords,
			txManager,
			cfg.Minio.MaxAvatarSize,
			log,
		),
		Question:   usecase.NewQuestionUC(questionRepo, genAI, log),
		Result:     usecase.NewResultUC(resultRepo, outboxRepo, cacheRepo, txManager, publishEvents, log),
		Assessment: usecase.NewAssessmentUC(assessmentRepo, log),
		Health:     usecase.NewHealthUC(db, redisClient, log),
	}

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices(useCases.Health)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(useCases, v1Http.Options{
		AllowedOrigins: cfg.Http.AllowedOrigins,
		FrontendURL:    cfg.Auth.FrontendURL,
		MaxAvatarSize:  cfg.Minio.MaxAvatarSize,
		AuthRateLimit:  cfg.Http.AuthRateLimit,
		TrustedProxies: cfg.Http.TrustedProxies,
	})
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	return nil
}

// initEnrollmentStore выбирает хранилище дескрипторов лиц по FACE_STORE.
func (a *App) initEnrollmentStore(db *postgres.PgDatabase) (usecase.EnrollmentRepository, error) {
	if a.cfg.Face.Store != config.FaceStoreQdrant {
		a.logger.Infof("face enrollments are stored in postgres")
		return pgdb.NewEnrollmentRepo(db.Pool), nil
	}

	qdrantClient, err := clients.NewQdrantClient(a.cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap("failed to initialize qdrant", err)
	}
	a.closer.Add(func(context.Context) error {
		return qdrantClient.Client.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := clients.EnsureCollection(ctx, qdrantClient); err != nil {
		return nil, e.Wrap("failed to initialize qdrant collection", err)
	}

	a.logger.Infof("face enrollments are stored in qdrant collection %s", a.cfg.Qdrant.QdrantCollectionName)
	return qdrantRepo.NewEnrollmentRepo(qdrantClient.Client, a.cfg.Qdrant), nil
}

func (a *App) initOutbox(db *postgres.PgDatabase, outboxRepo usecase.OutboxRepository) error {
	producer, err := kafka.NewProducer(a.logger, a.cfg.Kafka)
	if err != nil {
		return e.Wrap("failed to initialize kafka producer", err)
	}
	a.closer.Add(func(context.Context) error {
		return producer.Close()
	})

	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// топик мог быть создан заранее без прав на CreateTopics
		a.logger.Warnf("failed to ensure kafka topic %s: %v", a.cfg.Kafka.Topic, err)
	}

	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, db.Dsn)
	// воркер останавливается раньше продюсера (LIFO)
	a.closer.Add(func(context.Context) error {
		a.outboxWorker.Stop()
		return nil
	})

	return nil
}

// Run запускает серверы и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	log := a.logger

	if a.outboxWorker != nil {
		a.outboxWorker.Start(a.bgCtx)
	}

	grpcErrCh := make(chan error, 1)
	go func() {
		log.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			log.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		log.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		log.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		log.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.stop()
	return appErr
}

// stop останавливает серверы, затем закрывает ресурсы в обратном порядке открытия.
func (a *App) stop() {
	log := a.logger

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		log.Errorf(err, "HTTP server shutdown error")
	} else {
		log.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warnf("gRPC server shutdown timeout")
		} else {
			log.Errorf(err, "gRPC server shutdown error")
		}
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		log.Errorf(err, "resource shutdown error")
		return
	}

	log.Infof("Application shutdown complete")
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(postgres.DefaultMigrationsURL, logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
