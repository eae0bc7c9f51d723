package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/config"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/email"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/httpclient"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/logger"
	s3infra "github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/s3"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/infra/telegram"
	pgrepo "github.com/Brahim-Amzil/3arida-sub004/backend/internal/repo/postgres"
	redrepo "github.com/Brahim-Amzil/3arida-sub004/backend/internal/repo/redis"
	appealsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/appeals"
	auditsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/audit"
	authsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/auth"
	mediasvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/media"
	modsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/moderation"
	notifysvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/notify"
	petitionsvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/petitions"
	ratesvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/rate"
	signaturesvc "github.com/Brahim-Amzil/3arida-sub004/backend/internal/services/signatures"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	dispatcher *notifysvc.Dispatcher
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.CORS.AllowedOrigins)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	petitionRepo := pgrepo.NewPetitionRepo(pool)
	moderationRepo := pgrepo.NewModerationRepo(pool)
	signatureRepo := pgrepo.NewSignatureRepo(pool)
	appealRepo := pgrepo.NewAppealRepo(pool)
	auditRepo := pgrepo.NewAuditRepo(pool)
	notificationRepo := pgrepo.NewNotificationRepo(pool)
	contactRepo := pgrepo.NewContactRepo(pool)
	txRunner := pgrepo.NewTxRunner(pool)

	s3Client, err := s3infra.NewClient(cfg.S3)
	if err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	}
	imageStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := imageStorage.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket check failed", zap.Error(err))
		}
	}

	channels := notifysvc.Channels{
		InApp:           notificationRepo,
		Contacts:        contactRepo,
		ModeratorChatID: cfg.Notify.ModeratorChatID,
		PublicBaseURL:   cfg.Notify.PublicBaseURL,
	}
	if cfg.Notify.ResendAPIKey != "" {
		mailer, err := email.NewClient(email.Config{
			APIKey:  cfg.Notify.ResendAPIKey,
			From:    cfg.Notify.EmailFrom,
			BaseURL: cfg.Notify.ResendBaseURL,
			RPS:     cfg.Notify.EmailRPS,
			Timeout: cfg.Notify.EmailTimeout,
		}, httpclient.New(cfg.Notify.EmailTimeout))
		if err != nil {
			log.Warn("email channel disabled", zap.Error(err))
		} else {
			channels.Email = mailer
		}
	}
	if cfg.Notify.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.Notify.TelegramToken)
		if err != nil {
			log.Warn("telegram channel disabled", zap.Error(err))
		} else {
			channels.Telegram = bot
		}
	}

	dispatcher := notifysvc.NewDispatcher(channels, logger.Named(log, "notify"))
	auditService := auditsvc.NewService(auditRepo)
	limiter := ratesvc.NewLimiter(rateRepo, cfg.Appeals.MessagesPerMinute, cfg.Appeals.MessagesPer10Minutes)
	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAccessTTL)

	petitionService := petitionsvc.NewService(petitionRepo)
	signatureService := signaturesvc.NewService(txRunner, petitionRepo, signatureRepo, cfg.Sign.DefaultRegion)
	mediaService := mediasvc.NewService(petitionRepo, imageStorage, logger.Named(log, "media"))
	appealService := appealsvc.NewService(appealRepo, petitionRepo, limiter, auditService, dispatcher, logger.Named(log, "appeals"))
	moderationService := modsvc.NewService(petitionRepo, moderationRepo, auditService, dispatcher, imageStorage, logger.Named(log, "moderation"))
	inbox := notifysvc.NewInbox(notificationRepo, contactRepo)

	RegisterRoutes(r, Dependencies{
		Tokens:            jwtManager,
		PhoneVerifier:     jwtManager,
		PetitionService:   petitionService,
		SignatureService:  signatureService,
		MediaService:      mediaService,
		AppealService:     appealService,
		ModerationService: moderationService,
		Inbox:             inbox,
		HealthChecks: map[string]handlers.HealthCheck{
			"postgres": func(ctx context.Context) error { return pgrepo.Ping(ctx, pool) },
			"redis":    func(ctx context.Context) error { return redrepo.Ping(ctx, redisClient) },
			"s3":       s3infra.BucketCheck(s3Client, cfg.S3.Bucket),
		},
		Logger: log,
		Config: cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		dispatcher: dispatcher,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains HTTP before closing the notifier.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
