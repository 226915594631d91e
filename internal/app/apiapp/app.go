package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/devbn3li/movies-api/internal/config"
	"github.com/devbn3li/movies-api/internal/infra/mailer"
	s3infra "github.com/devbn3li/movies-api/internal/infra/s3"
	reconcilejob "github.com/devbn3li/movies-api/internal/jobs/reconcile"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
	redrepo "github.com/devbn3li/movies-api/internal/repo/redis"
	accountssvc "github.com/devbn3li/movies-api/internal/services/accounts"
	authsvc "github.com/devbn3li/movies-api/internal/services/auth"
	catalogsvc "github.com/devbn3li/movies-api/internal/services/catalog"
	reviewssvc "github.com/devbn3li/movies-api/internal/services/reviews"
	socialsvc "github.com/devbn3li/movies-api/internal/services/social"
	uploadssvc "github.com/devbn3li/movies-api/internal/services/uploads"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
	reconcile  *reconcilejob.Job
	jobCancel  context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres init: %w", err)
	}

	redisClient, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("redis init: %w", err)
	}

	s3Client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init: %w", err)
	}

	accountRepo := pgrepo.NewAccountRepo(pool)
	movieRepo := pgrepo.NewMovieRepo(pool)
	tvShowRepo := pgrepo.NewTVShowRepo(pool)
	reviewRepo := pgrepo.NewReviewRepo(pool)
	followRepo := pgrepo.NewFollowRepo(pool)
	favoriteRepo := pgrepo.NewFavoriteRepo(pool)
	codeRepo := redrepo.NewCodeRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	cacheRepo := redrepo.NewCacheRepo(redisClient)

	var mail authsvc.Mailer
	if cfg.Mail.SMTPAddr != "" {
		smtp, err := mailer.NewSMTP(cfg.Mail.SMTPAddr, cfg.Mail.From, cfg.Mail.SMTPUser, cfg.Mail.SMTPPassword)
		if err != nil {
			return nil, fmt.Errorf("mailer init: %w", err)
		}
		mail = smtp
	} else {
		mail = mailer.NewLog(log)
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	authService := authsvc.NewService(accountRepo, codeRepo, mail, rateRepo, jwtManager, authsvc.Config{
		CodeTTL:    cfg.Mail.CodeTTL,
		ResendMax:  int64(cfg.Mail.ResendMax),
		BcryptCost: cfg.Auth.BcryptCost,
	}, log)

	catalogService := catalogsvc.NewService(movieRepo, tvShowRepo, cacheRepo, catalogsvc.Config{
		DefaultPageSize:  cfg.Catalog.DefaultPageSize,
		MaxPageSize:      cfg.Catalog.MaxPageSize,
		DefaultPosterURL: cfg.Catalog.DefaultPosterURL,
		FiltersCacheTTL:  cfg.Catalog.FiltersCacheTTL,
		LanguageNames:    cfg.Catalog.LanguageNames,
	}, log)

	accountService := accountssvc.NewService(accountRepo, favoriteRepo, catalogService, accountssvc.Config{
		DefaultAvatarURL: cfg.Catalog.DefaultAvatarURL,
		BcryptCost:       cfg.Auth.BcryptCost,
	})
	reviewService := reviewssvc.NewService(reviewRepo, catalogService, movieRepo, tvShowRepo, log)
	socialService := socialsvc.NewService(followRepo, accountRepo)

	uploadStorage := uploadssvc.NewS3Storage(s3Client, cfg.S3.Bucket, cfg.S3.PublicURL)
	uploadService := uploadssvc.NewService(uploadStorage, 0)

	reconcileJob := reconcilejob.New(movieRepo, tvShowRepo, accountRepo, reviewService, cfg.Reconcile.Interval, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:    authService,
		AccountService: accountService,
		CatalogService: catalogService,
		ReviewService:  reviewService,
		SocialService:  socialService,
		UploadService:  uploadService,
		Logger:         log,
		Config:         cfg,
	})

	app := &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}
	if cfg.Reconcile.Enabled {
		app.reconcile = reconcileJob
	}
	return app, nil
}

func (a *App) Run() error {
	if a.reconcile != nil {
		jobCtx, cancel := context.WithCancel(context.Background())
		a.jobCancel = cancel
		go a.reconcile.Start(jobCtx)
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.jobCancel != nil {
		a.jobCancel()
	}
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
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
