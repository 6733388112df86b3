package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq" // PostgreSQL driver

	"formgate/internal/broker"
	"formgate/internal/config"
	"formgate/internal/constants"
	"formgate/internal/contact"
	"formgate/internal/logger"
	"formgate/internal/mailer"
	"formgate/internal/ratelimit"
	"formgate/internal/signature"
	"formgate/internal/site"
	"formgate/internal/submission"
	"formgate/internal/webhook"
	"formgate/pkg/bootstrap"
	"formgate/pkg/health"
	"formgate/pkg/metrics"
	"formgate/pkg/middleware"
)

type App struct {
	config      *config.Config
	logger      logger.Logger
	dbConnector *bootstrap.DatabaseConnector
	db          *sql.DB
	redisClient *redis.Client
	producer    broker.Producer
	server      *http.Server
	router      *gin.Engine
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	a.initProducer()

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.initServer()
	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redisClient = redisClient

	return nil
}

func (a *App) initProducer() {
	if a.config.Broker.Type != "kafka" || a.config.Broker.Kafka.SubmissionTopic == "" {
		return
	}

	producer, err := broker.NewProducer(a.config.Broker, a.logger)
	if err != nil {
		a.logger.Warnw("Failed to create event producer, submission events disabled", "error", err)
		return
	}
	a.producer = producer
	a.logger.Infow("Submission event producer initialized",
		"topic", a.config.Broker.Kafka.SubmissionTopic,
	)
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	siteRepo := site.NewRepository(a.db)
	resolver := site.NewResolver(siteRepo, a.logger)

	limiter := ratelimit.NewLimiter(
		ratelimit.NewRepository(a.redisClient),
		a.logger,
		a.config.Contact.RateBucketTTL,
	)

	verifier := signature.NewVerifier(a.config.Contact.ReplayWindowSeconds)

	var submissionMailer contact.Mailer
	if a.config.SMTP.Host != "" {
		submissionMailer = mailer.NewSMTPMailer(a.config.SMTP, a.logger)
	} else {
		a.logger.Warnw("No SMTP host configured, email delivery disabled")
	}

	store := submission.NewRepository(a.db)
	notifier := webhook.NewNotifier(webhook.NewRepository(a.db), a.config.Webhook, a.logger)

	svc := contact.NewService(
		resolver,
		limiter,
		verifier,
		submissionMailer,
		store,
		notifier,
		a.producer,
		a.config.Contact,
		a.config.Broker.Kafka.SubmissionTopic,
		a.logger,
	)

	handler := contact.NewHandler(svc, a.logger)
	handler.RegisterRoutes(router, a.config.Contact.CORSAllowedOrigins)

	metrics.RegisterContactMetrics()
	metrics.RegisterCircuitBreakerMetrics()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	healthRegistry.Register(health.NewRedisChecker(a.redisClient))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.router = router
	return nil
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.config.Server.WriteTimeoutSeconds,
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db)...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
