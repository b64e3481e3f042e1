package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/marquee-cms/marquee/internal/accounts"
	"github.com/marquee-cms/marquee/internal/activity"
	"github.com/marquee-cms/marquee/internal/app"
	"github.com/marquee-cms/marquee/internal/auth"
	"github.com/marquee-cms/marquee/internal/authz"
	"github.com/marquee-cms/marquee/internal/festivals"
	"github.com/marquee-cms/marquee/internal/observability"
	"github.com/marquee-cms/marquee/internal/pages"
	"github.com/marquee-cms/marquee/internal/platform/cache"
	"github.com/marquee-cms/marquee/internal/platform/db"
	"github.com/marquee-cms/marquee/internal/shared"
	"github.com/marquee-cms/marquee/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := authz.ValidateConfig(); err != nil {
		logger.Error("authorization config", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "marquee_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	activitySink := activity.NewSink(activity.NewPGRecorder(dbpool), logger)
	activityService := activity.NewService(activity.NewPGTimeline(dbpool))

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo)

	authzMiddleware := authz.Middleware{
		Engine:   authz.NewEngine(),
		Source:   accountsRepo,
		Logger:   logger,
		Observer: metrics.ObserveDecision,
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, activitySink)

	accountsHandler := accounts.NewHandler(logger, accountsService, activitySink, authzMiddleware)

	festivalsRepo := festivals.NewRepository(dbpool)
	festivalsService := festivals.NewService(festivalsRepo)
	festivalsHandler := festivals.NewHandler(logger, festivalsService, activitySink, authzMiddleware)

	pagesRepo := pages.NewRepository(dbpool)
	pagesService := pages.NewService(pagesRepo)
	pagesHandler := pages.NewHandler(logger, pagesService, activitySink, authzMiddleware)

	activityHandler := activity.NewHandler(logger, activityService, authzMiddleware)
	authzHandler := authz.NewHandler(authzMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Authz:            authzMiddleware,
		AuthHandler:      authHandler,
		AccountsHandler:  accountsHandler,
		FestivalsHandler: festivalsHandler,
		PagesHandler:     pagesHandler,
		ActivityHandler:  activityHandler,
		AuthzHandler:     authzHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
