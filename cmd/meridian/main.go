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
	"github.com/redis/go-redis/v9"

	"github.com/meridian-hrm/meridian-hrm/internal/app"
	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/employees"
	"github.com/meridian-hrm/meridian-hrm/internal/gate"
	"github.com/meridian-hrm/meridian-hrm/internal/observability"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/cache"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/db"
	"github.com/meridian-hrm/meridian-hrm/internal/rbac"
	"github.com/meridian-hrm/meridian-hrm/internal/token"
	"github.com/meridian-hrm/meridian-hrm/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Permission caching and audit enqueueing degrade, authorization
		// still works against the store.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := token.NewManager(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	auditClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := auditClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, auditClient, logger, cfg.BcryptCost)
	authHandler := auth.NewHandler(logger, authService, cfg.IsProduction(), cfg.TokenTTL, metrics)

	rbacRepo := rbac.NewRepository(pool)
	rbacCache := rbac.NewCache(redisClient, cfg.PermissionCacheTTL)
	rbacService := rbac.NewService(rbacRepo, rbacCache, logger)

	guard := rbac.Guard{Resolver: authService, Tokens: tokens, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbacService, guard)

	employeesRepo := employees.NewRepository(pool)
	employeesService := employees.NewService(employeesRepo)
	employeesHandler := employees.NewHandler(logger, employeesService, guard, rbacService)

	gateway := &gate.Gateway{
		Table:       gate.NewTable(gate.DefaultRules()),
		Tokens:      tokens,
		LoginPath:   cfg.LoginPath,
		SplitStatus: cfg.AuthzSplitStatus,
		Logger:      logger,
		Denials:     metrics,
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Gateway:          gateway,
		AuthHandler:      authHandler,
		RBACHandler:      rbacHandler,
		EmployeesHandler: employeesHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
