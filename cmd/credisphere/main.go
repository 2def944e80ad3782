package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/credisphere/credisphere/internal/app"
	"github.com/credisphere/credisphere/internal/auth"
	"github.com/credisphere/credisphere/internal/membership/categories"
	"github.com/credisphere/credisphere/internal/membership/clubs"
	"github.com/credisphere/credisphere/internal/membership/competitions"
	"github.com/credisphere/credisphere/internal/membership/parties"
	"github.com/credisphere/credisphere/internal/membership/powerteams"
	"github.com/credisphere/credisphere/internal/observability"
	"github.com/credisphere/credisphere/internal/platform/cache"
	"github.com/credisphere/credisphere/internal/platform/db"
	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/rbac"
	"github.com/credisphere/credisphere/internal/shared"
	"github.com/credisphere/credisphere/internal/users"
	"github.com/credisphere/credisphere/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Error("migrate schema", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	registry := rbac.DefaultRegistry()
	if cfg.RBACRolesFile != "" {
		registry, err = rbac.LoadFile(cfg.RBACRolesFile)
		if err != nil {
			logger.Error("load role registry", slog.String("path", cfg.RBACRolesFile), slog.Any("error", err))
			os.Exit(1)
		}
	}
	acl := rbac.Middleware{Registry: registry, Logger: logger}

	validator := httpx.NewValidator()
	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(
		authRepo,
		auth.NewTokenIssuer(cfg.AuthTokenSecret, cfg.AuthTokenTTL),
		auth.NewRevocationStore(redisClient),
		auditLogger,
		auth.ServiceConfig{PrincipalCacheSize: cfg.PrincipalCacheSize, PrincipalCacheTTL: cfg.PrincipalCacheTTL},
	)
	authHandler := auth.NewHandler(logger, authService, validator)

	usersService := users.NewService(users.NewRepository(dbpool), validator, auditLogger, authService)
	if err := ensureAdmin(ctx, authRepo, usersService, cfg, logger); err != nil {
		logger.Error("bootstrap admin", slog.Any("error", err))
		os.Exit(1)
	}

	clubsService := clubs.NewService(clubs.NewRepository(dbpool), validator, auditLogger)
	partiesService := parties.NewService(parties.NewRepository(dbpool), validator, auditLogger)
	competitionsService := competitions.NewService(competitions.NewRepository(dbpool), validator, auditLogger)
	powerTeamsService := powerteams.NewService(powerteams.NewRepository(dbpool), validator, auditLogger)
	categoriesService := categories.NewService(categories.NewRepository(dbpool), validator, auditLogger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Metrics:             observability.NewMetrics(),
		AuthHandler:         authHandler,
		RolesHandler:        rbac.NewHandler(logger, registry, acl),
		UsersHandler:        users.NewHandler(logger, usersService, acl),
		ClubsHandler:        clubs.NewHandler(logger, clubsService, acl),
		PartiesHandler:      parties.NewHandler(logger, partiesService, acl),
		CompetitionsHandler: competitions.NewHandler(logger, competitionsService, acl),
		PowerTeamsHandler:   powerteams.NewHandler(logger, powerTeamsService, acl),
		CategoriesHandler:   categories.NewHandler(logger, categoriesService, acl),
		JobHandler:          jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
