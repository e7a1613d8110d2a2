package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ragster/console/internal/app"
	"github.com/ragster/console/internal/auth"
	"github.com/ragster/console/internal/authority"
	"github.com/ragster/console/internal/knowledgebase"
	"github.com/ragster/console/internal/observability"
	"github.com/ragster/console/internal/permissions"
	"github.com/ragster/console/internal/platform/cache"
	"github.com/ragster/console/internal/roles"
	"github.com/ragster/console/internal/session"
	"github.com/ragster/console/internal/users"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	sessionManager := session.NewManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := session.NewCSRFManager(cfg.CSRFSecret)
	authorityClient := authority.NewClient(cfg.AuthorityURL, logger)
	metrics := observability.NewMetrics()

	authHandler := auth.NewHandler(logger, authorityClient, sessionManager, csrfManager, metrics)
	rolesHandler := roles.NewHandler(logger, authorityClient)
	permissionsHandler := permissions.NewHandler(logger, authorityClient)
	usersHandler := users.NewHandler(logger, authorityClient)
	kbHandler := knowledgebase.NewHandler(logger, authorityClient)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Metrics:              metrics,
		AuthHandler:          authHandler,
		RolesHandler:         rolesHandler,
		PermissionsHandler:   permissionsHandler,
		UsersHandler:         usersHandler,
		KnowledgeBaseHandler: kbHandler,
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
