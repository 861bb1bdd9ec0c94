package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/reminder-board/config"
	"github.com/ErlanBelekov/reminder-board/internal/email"
	"github.com/ErlanBelekov/reminder-board/internal/health"
	"github.com/ErlanBelekov/reminder-board/internal/infrastructure/boltdb"
	"github.com/ErlanBelekov/reminder-board/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/reminder-board/internal/log"
	"github.com/ErlanBelekov/reminder-board/internal/metrics"
	"github.com/ErlanBelekov/reminder-board/internal/repository"
	httptransport "github.com/ErlanBelekov/reminder-board/internal/transport/http"
	"github.com/ErlanBelekov/reminder-board/internal/transport/http/handler"
	"github.com/ErlanBelekov/reminder-board/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	// Auth
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, sessionRepo, sender, usecase.AuthConfig{
		BaseURL:        cfg.BaseURL,
		SessionTTL:     time.Duration(cfg.SessionTTLHours) * time.Hour,
		RememberTTL:    time.Duration(cfg.RememberTTLHours) * time.Hour,
		ResetTokenTTL:  time.Duration(cfg.ResetTokenTTLMinutes) * time.Minute,
		VerifyTokenTTL: time.Duration(cfg.VerifyTokenTTLHours) * time.Hour,
		BcryptCost:     cfg.BcryptCost,
	}, logger)
	authHandler := handler.NewAuthHandler(authUsecase, cfg.CookieSecure(), logger)

	// Messages; the backend is chosen here, once, and never re-branched.
	var messageRepo repository.MessageRepository
	switch cfg.MessageStore {
	case "file":
		store, err := boltdb.New(cfg.MessageDBPath)
		if err != nil {
			stop()
			log.Fatalf("message store: %v", err)
		}
		defer store.Close()
		messageRepo = store
	default:
		messageRepo = postgres.NewMessageRepository(pool)
	}
	messageUsecase := usecase.NewMessageUsecase(messageRepo)
	messageHandler := handler.NewMessageHandler(messageUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authUsecase, authHandler, messageHandler),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "message_store", cfg.MessageStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
