package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spendtrack/spendtrack-go/internal/config"
	"github.com/spendtrack/spendtrack-go/internal/crypto"
	"github.com/spendtrack/spendtrack-go/internal/handler"
	"github.com/spendtrack/spendtrack-go/internal/service"
	"github.com/spendtrack/spendtrack-go/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	ctx := context.Background()
	stores, err := store.Open(ctx, store.Options{
		Driver:        cfg.DatabaseDriver,
		DSN:           cfg.DatabaseDSN,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		slog.Error("database connection failed", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	hasher, err := crypto.NewPasswordHasher(crypto.DefaultHashParams())
	if err != nil {
		slog.Error("password hasher setup failed", "error", err)
		os.Exit(1)
	}

	tokens, err := crypto.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		slog.Error("token service setup failed", "error", err)
		os.Exit(1)
	}

	r := handler.NewRouter(handler.RouterConfig{
		Auth:           service.NewAuthService(stores.Users, hasher, tokens),
		Expenses:       service.NewExpenseService(stores.Expenses),
		Tokens:         tokens,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
