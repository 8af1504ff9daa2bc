package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kickpool/prediction-league/internal/app"
	"github.com/kickpool/prediction-league/internal/config"
	"github.com/kickpool/prediction-league/internal/observability"
	"github.com/kickpool/prediction-league/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))
	logging.SetDefault(logging.NewJSON(cfg.LogLevel))

	shutdownTracing, err := observability.InitUptrace(cfg, nil)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	srv, err := app.NewHTTPServer(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if pprofSrv != nil {
		if err := pprofSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("pprof shutdown failed", "error", err)
		}
	}
	if err := stopProfiling(); err != nil {
		logger.Error("stop profiling failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("shutdown tracing failed", "error", err)
	}

	logger.Info("http server stopped")
}

func slogLevel(level logging.Level) slog.Level {
	switch {
	case level <= logging.LevelDebug:
		return slog.LevelDebug
	case level == logging.LevelInfo:
		return slog.LevelInfo
	case level == logging.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
