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

	"github.com/matchsight/matchsight/internal/app"
	"github.com/matchsight/matchsight/internal/config"
	"github.com/matchsight/matchsight/internal/observability"
	"github.com/matchsight/matchsight/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.Level(cfg.LogLevel),
	}))

	logger := logging.NewJSON(cfg.LogLevel)
	logger, closeBetterStack, err := observability.InitBetterStackLogger(cfg, logger)
	if err != nil {
		slogger.Error("init better stack logger", "error", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		slogger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopPyroscope, err := observability.InitPyroscope(cfg, slogger)
	if err != nil {
		slogger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, slogger)
	if err != nil {
		slogger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		slogger.Error("build app", "error", err)
		os.Exit(1)
	}

	srv, err := application.HTTPServer()
	if err != nil {
		slogger.Error("build http server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoSyncEnabled {
		go func() {
			report, err := application.Sync.RunIfStale(ctx, false)
			if err != nil {
				slogger.Warn("startup corpus sync failed", "error", err)
				return
			}
			slogger.Info("startup corpus sync finished",
				"outcome", report.Outcome,
				"downloaded", report.Downloaded,
				"total_matches", report.TotalMatches,
			)
		}()
	}

	go func() {
		slogger.Info("http server starting", "addr", cfg.HTTPAddr, "store", cfg.CorpusStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slogger.Error("graceful shutdown failed", "error", err)
	}

	if err := observability.StopPprofServer(pprofSrv, slogger, 5*time.Second); err != nil {
		slogger.Warn("stop pprof server", "error", err)
	}
	if stopPyroscope != nil {
		if err := stopPyroscope(); err != nil {
			slogger.Warn("stop pyroscope", "error", err)
		}
	}
	if shutdownUptrace != nil {
		if err := shutdownUptrace(shutdownCtx); err != nil {
			slogger.Warn("shutdown uptrace", "error", err)
		}
	}
	if closeBetterStack != nil {
		if err := closeBetterStack(shutdownCtx); err != nil {
			slogger.Warn("close better stack logger", "error", err)
		}
	}
	if err := application.Close(); err != nil {
		slogger.Warn("close app", "error", err)
	}

	slogger.Info("http server stopped")
}
