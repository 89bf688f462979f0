package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/matchsight/matchsight/internal/app"
	"github.com/matchsight/matchsight/internal/config"
	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/matchsight/matchsight/internal/usecase"
)

func main() {
	full := flag.Bool("full", false, "redownload the whole schedule instead of the incremental delta")
	force := flag.Bool("force", false, "run even when the stored corpus is still fresh")
	statusOnly := flag.Bool("status", false, "print the corpus status and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(cfg.LogLevel),
	}))

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	application, err := app.New(cfg, logger)
	if err != nil {
		slogger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			slogger.Warn("close app", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *statusOnly {
		status, err := application.Sync.Status(ctx)
		if err != nil {
			slogger.Error("corpus status", "error", err)
			os.Exit(1)
		}
		printJSON(status)
		return
	}

	if !cfg.FeedConfigured() {
		slogger.Error("feed credentials missing", "hint", "set FEED_OUTLET_KEY, FEED_SECRET_KEY and TOURNAMENT_CALENDAR_ID")
		os.Exit(1)
	}

	var report usecase.SyncReport
	if *full {
		report, err = application.Sync.Run(ctx, usecase.SyncOptions{Full: true, OnlyPlayed: cfg.SyncOnlyPlayed})
	} else {
		report, err = application.Sync.RunIfStale(ctx, *force)
	}
	if err != nil {
		slogger.Error("corpus sync failed", "error", err)
		os.Exit(1)
	}

	printJSON(report)

	if report.Errors > 0 {
		slogger.Warn("corpus sync finished with download errors", "errors", report.Errors)
		os.Exit(1)
	}
}

func printJSON(v any) {
	out, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
