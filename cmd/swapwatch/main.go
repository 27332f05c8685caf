// Command swapwatch runs one monitoring pass over the configured targets
// and exits. Scheduling (cron, CI workflow, systemd timer) lives outside
// the process; invocations are assumed non-overlapping.
//
// Modes, selected via CHECK_TYPE:
//
//	change     one full check cycle per target (default)
//	heartbeat  per-target liveness probe, no state reads or writes
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/Melyssali/swap2026/dbopen"
	"github.com/Melyssali/swap2026/internal/fetch"
	"github.com/Melyssali/swap2026/internal/notify"
	"github.com/Melyssali/swap2026/internal/state"
	"github.com/Melyssali/swap2026/watch"
)

func main() {
	// Optional .env for local runs; the scheduler injects real env.
	_ = godotenv.Load()

	mode := env("CHECK_TYPE", "change")
	targetsFile := env("TARGETS_FILE", "targets.yaml")
	statePath := env("STATE_DB", "data/state.db")
	logLevel := env("LOG_LEVEL", "info")

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})).
		With("run_id", uuid.Must(uuid.NewV7()).String())
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	targets, err := watch.LoadTargets(targetsFile)
	if err != nil {
		logger.Error("load targets", "file", targetsFile, "error", err)
		os.Exit(2)
	}

	db, err := dbopen.Open(statePath, dbopen.WithMkdirAll(), dbopen.WithSchema(state.Schema))
	if err != nil {
		logger.Error("open state db", "path", statePath, "error", err)
		os.Exit(2)
	}
	defer db.Close()
	store := state.New(db, state.Config{}, logger)

	fetcher := fetch.New(fetch.Config{})

	var notifier watch.Notifier
	userKey := os.Getenv("PUSHOVER_USER_KEY")
	apiToken := os.Getenv("PUSHOVER_API_TOKEN")
	if userKey == "" || apiToken == "" {
		logger.Warn("pushover credentials missing, notifications disabled")
		notifier = notify.Noop{}
	} else {
		notifier = notify.NewPushover(notify.Config{UserKey: userKey, APIToken: apiToken})
	}

	engine := watch.New(fetcher.Fetch, store, notifier, logger)

	switch mode {
	case "change":
		results := engine.CheckAll(ctx, targets)
		for _, r := range results {
			if r.Result.Kind == watch.KindFailed {
				logger.Warn("target check failed",
					"target", r.Target, "error", r.Result.ErrSummary)
			}
		}
		logger.Info("run complete", "mode", mode, "targets", len(targets))

	case "heartbeat":
		statuses := engine.Heartbeat(ctx, targets)
		failed := 0
		for _, s := range statuses {
			logger.Info("heartbeat status", "target", s.Target, "status", s.Status)
			if !s.OK {
				failed++
			}
		}
		logger.Info("run complete", "mode", mode, "targets", len(targets))
		// Single-target runs surface a probe failure to the scheduler
		// through the exit code.
		if len(targets) == 1 && failed > 0 {
			os.Exit(1)
		}

	default:
		logger.Error("unknown CHECK_TYPE", "mode", mode)
		os.Exit(2)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
