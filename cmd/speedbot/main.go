package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/speedwagon-io/speedbot/internal/collector"
	"github.com/speedwagon-io/speedbot/internal/config"
	"github.com/speedwagon-io/speedbot/internal/health"
	"github.com/speedwagon-io/speedbot/internal/history"
	"github.com/speedwagon-io/speedbot/internal/hostinfo"
	"github.com/speedwagon-io/speedbot/internal/lib/logger/sl"
	"github.com/speedwagon-io/speedbot/internal/model"
	"github.com/speedwagon-io/speedbot/internal/notifier"
	"github.com/speedwagon-io/speedbot/internal/pipeline"
	"github.com/speedwagon-io/speedbot/internal/report"
	"github.com/speedwagon-io/speedbot/internal/results"
	"github.com/speedwagon-io/speedbot/internal/speedtest"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup completes before
// main exits.
func run() int {
	configPath := flag.String("config", "", "path to config file (.env or .yaml)")
	dryRun := flag.Bool("dry-run", false, "log the report instead of sending it")
	showHistory := flag.Int("history", 0, "print the last N recorded runs and exit")
	selfCheck := flag.Bool("check", false, "verify bot credentials and local setup, print a JSON report and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 0
	}

	log := sl.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	if cfg.HostName == "" {
		cfg.HostName, _ = os.Hostname()
	}

	log.Info("starting speedtest notifier",
		slog.String("env", cfg.Env),
		slog.String("host_name", cfg.HostName),
		slog.Bool("dry_run", *dryRun),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store history.Store
	if cfg.History.Enabled || *showHistory > 0 {
		sqliteStore, err := history.NewSQLiteStore(log, cfg.History.Path)
		if err != nil {
			log.Error("failed to open run history", slog.String("path", cfg.History.Path), sl.Err(err))
		} else {
			store = sqliteStore
			defer store.Close()
		}
	}

	if *showHistory > 0 {
		printHistory(ctx, log, store, *showHistory)
		return 0
	}

	newNotifier := func(cred model.Credential) notifier.Notifier {
		return notifier.NewTelegram(log, cred, cfg.Bot.APIURL, cfg.Bot.Timeout)
	}

	if *selfCheck {
		checkers := []health.Checker{
			health.NewCredentialChecker(cfg.Credential(), newNotifier),
			health.NewToolChecker(cfg.Speedtest.Binary),
			health.NewResultsLogChecker(cfg.Results.Path),
		}
		if sqliteStore, ok := store.(*history.SQLiteStore); ok {
			checkers = append(checkers, health.NewHistoryChecker(sqliteStore.Count))
		}

		return checkSetup(ctx, log, os.Stdout, checkers)
	}

	runner := speedtest.NewExecRunner()

	var installer pipeline.ToolInstaller
	if cfg.Speedtest.AutoInstall {
		installer = speedtest.NewInstaller(log, cfg.Speedtest.Binary, runner)
	}

	coll := collector.New(log,
		speedtest.NewTool(log, cfg.Speedtest.Binary, runner),
		hostinfo.NewResolver(log, cfg.HostName, cfg.IPLookup.URL, cfg.IPLookup.Timeout, runner),
		results.NewLog(cfg.Results.Path),
		store,
	)

	if *dryRun {
		log.Info("dry-run mode: report will be logged instead of sent")
		newNotifier = func(model.Credential) notifier.Notifier {
			return notifier.NewLogNotifier(log)
		}
	}

	outcome := pipeline.New(log, installer, coll, newNotifier).Run(ctx, cfg.Credential())

	log.Info("run finished", slog.String("outcome", outcome.String()))
	return 0
}

// checkSetup writes the health report to w and returns 1 when any component
// is unhealthy.
func checkSetup(ctx context.Context, log *slog.Logger, w io.Writer, checkers []health.Checker) int {
	rep := health.Run(ctx, checkers...)
	if err := rep.WriteJSON(w); err != nil {
		log.Error("failed to write check report", sl.Err(err))
	}
	if rep.Status == health.StatusUnhealthy {
		return 1
	}
	return 0
}

func printHistory(ctx context.Context, log *slog.Logger, store history.Store, limit int) {
	if store == nil {
		return
	}

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		log.Error("failed to read run history", sl.Err(err))
		return
	}

	for _, run := range runs {
		fmt.Println(report.LogLine(run.Timestamp.Local(), run.Measurement))
	}
}
