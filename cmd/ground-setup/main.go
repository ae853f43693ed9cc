package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/ground-setup/internal/app"
	"github.com/riskibarqy/ground-setup/internal/config"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
	"github.com/riskibarqy/ground-setup/internal/observability"
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"github.com/riskibarqy/ground-setup/internal/usecase"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cmd := "serve"
	if len(args) > 0 {
		cmd = strings.ToLower(strings.TrimSpace(args[0]))
		args = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		return serve(ctx, cfg)
	case "run", "sync":
		return runSync(ctx, cfg)
	case "rebuild-week":
		return rebuildWeek(ctx, cfg, args)
	default:
		printUsage()
		return exitUsage
	}
}

func serve(ctx context.Context, cfg config.Config) int {
	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing := observability.InitUptrace(cfg, logger)
	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Warn("pyroscope disabled", "error", err)
		stopProfiling = func() error { return nil }
	}
	pprofServer := observability.StartPprofServer(cfg, logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return exitFailure
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	srv, err := a.NewHTTPServer()
	if err != nil {
		logger.Error("build http server", "error", err)
		return exitFailure
	}

	if cfg.SchedulerEnabled && !cfg.QStashEnabled {
		go a.Jobs.RunScheduled(ctx, cfg.SyncInterval)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := exitOK
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			logger.Error("http server failed", "error", err)
			exitCode = exitFailure
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		exitCode = exitFailure
	}
	if err := observability.StopPprofServer(shutdownCtx, pprofServer); err != nil {
		logger.Warn("stop pprof server", "error", err)
	}
	if err := stopProfiling(); err != nil {
		logger.Warn("stop pyroscope", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("shutdown tracing", "error", err)
	}

	logger.Info("http server stopped")
	return exitCode
}

// runSync performs one sync and prints the tagged result on stdout. An
// empty fetch is reported on stderr and is not a failure.
func runSync(ctx context.Context, cfg config.Config) int {
	logger := logging.NewConsole(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return exitFailure
	}
	defer a.Close()

	result, runErr := a.Sync.Run(ctx, usecase.TriggerCLI)
	if err := printJSON(result); err != nil {
		logger.Error("print result", "error", err)
		return exitFailure
	}
	if runErr != nil {
		return exitFailure
	}
	if result.Status == syncrun.StatusEmptyResult {
		fmt.Fprintln(os.Stderr, result.Reason)
	}
	return exitOK
}

func rebuildWeek(ctx context.Context, cfg config.Config, args []string) int {
	logger := logging.NewConsole(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	var weekStart *time.Time
	if len(args) > 0 {
		parsed, err := time.ParseInLocation(groundview.WeekKeyLayout, strings.TrimSpace(args[0]), cfg.Location)
		if err != nil {
			fmt.Fprintf(os.Stderr, "week must be YYYY-MM-DD, got %q\n", args[0])
			return exitUsage
		}
		weekStart = &parsed
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return exitFailure
	}
	defer a.Close()

	view, err := a.Sync.RebuildWeek(ctx, weekStart)
	if err != nil {
		logger.Error("rebuild week", "error", err)
		return exitFailure
	}
	summary := map[string]any{
		"week_start": groundview.WeekKey(view.WeekStart),
		"name":       groundview.ViewName(view.WeekStart),
		"rows":       len(view.Rows),
	}
	if err := printJSON(summary); err != nil {
		logger.Error("print result", "error", err)
		return exitFailure
	}
	return exitOK
}

func printJSON(v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <serve|run|rebuild-week> [args]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s serve\n", name)
	fmt.Fprintf(os.Stderr, "  %s run\n", name)
	fmt.Fprintf(os.Stderr, "  %s rebuild-week 2024-05-06\n", name)
}
