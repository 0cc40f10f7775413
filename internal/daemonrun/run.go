package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"reelmux/internal/config"
	"reelmux/internal/daemon"
	"reelmux/internal/deps"
	"reelmux/internal/extract"
	"reelmux/internal/logging"
	"reelmux/internal/merge"
	"reelmux/internal/notifications"
	"reelmux/internal/preflight"
)

// logStreamCapacity is how many recent events GET /api/logs can replay.
const logStreamCapacity = 1000

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the reelmux daemon and blocks until SIGINT/SIGTERM or ctx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	hub := logging.NewStreamHub(logStreamCapacity)
	logger = logging.TeeLogger(logger, logging.NewStreamHandler(hub, slog.LevelInfo))

	notifier := notifications.NewService(cfg)
	logDependencySnapshot(signalCtx, logger, cfg, notifier)

	pidPath := filepath.Join(cfg.Paths.StateDir, "reelmuxd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	mergeSvc, err := merge.Build(cfg, logger, notifier)
	if err != nil {
		return fmt.Errorf("build merge service: %w", err)
	}

	daemonOpts := daemon.Options{Merger: mergeSvc, Logs: hub}
	router, closeExtract, err := extract.Build(signalCtx, cfg, nil, logger)
	if err != nil {
		logger.Warn("extraction disabled", logging.Error(err))
	} else {
		defer func() {
			if err := closeExtract(); err != nil {
				logger.Warn("close extraction cache", logging.Error(err))
			}
		}()
		daemonOpts.Extractor = router
		daemonOpts.Providers = router.Providers()
	}

	d, err := daemon.New(cfg, logger, daemonOpts)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}
	if err := notifier.Publish(signalCtx, notifications.EventDaemonStarted, notifications.Payload{"bind": d.Addr()}); err != nil {
		logger.Warn("startup notification failed", logging.Error(err))
	}

	<-signalCtx.Done()
	logger.Info("reelmux daemon shutting down")
	return nil
}

func newLogger(cfg *config.Config, opts Options) (*slog.Logger, error) {
	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "reelmuxd.log"))
	}
	return logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Development: opts.Development,
	})
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(ctx context.Context, logger *slog.Logger, cfg *config.Config, notifier notifications.Service) {
	statuses := preflight.CheckSystemDeps(cfg)
	attrs := make([]logging.Attr, 0, len(statuses)*2+2)
	for _, status := range statuses {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
	}
	attrs = append(attrs,
		logging.Bool("rapidapi_key_present", strings.TrimSpace(cfg.Extract.RapidAPI.APIKey) != ""),
		logging.Bool("cache_enabled", cfg.Extract.Cache.Enabled),
	)
	logger.Info("dependency snapshot", logging.Args(attrs...)...)

	for _, missing := range deps.MissingRequired(statuses) {
		logger.Warn("required dependency missing",
			logging.String("name", missing.Name),
			logging.String("detail", missing.Detail),
		)
		payload := notifications.Payload{"name": missing.Name, "detail": missing.Detail}
		if err := notifier.Publish(ctx, notifications.EventDependencyMissing, payload); err != nil {
			logger.Warn("dependency notification failed", logging.Error(err))
		}
	}
	for _, failed := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		logger.Warn("preflight check failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
		)
	}
}
