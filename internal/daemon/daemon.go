package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"reelmux/internal/api"
	"reelmux/internal/config"
	"reelmux/internal/deps"
	"reelmux/internal/logging"
	"reelmux/internal/preflight"
)

// Options carries the services the daemon exposes over HTTP.
type Options struct {
	Merger    api.Merger
	Extractor api.Extractor
	// Providers lists the extraction providers for status output.
	Providers []string
	// Logs backs GET /api/logs; nil disables the route.
	Logs api.LogSource
}

// Daemon owns the HTTP API lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	providers []string
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Bind         string
	LockFilePath string
	Providers    []string
	Dependencies []deps.Status
	Checks       []preflight.Result
}

// New constructs a daemon and its API router.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil || opts.Merger == nil {
		return nil, errors.New("daemon requires config and merge service")
	}
	baseLogger := logger
	logger = logging.NewComponentLogger(logger, "daemon")

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		providers: append([]string(nil), opts.Providers...),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}

	server, err := api.New(api.Options{
		Merger:            opts.Merger,
		Extractor:         opts.Extractor,
		Status:            d.apiStatus,
		Logs:              opts.Logs,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		Logger:            baseLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("build api: %w", err)
	}
	shutdown := time.Duration(cfg.API.ShutdownTimeoutSeconds) * time.Second
	d.api = newAPIServer(cfg.API.Bind, server.Handler(), shutdown, logger)
	return d, nil
}

// Start acquires the daemon lock and starts serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelmux daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("reelmux daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.addr()),
	)
	return nil
}

// Stop stops the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("reelmux daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr returns the address the API is listening on, or "" when stopped.
func (d *Daemon) Addr() string {
	if !d.running.Load() {
		return ""
	}
	return d.api.addr()
}

// Status reports runtime state together with dependency and preflight checks.
func (d *Daemon) Status(ctx context.Context) Status {
	bind := d.Addr()
	if bind == "" {
		bind = d.cfg.API.Bind
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Bind:         bind,
		LockFilePath: d.lockPath,
		Providers:    append([]string(nil), d.providers...),
		Dependencies: preflight.CheckSystemDeps(d.cfg),
		Checks:       preflight.RunAll(ctx, d.cfg),
	}
}

func (d *Daemon) apiStatus(ctx context.Context) api.DaemonStatus {
	status := d.Status(ctx)
	return ToAPIStatus(status, d.cfg.Paths.TempDir)
}

// ToAPIStatus converts a Status into its wire form.
func ToAPIStatus(status Status, tempDir string) api.DaemonStatus {
	dependencies := make([]api.DependencyStatus, len(status.Dependencies))
	for i, dep := range status.Dependencies {
		dependencies[i] = api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Path:        dep.Path,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	checks := make([]api.CheckResult, len(status.Checks))
	for i, check := range status.Checks {
		checks[i] = api.CheckResult{Name: check.Name, Passed: check.Passed, Detail: check.Detail}
	}
	return api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		Bind:         status.Bind,
		LockFilePath: status.LockFilePath,
		TempDir:      tempDir,
		Providers:    status.Providers,
		Dependencies: dependencies,
		Checks:       checks,
	}
}
