package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelmux/internal/api"
	"reelmux/internal/config"
	"reelmux/internal/daemon"
	"reelmux/internal/daemonctl"
	"reelmux/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency and preflight status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			status, err := daemonctl.NewClient(cfg.API.Bind).Status(cmd.Context())
			switch {
			case errors.Is(err, daemonctl.ErrNotRunning):
				status = localStatus(cmd, cfg)
			case err != nil:
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, status)
			}
			printStatus(cmd, cfg, status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit status as JSON")
	return cmd
}

// localStatus reports what a daemon would report when none is reachable.
func localStatus(cmd *cobra.Command, cfg *config.Config) *api.DaemonStatus {
	running, err := daemonctl.LockHeld(cfg.LockPath())
	if err != nil {
		running = false
	}
	status := daemon.ToAPIStatus(daemon.Status{
		Running:      running,
		Bind:         cfg.API.Bind,
		LockFilePath: cfg.LockPath(),
		Dependencies: preflight.CheckSystemDeps(cfg),
		Checks:       preflight.RunAll(cmd.Context(), cfg),
	}, cfg.Paths.TempDir)
	return &status
}

func printStatus(cmd *cobra.Command, cfg *config.Config, status *api.DaemonStatus) {
	out := cmd.OutOrStdout()
	colorize := isTerminal(out)

	lines := renderSectionHeader("Daemon", colorize)
	switch {
	case status.Running && status.PID > 0:
		lines = append(lines, renderStatusLine("API", statusOK, fmt.Sprintf("listening on %s (pid %d)", status.Bind, status.PID), colorize))
	case status.Running:
		lines = append(lines, renderStatusLine("API", statusWarn, "lock held but API unreachable on "+cfg.API.Bind, colorize))
	default:
		lines = append(lines, renderStatusLine("API", statusInfo, "not running", colorize))
	}
	lines = append(lines, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))
	lines = append(lines, renderStatusLine("Temp directory", statusInfo, status.TempDir, colorize))
	if len(status.Providers) > 0 {
		lines = append(lines, renderStatusLine("Providers", statusInfo, strings.Join(status.Providers, ", "), colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	for _, dep := range status.Dependencies {
		message := dep.Path
		if !dep.Available {
			message = dep.Detail
		}
		lines = append(lines, renderStatusLine(dep.Name, dependencyKind(dep.Available, dep.Optional), message, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Checks", colorize)...)
	for _, check := range status.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	fmt.Fprintln(out, strings.Join(lines, "\n"))
}
