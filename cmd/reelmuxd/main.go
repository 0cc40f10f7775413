// Command reelmuxd runs the reelmux HTTP API as a long-lived service. It is
// intended for process supervisors such as systemd; interactive users can run
// `reelmux serve` instead.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"reelmux/internal/config"
	"reelmux/internal/daemonrun"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("reelmuxd", flag.ContinueOnError)
	configPath := flags.String("config", os.Getenv("REELMUX_CONFIG"), "Configuration file path")
	logLevel := flags.String("log-level", "", "Override the configured log level")
	development := flags.Bool("development", false, "Include source locations in log lines")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	return daemonrun.Run(ctx, cfg, daemonrun.Options{
		LogLevel:    *logLevel,
		Development: *development,
	})
}
