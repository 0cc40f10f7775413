package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"reelmux/internal/daemonctl"
	"reelmux/internal/logging"
	"reelmux/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)

			opts := logs.Options{Lines: lines, Follow: follow}
			if cfg.Paths.LogDir != "" {
				opts.FilePath = filepath.Join(cfg.Paths.LogDir, "reelmuxd.log")
			}
			return logs.Stream(cmd.Context(), daemonctl.NewClient(cfg.API.Bind), opts,
				func(evt logging.LogEvent) {
					if jsonOutput {
						_ = enc.Encode(evt)
						return
					}
					fmt.Fprintln(out, formatLogEvent(evt))
				},
				func(line string) {
					fmt.Fprintln(out, line)
				},
			)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit daemon events as JSON lines")
	return cmd
}

func formatLogEvent(evt logging.LogEvent) string {
	var b strings.Builder
	b.WriteString(evt.Timestamp.Local().Format(time.DateTime))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s", evt.Level)
	b.WriteByte(' ')
	if evt.Component != "" {
		b.WriteString(evt.Component)
		b.WriteString(": ")
	}
	b.WriteString(evt.Message)
	if evt.RequestID != "" {
		b.WriteString(" request_id=")
		b.WriteString(evt.RequestID)
	}
	keys := lo.Keys(evt.Fields)
	slices.Sort(keys)
	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(evt.Fields[key])
	}
	return b.String()
}
