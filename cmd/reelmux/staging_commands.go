package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelmux/internal/logging"
	"reelmux/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage the merge temp directory",
	}
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))
	return stagingCmd
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove merge artifacts left behind by a crashed process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.commandLogger(cfg)

			result := staging.CleanStale(cmd.Context(), cfg.Paths.TempDir, olderThan, logger)
			for _, failure := range result.Errors {
				logger.Warn("failed to remove artifact",
					logging.String("path", failure.Path),
					logging.Error(failure.Error),
				)
			}

			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 {
				fmt.Fprintf(out, "No artifacts older than %s in %s\n", olderThan, cfg.Paths.TempDir)
			} else {
				fmt.Fprintf(out, "Removed %d artifact(s) from %s\n", len(result.Removed), cfg.Paths.TempDir)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d artifact(s) could not be removed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", time.Hour, "Only remove artifacts older than this")
	return cmd
}
