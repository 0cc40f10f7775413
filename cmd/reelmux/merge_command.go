package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelmux/internal/config"
	"reelmux/internal/fileutil"
	"reelmux/internal/merge"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var req merge.Request
	var output string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Download a video-only and an audio-only URL and mux them into one MP4",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := merge.Build(cfg, ctx.commandLogger(cfg), nil)
			if err != nil {
				return err
			}

			var written string
			err = svc.Merge(cmd.Context(), req, func(_ context.Context, out merge.Output) error {
				dest, err := resolveOutputPath(output, out.Filename)
				if err != nil {
					return err
				}
				if _, err := fileutil.WriteAtomic(dest, out.File, out.Size); err != nil {
					return fmt.Errorf("write %s: %w", dest, err)
				}
				written = dest
				return nil
			})
			if err != nil {
				if msg := merge.PublicMessage(err); msg != "" {
					return errors.New(msg)
				}
				return err
			}

			info, err := os.Stat(written)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", written, formatBytes(info.Size()))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.VideoURL, "video", "", "Video-only stream URL")
	cmd.Flags().StringVar(&req.AudioURL, "audio", "", "Audio-only stream URL")
	cmd.Flags().StringVar(&req.Title, "title", "", "Title used for the output file name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (default: current directory)")
	return cmd
}

// resolveOutputPath treats an empty value, an existing directory, or a value
// ending in a separator as a directory and picks a free name inside it.
func resolveOutputPath(output, filename string) (string, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		output = "."
	}
	expanded, err := config.ExpandPath(output)
	if err != nil {
		return "", err
	}

	isDir := strings.HasSuffix(output, string(os.PathSeparator))
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		isDir = true
	}
	if !isDir {
		return expanded, nil
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return fileutil.UniquePath(filepath.Clean(expanded), filename)
}
