package main

import (
	"fmt"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	"reelmux/internal/api"
	"reelmux/internal/extract"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Resolve a page URL into downloadable medias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.commandLogger(cfg)

			router, closeFn, err := extract.Build(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := router.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			resp := api.ExtractResponse{Result: result, NeedsMerge: extract.NeedsMerge(result.Medias)}
			if pair, err := extract.SelectPair(result.Medias); err == nil {
				resp.Pair = &pair
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			return printExtractResult(cmd, resp)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result as JSON")
	return cmd
}

func printExtractResult(cmd *cobra.Command, resp api.ExtractResponse) error {
	out := cmd.OutOrStdout()
	tty := isTerminal(out)

	if tty {
		fmt.Fprintf(out, "Title:    %s\n", resp.Title)
		fmt.Fprintf(out, "Source:   %s\n", resp.Source)
		fmt.Fprintf(out, "Provider: %s\n\n", resp.Provider)
	}

	rows := make([][]string, 0, len(resp.Medias))
	for _, m := range resp.Medias {
		size := m.FormattedSize
		if size == "" && m.Size > 0 {
			size = formatBytes(m.Size)
		}
		rows = append(rows, []string{
			string(m.Type),
			m.Label(),
			m.Extension,
			yesNo(m.HasAudio || m.IsAudio()),
			size,
			m.URL,
		})
	}
	fmt.Fprintln(out, renderRows(out, []string{"Type", "Quality", "Ext", "Audio", "Size", "URL"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))

	if tty && resp.Pair != nil {
		fmt.Fprintf(out, "\nBest pair for merge: %s video + %s audio\n", resp.Pair.Video.Label(), resp.Pair.Audio.Label())
		fmt.Fprintf(out, "  reelmux merge --video %s --audio %s --title %s\n",
			shellescape.Quote(resp.Pair.Video.URL), shellescape.Quote(resp.Pair.Audio.URL), shellescape.Quote(resp.Title))
	}
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
