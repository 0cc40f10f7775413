package merge

import (
	"log/slog"

	"reelmux/internal/config"
	"reelmux/internal/fetch"
	"reelmux/internal/ffmpeg"
	"reelmux/internal/media/ffprobe"
	"reelmux/internal/notifications"
)

// Build wires a Service from configuration: the downloader with browser-like
// headers and size cap, the ffmpeg muxer, and ffprobe verification when
// merge.verify_output is set. notifier may be nil.
func Build(cfg *config.Config, logger *slog.Logger, notifier notifications.Service) (*Service, error) {
	downloader := fetch.New(fetch.Options{
		Headers: fetch.Headers{
			UserAgent:      cfg.Merge.UserAgent,
			Referer:        cfg.Merge.Referer,
			AcceptLanguage: cfg.Merge.AcceptLanguage,
		},
		Timeout:  cfg.DownloadTimeout(),
		MaxBytes: cfg.MaxDownloadBytes(),
		Logger:   logger,
	})

	opts := Options{
		TempDir:    cfg.Paths.TempDir,
		Downloader: downloader,
		Muxer:      ffmpeg.NewMuxer(cfg.FFmpegBinary(), cfg.FFmpegTimeout(), logger),
		Notifier:   notifier,
		Logger:     logger,
	}
	if cfg.Merge.VerifyOutput {
		opts.Prober = ffprobe.New(cfg.FFprobeBinary(), nil)
	}
	return NewService(opts)
}
