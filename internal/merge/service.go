package merge

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"reelmux/internal/logging"
	"reelmux/internal/media/ffprobe"
	"reelmux/internal/notifications"
	"reelmux/internal/services"
	"reelmux/internal/staging"
	"reelmux/internal/textutil"
)

// ContentType is the media type of every merge result.
const ContentType = "video/mp4"

// Downloader fetches a remote resource into a local file.
type Downloader interface {
	Download(ctx context.Context, rawURL, dest string) (int64, error)
}

// Muxer stream-copies a video and an audio file into one container.
type Muxer interface {
	Mux(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// Prober inspects a media file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Output is handed to the delivery function. File is positioned at offset 0
// and stays valid until the delivery function returns.
type Output struct {
	File     *os.File
	Size     int64
	Filename string
}

// DeliverFunc streams a finished merge to its destination.
type DeliverFunc func(ctx context.Context, out Output) error

// Options configures a Service.
type Options struct {
	TempDir    string
	Downloader Downloader
	Muxer      Muxer
	// Prober enables output verification when non-nil.
	Prober Prober
	// Notifier receives merge_failed events for server-side failures.
	Notifier notifications.Service
	Logger   *slog.Logger
}

// Service runs merge requests. It holds no per-request state, so one Service
// may serve any number of concurrent requests.
type Service struct {
	tempDir    string
	downloader Downloader
	muxer      Muxer
	prober     Prober
	notifier   notifications.Service
	logger     *slog.Logger
}

// NewService constructs a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Downloader == nil || opts.Muxer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "merge", "init", "downloader and muxer are required", nil)
	}
	return &Service{
		tempDir:    opts.TempDir,
		downloader: opts.Downloader,
		muxer:      opts.Muxer,
		prober:     opts.Prober,
		notifier:   opts.Notifier,
		logger:     logging.NewComponentLogger(opts.Logger, "merge"),
	}, nil
}

// Merge validates req, downloads both sources, muxes them, and calls deliver
// with the result. Temporary files are removed after deliver returns.
func (s *Service) Merge(ctx context.Context, req Request, deliver DeliverFunc) error {
	err := s.merge(ctx, req, deliver)
	if err != nil && s.notifier != nil && !services.IsClientError(err) && ctx.Err() == nil {
		s.notifyFailure(ctx, req, err)
	}
	return err
}

func (s *Service) merge(ctx context.Context, req Request, deliver DeliverFunc) error {
	if err := req.Validate(); err != nil {
		return err
	}

	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()

	scope, err := staging.NewScope(s.tempDir, s.logger)
	if err != nil {
		return err
	}
	defer scope.Release()

	video, err := scope.Reserve("mp4")
	if err != nil {
		return services.Wrap(services.ErrTransient, "merge", "reserve", "", err)
	}
	audio, err := scope.Reserve("m4a")
	if err != nil {
		return services.Wrap(services.ErrTransient, "merge", "reserve", "", err)
	}
	merged, err := scope.Reserve("mp4")
	if err != nil {
		return services.Wrap(services.ErrTransient, "merge", "reserve", "", err)
	}

	if err := s.downloadBoth(services.WithStage(ctx, "download"), []job{
		{url: req.VideoURL, dest: video.Path()},
		{url: req.AudioURL, dest: audio.Path()},
	}); err != nil {
		logger.Warn("merge download failed", logging.Error(err))
		return err
	}

	if err := s.muxer.Mux(services.WithStage(ctx, "mux"), video.Path(), audio.Path(), merged.Path()); err != nil {
		logger.Warn("merge mux failed", logging.Error(err))
		return err
	}

	if s.prober != nil {
		if err := s.verify(ctx, merged.Path()); err != nil {
			logger.Warn("merge verification failed", logging.Error(err))
			return err
		}
	}

	file, err := os.Open(merged.Path())
	if err != nil {
		return services.Wrap(services.ErrMerge, "merge", "open output", "", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return services.Wrap(services.ErrMerge, "merge", "stat output", "", err)
	}

	out := Output{
		File:     file,
		Size:     info.Size(),
		Filename: textutil.SafeFileName(req.Title, "mp4"),
	}
	if err := deliver(services.WithStage(ctx, "deliver"), out); err != nil {
		return services.Wrap(services.ErrTransient, "merge", "deliver", out.Filename, err)
	}

	logger.Info("merge complete",
		logging.String("filename", out.Filename),
		logging.Int64("bytes", out.Size),
		logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return nil
}

// notifyFailure publishes in the background so the HTTP error response is
// not held up by ntfy.
func (s *Service) notifyFailure(ctx context.Context, req Request, err error) {
	payload := notifications.Payload{"title": req.Title, "error": err}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		payload["requestID"] = rid
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.Publish(detached, notifications.EventMergeFailed, payload); err != nil {
			s.logger.Warn("merge failure notification failed", logging.Error(err))
		}
	}()
}

type job struct {
	url  string
	dest string
}

// downloadBoth runs every job concurrently. The first failure cancels the
// remaining jobs and is the error returned.
func (s *Service) downloadBoth(ctx context.Context, jobs []job) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.downloader.Download(ctx, j.url, j.dest); err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}()
	}
	wg.Wait()

	if firstErr != nil && !errors.Is(firstErr, services.ErrDownload) && !errors.Is(firstErr, services.ErrTimeout) {
		return services.Wrap(services.ErrDownload, "merge", "download", "", firstErr)
	}
	return firstErr
}

func (s *Service) verify(ctx context.Context, path string) error {
	result, err := s.prober.Inspect(ctx, path)
	if err != nil {
		return services.Wrap(services.ErrMerge, "merge", "verify", "inspect output", err)
	}
	if !result.IsMuxed() {
		return services.Wrap(services.ErrMerge, "merge", "verify", "output is missing a video or audio stream", nil)
	}
	return nil
}
