package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"reelmux/internal/logging"
	"reelmux/internal/services"
)

// maxOutputTail bounds how much ffmpeg output is carried in an error.
const maxOutputTail = 2048

// Runner executes binary with args and returns its combined output.
type Runner func(ctx context.Context, binary string, args []string) ([]byte, error)

// ExecRunner runs the command with exec.CommandContext.
func ExecRunner(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Muxer wraps the ffmpeg binary.
type Muxer struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	run     Runner
}

// Option customizes a Muxer.
type Option func(*Muxer)

// WithRunner replaces the process runner, mainly for tests.
func WithRunner(run Runner) Option {
	return func(m *Muxer) {
		if run != nil {
			m.run = run
		}
	}
}

// NewMuxer constructs a Muxer for binary. A zero timeout leaves the call
// bounded only by the caller's context.
func NewMuxer(binary string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Muxer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	m := &Muxer{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "ffmpeg"),
		run:     ExecRunner,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Binary returns the configured ffmpeg executable.
func (m *Muxer) Binary() string {
	return m.binary
}

// Args returns the ffmpeg arguments that copy the video streams of videoPath
// and the audio streams of audioPath into outputPath without re-encoding.
func Args(videoPath, audioPath, outputPath string) []string {
	video := ffmpeggo.Input(videoPath).Video()
	audio := ffmpeggo.Input(audioPath).Audio()
	return ffmpeggo.Output(
		[]*ffmpeggo.Stream{video, audio},
		outputPath,
		ffmpeggo.KwArgs{
			"c":        "copy",
			"movflags": "+faststart",
		},
	).OverWriteOutput().GetArgs()
}

// Mux runs ffmpeg once. A non-zero exit is reported as services.ErrMerge with
// the tail of ffmpeg's output; there is no retry.
func (m *Muxer) Mux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	args := Args(videoPath, audioPath, outputPath)
	logger := logging.WithContext(ctx, m.logger)
	logger.Debug("running ffmpeg", logging.String("command", shellescape.QuoteCommand(append([]string{m.binary}, args...))))

	start := time.Now()
	output, err := m.run(ctx, m.binary, args)
	if err != nil {
		tail := Tail(output, maxOutputTail)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "ffmpeg", "mux", fmt.Sprintf("timed out after %s", m.timeout), err)
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return services.Wrap(services.ErrExternalTool, "ffmpeg", "mux", "binary unavailable", err)
		}
		return services.Wrap(services.ErrMerge, "ffmpeg", "mux", tail, err)
	}

	logger.Debug("ffmpeg finished", logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
	return nil
}

// Tail returns at most limit bytes from the end of output, trimmed.
func Tail(output []byte, limit int) string {
	trimmed := strings.TrimSpace(string(output))
	if limit <= 0 || len(trimmed) <= limit {
		return trimmed
	}
	return "..." + trimmed[len(trimmed)-limit:]
}
