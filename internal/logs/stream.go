package logs

import (
	"context"
	"errors"
	"fmt"

	"reelmux/internal/api"
	"reelmux/internal/daemonctl"
	"reelmux/internal/logging"
)

// Pager fetches pages of daemon log events.
type Pager interface {
	Logs(ctx context.Context, q daemonctl.LogQuery) (*api.LogStreamResponse, error)
}

// Options controls Stream.
type Options struct {
	Lines  int
	Follow bool
	// FilePath is tailed when the daemon is not running.
	FilePath string
}

// Stream prints structured events from the daemon through onEvent. When the
// daemon is unreachable it falls back to raw lines from Options.FilePath
// through onLine. Stream returns nil when ctx ends during follow.
func Stream(ctx context.Context, pager Pager, opts Options, onEvent func(logging.LogEvent), onLine func(string)) error {
	lines := opts.Lines
	if lines <= 0 {
		lines = 50
	}

	page, err := pager.Logs(ctx, daemonctl.LogQuery{Limit: lines, Tail: true})
	if errors.Is(err, daemonctl.ErrNotRunning) {
		return streamFile(ctx, opts, lines, onLine)
	}
	if err != nil {
		return err
	}

	for {
		for _, evt := range page.Events {
			onEvent(evt)
		}
		if !opts.Follow {
			return nil
		}
		since := page.Next
		page, err = pager.Logs(ctx, daemonctl.LogQuery{Since: since, Follow: true})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func streamFile(ctx context.Context, opts Options, lines int, onLine func(string)) error {
	if opts.FilePath == "" {
		return daemonctl.ErrNotRunning
	}
	tail, offset, err := LastLines(opts.FilePath, lines)
	if err != nil {
		return fmt.Errorf("daemon not running and log file unreadable: %w", err)
	}
	for _, line := range tail {
		onLine(line)
	}
	if !opts.Follow {
		return nil
	}
	return FollowFile(ctx, opts.FilePath, offset, onLine)
}
