package ffmpeg

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"reelmux/internal/logging"
	"reelmux/internal/services"
)

func TestArgsStreamCopiesBothInputs(t *testing.T) {
	args := Args("/tmp/v.mp4", "/tmp/a.m4a", "/tmp/out.mp4")

	joined := strings.Join(args, " ")
	for _, fragment := range []string{"-i /tmp/v.mp4", "-i /tmp/a.m4a", "-c copy", "-map 0:v", "-map 1:a", "-y"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in args %q", fragment, joined)
		}
	}
	if idx := slices.Index(args, "/tmp/out.mp4"); idx < 0 || idx < slices.Index(args, "/tmp/a.m4a") {
		t.Fatalf("expected output after inputs: %q", joined)
	}
	if slices.Contains(args, "-c:v") || strings.Contains(joined, "libx264") {
		t.Fatalf("expected no re-encoding arguments: %q", joined)
	}
}

func TestMuxUsesConfiguredBinary(t *testing.T) {
	var gotBinary string
	var gotArgs []string
	runner := func(ctx context.Context, binary string, args []string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return nil, nil
	}
	m := NewMuxer("/opt/ffmpeg/bin/ffmpeg", time.Minute, logging.NewNop(), WithRunner(runner))

	if err := m.Mux(context.Background(), "v.mp4", "a.m4a", "out.mp4"); err != nil {
		t.Fatalf("Mux returned error: %v", err)
	}
	if gotBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected binary %q", gotBinary)
	}
	if !slices.Contains(gotArgs, "out.mp4") {
		t.Fatalf("expected output path in args, got %v", gotArgs)
	}
}

func TestMuxFailureCarriesOutput(t *testing.T) {
	runner := func(ctx context.Context, binary string, args []string) ([]byte, error) {
		return []byte("  Invalid data found when processing input\n"), errors.New("exit status 1")
	}
	m := NewMuxer("", 0, nil, WithRunner(runner))
	if m.Binary() != "ffmpeg" {
		t.Fatalf("expected default binary, got %q", m.Binary())
	}

	err := m.Mux(context.Background(), "v.mp4", "a.m4a", "out.mp4")
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected merge marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found when processing input") {
		t.Fatalf("expected ffmpeg output in error, got %q", err.Error())
	}
}

func TestMuxTimeout(t *testing.T) {
	runner := func(ctx context.Context, binary string, args []string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	m := NewMuxer("ffmpeg", 20*time.Millisecond, nil, WithRunner(runner))

	if err := m.Mux(context.Background(), "v", "a", "o"); !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestMuxMissingBinary(t *testing.T) {
	m := NewMuxer("reelmux-definitely-missing-ffmpeg", time.Second, nil)
	if err := m.Mux(context.Background(), "v", "a", "o"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestTail(t *testing.T) {
	if got := Tail([]byte("  short  "), 10); got != "short" {
		t.Fatalf("unexpected tail %q", got)
	}
	if got := Tail([]byte("abcdefghij"), 4); got != "...ghij" {
		t.Fatalf("unexpected tail %q", got)
	}
}
