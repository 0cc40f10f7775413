package merge_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"reelmux/internal/config"
	"reelmux/internal/fetch"
	"reelmux/internal/logging"
	"reelmux/internal/media/ffprobe"
	"reelmux/internal/merge"
	"reelmux/internal/notifications"
	"reelmux/internal/services"
)

// concatMuxer writes video bytes followed by audio bytes to the output.
type concatMuxer struct {
	calls atomic.Int32
	err   error
}

func (m *concatMuxer) Mux(_ context.Context, videoPath, audioPath, outputPath string) error {
	m.calls.Add(1)
	if m.err != nil {
		return m.err
	}
	video, err := os.ReadFile(videoPath)
	if err != nil {
		return err
	}
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, append(video, audio...), 0o644)
}

type countingDownloader struct {
	calls atomic.Int32
}

func (d *countingDownloader) Download(context.Context, string, string) (int64, error) {
	d.calls.Add(1)
	return 0, errors.New("unexpected download")
}

type stubProber struct {
	result ffprobe.Result
}

func (p stubProber) Inspect(context.Context, string) (ffprobe.Result, error) {
	return p.result, nil
}

func mediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/video.mp4", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("VIDEO"))
	})
	mux.HandleFunc("/audio.m4a", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("AUDIO"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newService(t *testing.T, tempDir string, downloader merge.Downloader, muxer merge.Muxer, prober merge.Prober) *merge.Service {
	t.Helper()
	svc, err := merge.NewService(merge.Options{
		TempDir:    tempDir,
		Downloader: downloader,
		Muxer:      muxer,
		Prober:     prober,
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected empty temp dir, found %v", names)
	}
}

func noDelivery(t *testing.T) merge.DeliverFunc {
	return func(context.Context, merge.Output) error {
		t.Fatal("deliver must not be called")
		return nil
	}
}

func TestMergeRejectsMissingURLsWithoutTouchingDisk(t *testing.T) {
	tempDir := t.TempDir()
	downloader := &countingDownloader{}
	svc := newService(t, tempDir, downloader, &concatMuxer{}, nil)

	for _, req := range []merge.Request{
		{AudioURL: "https://cdn.example.com/a.m4a"},
		{VideoURL: "https://cdn.example.com/v.mp4"},
		{},
	} {
		err := svc.Merge(context.Background(), req, noDelivery(t))
		if !errors.Is(err, services.ErrValidation) || !errors.Is(err, merge.ErrMissingURLs) {
			t.Fatalf("expected missing URL validation error, got %v", err)
		}
		if merge.PublicMessage(err) != "videoUrl and audioUrl are required" {
			t.Fatalf("unexpected public message %q", merge.PublicMessage(err))
		}
	}
	if downloader.calls.Load() != 0 {
		t.Fatalf("expected no downloads, got %d", downloader.calls.Load())
	}
	assertEmptyDir(t, tempDir)
}

func TestMergeRejectsNonHTTPURLsWithoutFetching(t *testing.T) {
	tempDir := t.TempDir()
	downloader := &countingDownloader{}
	svc := newService(t, tempDir, downloader, &concatMuxer{}, nil)

	for _, bad := range []string{"file:///etc/passwd", "ftp://host/v.mp4", "not a url", "javascript:alert(1)"} {
		req := merge.Request{VideoURL: bad, AudioURL: "https://cdn.example.com/a.m4a"}
		err := svc.Merge(context.Background(), req, noDelivery(t))
		if !errors.Is(err, merge.ErrInvalidURLs) {
			t.Fatalf("expected invalid URL error for %q, got %v", bad, err)
		}
		if merge.PublicMessage(err) != "Invalid URLs" {
			t.Fatalf("unexpected public message %q", merge.PublicMessage(err))
		}
	}
	if downloader.calls.Load() != 0 {
		t.Fatalf("expected no downloads, got %d", downloader.calls.Load())
	}
	assertEmptyDir(t, tempDir)
}

func TestMergeDeliversAndCleansUp(t *testing.T) {
	server := mediaServer(t)
	tempDir := t.TempDir()
	muxer := &concatMuxer{}
	svc := newService(t, tempDir, fetch.New(fetch.Options{}), muxer, nil)

	var delivered bytes.Buffer
	var out merge.Output
	err := svc.Merge(context.Background(), merge.Request{
		VideoURL: server.URL + "/video.mp4",
		AudioURL: server.URL + "/audio.m4a",
		Title:    "My Clip!",
	}, func(_ context.Context, o merge.Output) error {
		out = o
		entries, _ := os.ReadDir(tempDir)
		if len(entries) != 3 {
			t.Errorf("expected artifacts to exist during delivery, found %d", len(entries))
		}
		_, err := io.Copy(&delivered, o.File)
		return err
	})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	if out.Filename != "My-Clip.mp4" {
		t.Fatalf("unexpected filename %q", out.Filename)
	}
	if out.Size != int64(delivered.Len()) {
		t.Fatalf("size %d does not match delivered length %d", out.Size, delivered.Len())
	}
	if delivered.String() != "VIDEOAUDIO" {
		t.Fatalf("unexpected merged bytes %q", delivered.String())
	}
	if muxer.calls.Load() != 1 {
		t.Fatalf("expected exactly one mux call, got %d", muxer.calls.Load())
	}
	assertEmptyDir(t, tempDir)
}

func TestMergeDefaultsFilename(t *testing.T) {
	server := mediaServer(t)
	svc := newService(t, t.TempDir(), fetch.New(fetch.Options{}), &concatMuxer{}, nil)

	var name string
	err := svc.Merge(context.Background(), merge.Request{
		VideoURL: server.URL + "/video.mp4",
		AudioURL: server.URL + "/audio.m4a",
	}, func(_ context.Context, o merge.Output) error {
		name = o.Filename
		return nil
	})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if name != "video.mp4" {
		t.Fatalf("expected fallback filename, got %q", name)
	}
}

func TestMergeVideoDownloadFailureRemovesAudio(t *testing.T) {
	server := mediaServer(t)
	tempDir := t.TempDir()
	muxer := &concatMuxer{}
	svc := newService(t, tempDir, fetch.New(fetch.Options{}), muxer, nil)

	err := svc.Merge(context.Background(), merge.Request{
		VideoURL: server.URL + "/missing.mp4",
		AudioURL: server.URL + "/audio.m4a",
	}, noDelivery(t))
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected download error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Failed to download: 404") {
		t.Fatalf("expected status in error, got %q", err.Error())
	}
	if muxer.calls.Load() != 0 {
		t.Fatal("muxer must not run after a failed download")
	}
	assertEmptyDir(t, tempDir)
}

func TestMergeMuxFailureCleansUp(t *testing.T) {
	server := mediaServer(t)
	tempDir := t.TempDir()
	muxErr := services.Wrap(services.ErrMerge, "ffmpeg", "mux", "Invalid data found", errors.New("exit status 1"))
	svc := newService(t, tempDir, fetch.New(fetch.Options{}), &concatMuxer{err: muxErr}, nil)

	err := svc.Merge(context.Background(), merge.Request{
		VideoURL: server.URL + "/video.mp4",
		AudioURL: server.URL + "/audio.m4a",
	}, noDelivery(t))
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected merge error, got %v", err)
	}
	assertEmptyDir(t, tempDir)
}

func TestMergeVerificationRejectsVideoOnlyOutput(t *testing.T) {
	server := mediaServer(t)
	tempDir := t.TempDir()
	prober := stubProber{result: ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video"}}}}
	svc := newService(t, tempDir, fetch.New(fetch.Options{}), &concatMuxer{}, prober)

	err := svc.Merge(context.Background(), merge.Request{
		VideoURL: server.URL + "/video.mp4",
		AudioURL: server.URL + "/audio.m4a",
	}, noDelivery(t))
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected verification failure, got %v", err)
	}
	assertEmptyDir(t, tempDir)
}

func TestMergeDeliveryErrorStillCleansUp(t *testing.T) {
	server := mediaServer(t)
	tempDir := t.TempDir()
	svc := newService(t, tempDir, fetch.New(fetch.Options{}), &concatMuxer{}, nil)

	err := svc.Merge(context.Background(), merge.Request{
		VideoURL: server.URL + "/video.mp4",
		AudioURL: server.URL + "/audio.m4a",
	}, func(context.Context, merge.Output) error {
		return errors.New("client went away")
	})
	if err == nil || !strings.Contains(err.Error(), "client went away") {
		t.Fatalf("expected delivery error, got %v", err)
	}
	assertEmptyDir(t, tempDir)
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	if _, err := merge.NewService(merge.Options{TempDir: t.TempDir()}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBuildFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.Merge.VerifyOutput = true

	svc, err := merge.Build(&cfg, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	err = svc.Merge(context.Background(), merge.Request{VideoURL: "ftp://x/v", AudioURL: "ftp://x/a"}, nil)
	if !errors.Is(err, merge.ErrInvalidURLs) {
		t.Fatalf("expected validation before any work, got %v", err)
	}
}

type recordingNotifier struct {
	events chan notifications.Event
	last   chan notifications.Payload
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan notifications.Event, 4), last: make(chan notifications.Payload, 4)}
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	n.events <- event
	n.last <- payload
	return nil
}

func TestMergeFailureNotifies(t *testing.T) {
	server := mediaServer(t)
	notifier := newRecordingNotifier()
	svc, err := merge.NewService(merge.Options{
		TempDir:    t.TempDir(),
		Downloader: fetch.New(fetch.Options{}),
		Muxer:      &concatMuxer{err: errors.New("ffmpeg exploded")},
		Notifier:   notifier,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "req-42")
	req := merge.Request{VideoURL: server.URL + "/video.mp4", AudioURL: server.URL + "/audio.m4a", Title: "Clip"}
	if err := svc.Merge(ctx, req, func(context.Context, merge.Output) error { return nil }); err == nil {
		t.Fatal("expected mux failure")
	}

	select {
	case event := <-notifier.events:
		if event != notifications.EventMergeFailed {
			t.Fatalf("unexpected event %q", event)
		}
		payload := <-notifier.last
		if payload["title"] != "Clip" || payload["requestID"] != "req-42" {
			t.Fatalf("unexpected payload %v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected merge_failed notification")
	}
}

func TestMergeValidationFailureDoesNotNotify(t *testing.T) {
	notifier := newRecordingNotifier()
	svc, err := merge.NewService(merge.Options{
		TempDir:    t.TempDir(),
		Downloader: &countingDownloader{},
		Muxer:      &concatMuxer{},
		Notifier:   notifier,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	_ = svc.Merge(context.Background(), merge.Request{VideoURL: "file:///etc/passwd", AudioURL: "https://a/b"}, nil)

	select {
	case event := <-notifier.events:
		t.Fatalf("unexpected notification %q", event)
	case <-time.After(50 * time.Millisecond):
	}
}
