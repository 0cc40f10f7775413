package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelmux/internal/config"
	"reelmux/internal/notifications"
)

type capturedRequest struct {
	title    string
	body     string
	tags     string
	priority string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()
	got := make(chan capturedRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- capturedRequest{
			title:    r.Header.Get("Title"),
			body:     string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestNewServiceIsNoopWithoutTopic(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventMergeFailed, nil); err != nil {
		t.Fatalf("expected noop publish to succeed, got %v", err)
	}
}

func TestPublishFormatsEvents(t *testing.T) {
	tests := []struct {
		name         string
		event        notifications.Event
		payload      notifications.Payload
		wantTitle    string
		wantBody     string
		wantTags     string
		wantPriority string
	}{
		{
			name:      "daemon started",
			event:     notifications.EventDaemonStarted,
			payload:   notifications.Payload{"bind": "127.0.0.1:7488"},
			wantTitle: "reelmux - Started",
			wantBody:  "Daemon listening on 127.0.0.1:7488",
			wantTags:  "reelmux,daemon",
		},
		{
			name:  "merge failed",
			event: notifications.EventMergeFailed,
			payload: notifications.Payload{
				"title":     "Sunset",
				"error":     errors.New("Failed to download: 404"),
				"requestID": "req-1",
			},
			wantTitle:    "reelmux - Merge Failed",
			wantBody:     "Merge failed for \"Sunset\": Failed to download: 404\nRequest: req-1",
			wantTags:     "reelmux,merge,error",
			wantPriority: "high",
		},
		{
			name:         "dependency missing",
			event:        notifications.EventDependencyMissing,
			payload:      notifications.Payload{"name": "FFmpeg", "detail": "binary \"ffmpeg\" not found"},
			wantTitle:    "reelmux - Dependency Missing",
			wantBody:     "Required dependency missing: FFmpeg\nbinary \"ffmpeg\" not found",
			wantTags:     "reelmux,dependency,warning",
			wantPriority: "high",
		},
		{
			name:         "test",
			event:        notifications.EventTest,
			wantTitle:    "reelmux - Test",
			wantBody:     "Notification system test",
			wantTags:     "reelmux,test",
			wantPriority: "low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newNtfyServer(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL + "/reelmux"

			svc := notifications.NewService(&cfg, notifications.WithHTTPClient(srv.Client()))
			if err := svc.Publish(context.Background(), tt.event, tt.payload); err != nil {
				t.Fatalf("Publish returned error: %v", err)
			}
			req := <-got
			if req.title != tt.wantTitle || req.body != tt.wantBody || req.tags != tt.wantTags || req.priority != tt.wantPriority {
				t.Fatalf("unexpected request %+v", req)
			}
		})
	}
}

func TestPublishSkipsDisabledEvents(t *testing.T) {
	srv, got := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.MergeFailures = false

	svc := notifications.NewService(&cfg, notifications.WithHTTPClient(srv.Client()))
	if err := svc.Publish(context.Background(), notifications.EventMergeFailed, notifications.Payload{"error": "boom"}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	select {
	case req := <-got:
		t.Fatalf("expected no request, got %+v", req)
	default:
	}
}

func TestPublishReportsServerErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL

	svc := notifications.NewService(&cfg, notifications.WithHTTPClient(srv.Client()))
	err := svc.Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
