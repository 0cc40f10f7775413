package services_test

import (
	"errors"
	"strings"
	"testing"

	"reelmux/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrMerge, "merge", "mux", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"merge", "mux", "ffmpeg failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaults(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrValidation, "merge", "validate", "bad", nil), "validation"},
		{services.Wrap(services.ErrDownload, "fetch", "get", "404", nil), "download"},
		{services.Wrap(services.ErrMerge, "ffmpeg", "run", "exit 1", nil), "merge"},
		{errors.New("plain"), "transient"},
	}
	for _, tt := range tests {
		if got := services.Kind(tt.err); got != tt.want {
			t.Fatalf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if !services.IsClientError(services.Wrap(services.ErrValidation, "", "", "x", nil)) {
		t.Fatal("expected validation error to be a client error")
	}
	if services.IsClientError(services.Wrap(services.ErrDownload, "", "", "x", nil)) {
		t.Fatal("expected download error not to be a client error")
	}
}
