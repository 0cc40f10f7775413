package staging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelmux/internal/logging"
)

func TestReserveProducesDistinctUUIDNames(t *testing.T) {
	scope, err := NewScope(t.TempDir(), logging.NewNop())
	if err != nil {
		t.Fatalf("NewScope: %v", err)
	}
	video, err := scope.Reserve("mp4")
	if err != nil {
		t.Fatalf("Reserve video: %v", err)
	}
	audio, err := scope.Reserve(".m4a")
	if err != nil {
		t.Fatalf("Reserve audio: %v", err)
	}
	if video.Path() == audio.Path() {
		t.Fatal("expected distinct artifact paths")
	}
	if !strings.HasSuffix(video.Name(), ".mp4") || !strings.HasSuffix(audio.Name(), ".m4a") {
		t.Fatalf("unexpected extensions: %s %s", video.Name(), audio.Name())
	}
	if !IsArtifactName(video.Name()) {
		t.Fatalf("expected uuid artifact name, got %s", video.Name())
	}
	if _, err := os.Stat(video.Path()); !os.IsNotExist(err) {
		t.Fatal("Reserve must not create the file")
	}
}

func TestReleaseRemovesFilesAndToleratesMissing(t *testing.T) {
	dir := t.TempDir()
	scope, err := NewScope(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("NewScope: %v", err)
	}
	written, _ := scope.Reserve("mp4")
	if err := os.WriteFile(written.Path(), []byte("data"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if _, err := scope.Reserve("m4a"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	scope.Release()
	scope.Release()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty temp dir, found %d entries", len(entries))
	}
	if _, err := scope.Reserve("mp4"); err == nil {
		t.Fatal("expected Reserve after Release to fail")
	}
}

func TestNewScopeRejectsEmptyDir(t *testing.T) {
	if _, err := NewScope("  ", nil); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOnlyOldArtifacts(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "0b6f5a4e-2f59-4c62-9d43-5a0c4f0f6e11.mp4")
	recent := filepath.Join(dir, "5a7d2c1b-8e2f-4a7b-9c0d-1e2f3a4b5c6d.m4a")
	foreign := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, recent, foreign} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	for _, path := range []string{old, foreign} {
		if err := os.Chtimes(path, oldTime, oldTime); err != nil {
			t.Fatalf("set old time: %v", err)
		}
	}

	result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != old {
		t.Fatalf("expected only %s removed, got %v", old, result.Removed)
	}
	if _, err := os.Stat(recent); err != nil {
		t.Error("recent artifact should still exist")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("non-artifact file should still exist")
	}
}
