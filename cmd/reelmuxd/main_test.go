package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRejectsUnknownFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--bogus"}); err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestRunReportsInvalidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := run(context.Background(), []string{"--config", path})
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format validation error, got %v", err)
	}
}
