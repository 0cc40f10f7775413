package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "FFmpeg", Command: present},
		{Name: "FFprobe", Command: "clearly-not-present-binary", Optional: true},
		{Name: "Empty", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to resolve, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be reported, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for empty command: %q", results[2].Detail)
	}
}

func TestMissingRequiredSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "FFprobe", Optional: true},
		{Name: "Other"},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "Other" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}

func TestLookupOverride(t *testing.T) {
	original := Lookup
	t.Cleanup(func() { Lookup = original })
	Lookup = func(name string) (string, error) { return "/opt/bin/" + name, nil }

	results := CheckBinaries([]Requirement{{Name: "FFmpeg", Command: "ffmpeg"}})
	if results[0].Path != "/opt/bin/ffmpeg" {
		t.Fatalf("expected overridden lookup path, got %q", results[0].Path)
	}
}
