package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAtomic(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out", "My-Clip.mp4")

	n, err := WriteAtomic(dst, strings.NewReader("VIDEOAUDIO"), 10)
	if err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	if n != 10 {
		t.Fatalf("unexpected byte count %d", n)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "VIDEOAUDIO" {
		t.Fatalf("content mismatch: got %q", got)
	}
	assertNoPartials(t, filepath.Dir(dst))
}

func TestWriteAtomicSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "clip.mp4")

	if _, err := WriteAtomic(dst, strings.NewReader("short"), 99); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected destination to be absent, stat err=%v", err)
	}
	assertNoPartials(t, dir)
}

func TestWriteAtomicUnknownSize(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "clip.mp4")
	if _, err := WriteAtomic(dst, strings.NewReader("abc"), -1); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	first, err := UniquePath(dir, "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if first != filepath.Join(dir, "clip.mp4") {
		t.Fatalf("unexpected first path %q", first)
	}
	if err := os.WriteFile(first, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "clip (1).mp4"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	next, err := UniquePath(dir, "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if next != filepath.Join(dir, "clip (2).mp4") {
		t.Fatalf("unexpected next path %q", next)
	}
}

func assertNoPartials(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".partial") {
			t.Fatalf("leftover partial file %s", entry.Name())
		}
	}
}
