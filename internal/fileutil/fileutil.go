package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteAtomic streams r into dst through a temporary sibling file and renames
// it into place. When size is non-negative the byte count must match; on any
// failure the partial file is removed and dst is left untouched.
func WriteAtomic(dst string, r io.Reader, size int64) (int64, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.partial")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, err
	}
	if size >= 0 && written != size {
		return written, fmt.Errorf("copy size mismatch: expected %d bytes, copied %d bytes", size, written)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return written, err
	}
	if err := tmp.Close(); err != nil {
		return written, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return written, err
	}
	committed = true
	return written, nil
}

// UniquePath returns dir/name, or dir/"stem (N).ext" with the lowest N that
// does not exist yet.
func UniquePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		if i > 9999 {
			return "", fmt.Errorf("no free file name for %s in %s", name, dir)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
}
