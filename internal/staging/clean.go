package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelmux/internal/logging"
)

// CleanStaleResult contains the outcome of a stale artifact sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a file path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes artifact files in dir older than maxAge. Only files
// whose stem is a uuid are considered, so unrelated files in a shared temp
// directory are left alone.
func CleanStale(ctx context.Context, dir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}
	logger = logging.NewComponentLogger(logger, "staging")

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.IsDir() || !IsArtifactName(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logger.Warn("failed to remove stale artifact", logging.String("path", path), logging.Error(err))
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale artifact",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
		)
	}
	return result
}

// IsArtifactName reports whether name looks like <uuid>[.ext].
func IsArtifactName(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	_, err := uuid.Parse(stem)
	return err == nil && len(stem) == 36
}
