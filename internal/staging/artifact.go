package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"reelmux/internal/logging"
	"reelmux/internal/services"
)

// Artifact is a temporary file owned by a single request.
type Artifact struct {
	path string
}

// Path returns the absolute location of the artifact.
func (a *Artifact) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Name returns the base file name of the artifact.
func (a *Artifact) Name() string {
	return filepath.Base(a.Path())
}

// Scope tracks every artifact reserved for one request.
type Scope struct {
	dir    string
	logger *slog.Logger

	mu        sync.Mutex
	artifacts []*Artifact
	released  bool
}

// NewScope creates a scope rooted at dir, creating the directory if needed.
func NewScope(dir string, logger *slog.Logger) (*Scope, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "staging", "scope", "temp directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "staging", "scope", "create temp directory", err)
	}
	return &Scope{dir: dir, logger: logging.NewComponentLogger(logger, "staging")}, nil
}

// Reserve allocates a fresh <uuid>.<ext> path. The file itself is not created.
func (s *Scope) Reserve(ext string) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, fmt.Errorf("staging scope already released")
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	artifact := &Artifact{path: filepath.Join(s.dir, name)}
	s.artifacts = append(s.artifacts, artifact)
	return artifact, nil
}

// Artifacts returns a snapshot of the reserved artifacts.
func (s *Scope) Artifacts() []*Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Artifact(nil), s.artifacts...)
}

// Release removes every reserved artifact. Missing files are ignored and
// other removal failures are logged at debug, never returned. Release is safe
// to call more than once.
func (s *Scope) Release() {
	s.mu.Lock()
	artifacts := s.artifacts
	s.artifacts = nil
	s.released = true
	s.mu.Unlock()

	for _, artifact := range artifacts {
		if err := remove(artifact.path); err != nil {
			s.logger.Debug("temporary file cleanup failed",
				logging.String("path", artifact.path),
				logging.Error(services.Wrap(services.ErrCleanup, "staging", "release", "", err)),
			)
		}
	}
}

func remove(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
