package api

import (
	"reelmux/internal/extract"
	"reelmux/internal/logging"
)

// ExtractRequest is the body accepted by POST /api/extract.
type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractResponse wraps the normalized extraction result with the pair a
// client should hand to /api/merge.
type ExtractResponse struct {
	*extract.Result
	Pair       *extract.Pair `json:"pair,omitempty"`
	NeedsMerge bool          `json:"needs_merge"`
}

// DependencyStatus captures availability of an external binary.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult mirrors a single preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	Bind         string             `json:"bind"`
	LockFilePath string             `json:"lockFilePath"`
	TempDir      string             `json:"tempDir"`
	Providers    []string           `json:"providers"`
	Dependencies []DependencyStatus `json:"dependencies"`
	Checks       []CheckResult      `json:"checks"`
}

// LogStreamResponse is the body of GET /api/logs. Next is passed back as
// since on the following request.
type LogStreamResponse struct {
	Events []logging.LogEvent `json:"events"`
	Next   uint64             `json:"next"`
}
