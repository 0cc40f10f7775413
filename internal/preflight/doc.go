// Package preflight provides readiness checks for the filesystem paths,
// external binaries and optional services reelmux depends on.
//
// The daemon runs RunAll and CheckSystemDeps once at startup and logs any
// failures; the status endpoint and the "reelmux status" command render the
// same results. Optional collaborators such as the redis extraction cache are
// only checked when enabled in config.
package preflight
