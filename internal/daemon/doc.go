// Package daemon coordinates the long-running reelmux process.
//
// It wraps the echo API router in an http.Server bound to api.bind and holds a
// flock-based lock on <state_dir>/reelmuxd.lock so only one daemon serves a
// given state directory. Status combines runtime state with the dependency and
// preflight checks so the API and CLI report the same thing.
//
// Request handling lives in internal/api and the merge/extract packages; the
// daemon only deals with startup, shutdown and status.
package daemon
