// Package staging owns the temporary files a merge request downloads into and
// produces.
//
// Each Artifact is a uuid-named file in the configured temp directory that
// belongs to exactly one request. A Scope collects the artifacts reserved for
// a request and removes all of them on Release, which callers defer so cleanup
// runs on every exit path. CleanStale is an operator tool for sweeping files
// left behind by a crashed process; it is never run automatically.
package staging
