// Package textutil provides text helpers shared by the merge pipeline, the
// extraction providers, and the CLI.
//
// The primary use cases are:
//   - Turning free-form titles into filesystem and header safe file names
//   - Building display labels from host names and provider strings
package textutil
