// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The merge pipeline uses it to confirm that a freshly muxed file carries at
// least one video and one audio stream before it is handed to the client.
//
// Primary entry points:
//   - Prober.Inspect: executes ffprobe and returns the parsed Result
//   - Parse: decodes previously captured ffprobe JSON
package ffprobe
