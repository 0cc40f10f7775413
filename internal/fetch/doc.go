// Package fetch downloads remote media into local files.
//
// Requests carry browser-like headers because several CDNs reject unknown
// clients. Redirects are followed by the underlying HTTP client, bodies are
// streamed straight to disk, and an optional byte cap bounds each download.
package fetch
