// Package services defines shared utilities consumed by the merge pipeline,
// the extraction providers, and the HTTP API.
//
// Key responsibilities:
//   - Context helpers that stamp request identifiers and step names for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (bad input vs download vs mux) with errors.Is.
//
// Use these helpers when wiring new request logic so error handling and
// observability stay uniform across packages.
package services
