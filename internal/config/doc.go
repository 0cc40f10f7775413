// Package config loads, normalizes, and validates reelmux configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies environment overrides such as
// RAPIDAPI_KEY or FFMPEG_BINARY through cleanenv struct tags. The Config type
// centralizes every knob the daemon and CLI need: where temporary artifacts
// live, which ffmpeg binary performs the remux, and how extraction providers
// are ordered per URL family.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
