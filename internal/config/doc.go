// Package config loads, normalizes, and validates animeapi configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file, and honours ANIMEAPI_*
// environment overrides plus the REDIS_URL fallback. The Config type
// centralizes every knob the pipeline and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
