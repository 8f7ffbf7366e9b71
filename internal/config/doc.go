// Package config loads, normalizes, and validates reelsmith configuration data.
//
// It supplies repository defaults (including the fixed content prompts),
// expands user paths (including tilde shortcuts), reads TOML files, and
// honours environment fallbacks such as OPENAI_API_KEY, RUNWAY_API_KEY, and
// DATABASE_URL. The Config type centralizes every knob the CLI, API server,
// and pipeline need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
