// Package config loads, normalizes, and validates coursepack configuration.
//
// Configuration is read from TOML (explicit --config path, then
// ~/.config/coursepack/config.toml, then ./coursepack.toml), layered over
// repository defaults. Paths are expanded (including "~") during
// normalization and every section is validated before the config is handed to
// the CLI or the engine.
//
// Package defaults here seed manifest options for builds; individual commands
// may override them with flags.
package config
