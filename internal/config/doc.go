// Package config loads, normalizes, and validates the onboard configuration
// from TOML.
//
// Load resolves the config path (explicit flag, then the default user config
// location, then a project-local onboard.toml), overlays the file on top of
// Default(), expands ~ paths, and validates ranges such as the scoring
// factors. An embedded sample_config.toml documents every key and backs the
// `onboard config init` command.
package config
