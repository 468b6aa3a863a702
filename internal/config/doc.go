// SPDX-License-Identifier: MPL-2.0

// Package config owns the `downloading` configuration section: its model, its
// validation, and the hooks run when configuration is loaded, saved, or
// created for the first time.
//
// Files are loaded with Viper from ~/.config/dlconfig/config.cue (or the XDG,
// macOS, or Windows equivalent). CUE files are checked against the embedded
// config_schema.cue; YAML, TOML and JSON files are accepted as well, and any
// key can be overridden with a DLCONFIG_ environment variable.
//
// Validation never returns an error. Every problem found is reported as a
// message in a ValidationResult so one pass shows all of them. Validating a
// torrent black-hole folder that does not exist creates it.
package config
