// SPDX-License-Identifier: MPL-2.0

// Package config loads omodkit project settings using Viper with CUE as the
// file format.
//
// Settings are resolved in order of precedence: command-line overrides,
// OMODKIT_* environment variables (dots become underscores, e.g.
// OMODKIT_ARCHIVE_COMPRESS), the project file omod.cue, and built-in
// defaults. The project file is validated against the embedded CUE schema
// (project_schema.cue) before it is merged.
//
// The resolved dependency list handed over by the host build is a separate
// TOML file (dependencies.toml) read by LoadDependencies.
package config
