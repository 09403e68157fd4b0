// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the omodkit CLI.
//
// The commands mirror the two build phases: package assembles the module
// directory and writes the .omod archive, verify checks the exploded module
// against its descriptor, and build runs both in order (optionally again on
// every input change with --watch). Settings come from
// omod.cue (see internal/config) and can be overridden per invocation with
// flags.
package cmd
