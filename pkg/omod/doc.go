// SPDX-License-Identifier: MPL-2.0

// Package omod builds and checks deployable module archives (".omod" files).
//
// A module is produced in two sequential steps:
//
//   - Package copies the compiled output into a staging directory, bundles the
//     runtime dependencies under a library subdirectory, writes the staging
//     tree into a single compressed archive with a generated manifest and
//     reports how the archive should be attached to the build outputs.
//   - Verify parses the staged module descriptor (config.xml) and checks that
//     every class and resource it references is present in the staging tree,
//     plus the directory layout required by hosts older than 1.5.0.
//
// The package does no logging of its own. Progress is reported through an
// Observer, which a *log.Logger from charmbracelet/log satisfies.
package omod
