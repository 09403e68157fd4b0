// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE helpers used to load project files.
//
// A project file is validated against an embedded schema definition and
// decoded into a generic map so that it can be merged over defaults:
//
//	//go:embed project_schema.cue
//	var schema string
//
//	values, err := cueutil.DecodeMap(schema, data, "#Project", "omod.cue")
//	if err != nil {
//	    return err // error carries the offending field path
//	}
//
// Errors are reported as <file>: <field path>: <message>.
package cueutil
