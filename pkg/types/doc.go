// SPDX-License-Identifier: MPL-2.0

// Package types defines the value types shared by the omodkit packages:
// filesystem paths, fully qualified class names, dependency scopes and process
// exit codes. These types carry validation but have no domain dependencies.
//
// This package is a leaf dependency: it imports only the standard library.
package types
