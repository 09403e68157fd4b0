// SPDX-License-Identifier: MPL-2.0

package types

import "strings"

const (
	// ClassFileExtension is appended to a class name to form its compiled file name.
	ClassFileExtension = ".class"

	packageSeparator = "."
	pathSeparator    = "/"
)

// ClassName is a fully qualified class name such as "org.example.Activator".
// The zero value is the empty name; it still maps to a (never existing) path
// so that an empty reference in a descriptor is reported as missing.
type ClassName string

// String returns the string representation of the ClassName.
func (c ClassName) String() string { return string(c) }

// FilePath converts the class name to the slash-separated path of its compiled
// class file relative to the archive root: every package separator becomes a
// path separator and the class file extension is appended.
func (c ClassName) FilePath() string {
	return strings.ReplaceAll(string(c), packageSeparator, pathSeparator) + ClassFileExtension
}
