// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath and os.Stat that
// accept and return types.FilesystemPath, so callers keep typed paths from the
// configuration boundary down to the filesystem calls.
package fspath

import (
	"os"
	"path/filepath"

	"github.com/omodkit/omodkit/pkg/types"
)

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments. Use this when joining a typed path with literal constants
// (e.g., "lib") or OS-provided file names.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// JoinSlash joins a slash-separated relative path (as found in descriptors
// and archive entries) onto a typed base path.
func JoinSlash(base types.FilesystemPath, rel string) types.FilesystemPath {
	return types.FilesystemPath(filepath.Join(string(base), filepath.FromSlash(rel)))
}

// Base wraps filepath.Base for FilesystemPath.
func Base(p types.FilesystemPath) string {
	return filepath.Base(string(p))
}

// Exists reports whether anything (file or directory) exists at p.
func Exists(p types.FilesystemPath) bool {
	_, err := os.Stat(string(p))
	return err == nil
}

// IsDir reports whether p exists and is a directory.
func IsDir(p types.FilesystemPath) bool {
	info, err := os.Stat(string(p))
	return err == nil && info.IsDir()
}
