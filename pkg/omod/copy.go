// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/omodkit/omodkit/pkg/types"
)

// copyDirectoryStructure copies every file under src to the same relative
// path under dst, creating directories as needed. Existing files in dst are
// overwritten; nothing in dst is removed.
func copyDirectoryStructure(src, dst types.FilesystemPath) error {
	info, err := os.Stat(string(src))
	if err != nil {
		return fmt.Errorf("source directory %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	return filepath.WalkDir(string(src), func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, relErr := filepath.Rel(string(src), path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		target := filepath.Join(string(dst), relPath)

		if d.IsDir() {
			if mkdirErr := os.MkdirAll(target, 0o755); mkdirErr != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, mkdirErr)
			}
			return nil
		}

		return copyFile(types.FilesystemPath(path), types.FilesystemPath(target))
	})
}

// copyFile copies src to dst, creating dst's parent directories and
// replacing any existing file. The source permission bits are kept.
func copyFile(src, dst types.FilesystemPath) (err error) {
	in, err := os.Open(string(src))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(string(dst)), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	out, err := os.OpenFile(string(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}
