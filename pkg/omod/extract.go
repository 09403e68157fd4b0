// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/omodkit/omodkit/pkg/types"
)

// Extract unpacks a module archive into destDir so that a built archive can
// be verified the same way as a staging tree. Entries that would escape
// destDir are rejected.
func Extract(archiveFile, destDir types.FilesystemPath) (err error) {
	absDestDir, err := filepath.Abs(string(destDir))
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %w", err)
	}
	if err = os.MkdirAll(absDestDir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	zipReader, err := zip.OpenReader(string(archiveFile))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		if closeErr := zipReader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, file := range zipReader.File {
		destPath := filepath.Join(absDestDir, filepath.FromSlash(file.Name))

		relPath, relErr := filepath.Rel(absDestDir, destPath)
		if relErr != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			return fmt.Errorf("invalid path in archive: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if mkdirErr := os.MkdirAll(destPath, 0o755); mkdirErr != nil {
				return fmt.Errorf("failed to create directory: %w", mkdirErr)
			}
			continue
		}

		if mkdirErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkdirErr != nil {
			return fmt.Errorf("failed to create parent directory: %w", mkdirErr)
		}
		if extractErr := extractFile(file, destPath); extractErr != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, extractErr)
		}
	}

	return nil
}

// extractFile extracts a single file from the archive.
func extractFile(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // G110: archives are produced by the same build; size limits handled by filesystem
	_, err = io.Copy(destFile, rc)
	return err
}
