// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"github.com/omodkit/omodkit/pkg/types"
)

// DefaultCreatedBy is the Created-By manifest value when none is configured.
const DefaultCreatedBy = "omodkit"

type (
	// Archiver turns a staging directory into a single archive file.
	Archiver interface {
		CreateArchive(stagingDir, archiveFile types.FilesystemPath, cfg ArchiveConfig) error
	}

	// ZipArchiver writes jar-compatible ZIP archives: a META-INF/MANIFEST.MF
	// entry first, followed by the staging tree in lexical order.
	ZipArchiver struct {
		// CreatedBy is written to the Created-By manifest header.
		CreatedBy string
		// Observer receives per-entry debug messages; may be nil.
		Observer Observer
	}
)

// NewZipArchiver returns a ZipArchiver reporting to obs.
func NewZipArchiver(createdBy string, obs Observer) *ZipArchiver {
	if createdBy == "" {
		createdBy = DefaultCreatedBy
	}
	return &ZipArchiver{CreatedBy: createdBy, Observer: obs}
}

// CreateArchive writes every file and directory under stagingDir into
// archiveFile, creating the output directory if needed. A partially written
// archive is removed on failure.
func (z *ZipArchiver) CreateArchive(stagingDir, archiveFile types.FilesystemPath, cfg ArchiveConfig) (err error) {
	obs := observerOrNop(z.Observer)

	createdBy := z.CreatedBy
	if createdBy == "" {
		createdBy = DefaultCreatedBy
	}
	manifest, err := buildManifest(cfg.Manifest, createdBy)
	if err != nil {
		return err
	}

	absArchive, err := filepath.Abs(string(archiveFile))
	if err != nil {
		return fmt.Errorf("failed to resolve archive path: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(absArchive), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	zipFile, err := os.Create(absArchive)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(absArchive) // Best-effort cleanup of the partial archive
		}
	}()
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zipWriter := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	level := cfg.CompressionLevel
	if _, levelErr := flate.NewWriter(io.Discard, level); levelErr != nil {
		return fmt.Errorf("invalid compression level %d: %w", level, levelErr)
	}
	zipWriter.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	method := zip.Store
	if cfg.Compress {
		method = zip.Deflate
	}

	if _, err = zipWriter.Create(manifestDir); err != nil {
		return fmt.Errorf("failed to create directory entry: %w", err)
	}
	mfWriter, err := zipWriter.CreateHeader(&zip.FileHeader{Name: manifestPath, Method: method})
	if err != nil {
		return fmt.Errorf("failed to create manifest entry: %w", err)
	}
	if _, err = mfWriter.Write(manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	err = filepath.WalkDir(string(stagingDir), func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, relErr := filepath.Rel(string(stagingDir), path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		if relPath == "." {
			return nil
		}
		entryName := filepath.ToSlash(relPath)

		if d.IsDir() {
			if entryName+"/" == manifestDir {
				return nil
			}
			if _, createErr := zipWriter.Create(entryName + "/"); createErr != nil {
				return fmt.Errorf("failed to create directory entry: %w", createErr)
			}
			return nil
		}

		if entryName == manifestPath {
			obs.Debug("skipping staged manifest; a generated one is written instead", "path", entryName)
			return nil
		}
		if absPath, absErr := filepath.Abs(path); absErr == nil && absPath == absArchive {
			return nil
		}

		obs.Debug("adding archive entry", "entry", entryName)
		return addZipEntry(zipWriter, path, entryName, d, method)
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", stagingDir, err)
	}

	return nil
}

// addZipEntry streams one file into the archive.
func addZipEntry(zw *zip.Writer, path, entryName string, d fs.DirEntry, method uint16) (err error) {
	fileInfo, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	header, err := zip.FileInfoHeader(fileInfo)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = entryName
	header.Method = method

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create ZIP entry: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(writer, f); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	return nil
}
