// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omodkit/omodkit/internal/testutil"
	"github.com/omodkit/omodkit/pkg/types"
)

func stageTree(t *testing.T, files map[string]string) types.FilesystemPath {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "staging")
	testutil.MustMkdirAll(t, dir, 0o755)
	testutil.WriteTree(t, dir, files)
	return types.FilesystemPath(dir)
}

func TestZipArchiver_Entries(t *testing.T) {
	t.Parallel()

	staging := stageTree(t, map[string]string{
		"config.xml":          "<module/>",
		"org/example/A.class": "cafebabe",
		"lib/dep.jar":         "jar",
		"web/module/":         "",
	})
	archive := types.FilesystemPath(filepath.Join(t.TempDir(), "out", "m.omod"))
	obs := &recordingObserver{}

	err := NewZipArchiver("", obs).CreateArchive(staging, archive, ArchiveConfig{Compress: true, CompressionLevel: -1})
	require.NoError(t, err)

	entries := testutil.ZipEntries(t, string(archive))
	require.GreaterOrEqual(t, len(entries), 2)
	assert.Equal(t, []string{"META-INF/", "META-INF/MANIFEST.MF"}, entries[:2])
	assert.ElementsMatch(t, []string{
		"META-INF/", "META-INF/MANIFEST.MF",
		"config.xml",
		"lib/", "lib/dep.jar",
		"org/", "org/example/", "org/example/A.class",
		"web/", "web/module/",
	}, entries)

	assert.Equal(t, "cafebabe", testutil.ZipEntry(t, string(archive), "org/example/A.class"))
	assert.Contains(t, testutil.ZipEntry(t, string(archive), manifestPath), "Created-By: omodkit\r\n")
	assert.True(t, obs.contains("adding archive entry"))
}

func TestZipArchiver_CompressionMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      ArchiveConfig
		expected uint16
	}{
		{"deflate", ArchiveConfig{Compress: true, CompressionLevel: 9}, zip.Deflate},
		{"store", ArchiveConfig{Compress: false}, zip.Store},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			staging := stageTree(t, map[string]string{"config.xml": "<module><id>x</id></module>"})
			archive := types.FilesystemPath(filepath.Join(t.TempDir(), "m.omod"))
			require.NoError(t, NewZipArchiver("", nil).CreateArchive(staging, archive, tt.cfg))

			r, err := zip.OpenReader(string(archive))
			require.NoError(t, err)
			defer testutil.MustClose(t, r)

			for _, f := range r.File {
				if f.Name == "config.xml" {
					assert.Equal(t, tt.expected, f.Method)
					return
				}
			}
			t.Fatal("config.xml not archived")
		})
	}
}

func TestZipArchiver_InvalidCompressionLevel(t *testing.T) {
	t.Parallel()

	staging := stageTree(t, map[string]string{"config.xml": "<module/>"})
	archive := types.FilesystemPath(filepath.Join(t.TempDir(), "m.omod"))

	err := NewZipArchiver("", nil).CreateArchive(staging, archive, ArchiveConfig{Compress: true, CompressionLevel: 42})
	require.Error(t, err)
	assert.NoFileExists(t, string(archive), "partial archive must be removed")
}

func TestZipArchiver_SkipsStagedManifest(t *testing.T) {
	t.Parallel()

	staging := stageTree(t, map[string]string{
		"config.xml":           "<module/>",
		"META-INF/MANIFEST.MF": "Manifest-Version: 0.9\r\n",
		"META-INF/LICENSE":     "MPL",
	})
	archive := types.FilesystemPath(filepath.Join(t.TempDir(), "m.omod"))
	obs := &recordingObserver{}

	require.NoError(t, NewZipArchiver("builder", obs).CreateArchive(staging, archive, ArchiveConfig{}))

	entries := testutil.ZipEntries(t, string(archive))
	count := 0
	for _, e := range entries {
		if e == manifestPath || e == manifestDir {
			count++
		}
	}
	assert.Equal(t, 2, count, "META-INF/ and its manifest appear exactly once")
	assert.Contains(t, entries, "META-INF/LICENSE")
	assert.Contains(t, testutil.ZipEntry(t, string(archive), manifestPath), "Created-By: builder")
	assert.True(t, obs.contains("skipping staged manifest"))
}

func TestZipArchiver_ManifestErrorWritesNothing(t *testing.T) {
	t.Parallel()

	staging := stageTree(t, map[string]string{"config.xml": "<module/>"})
	archive := types.FilesystemPath(filepath.Join(t.TempDir(), "m.omod"))
	cfg := ArchiveConfig{Manifest: ManifestConfig{Entries: map[string]string{"Created-By": "x"}}}

	err := NewZipArchiver("", nil).CreateArchive(staging, archive, cfg)
	assert.ErrorIs(t, err, ErrManifest)
	assert.NoFileExists(t, string(archive))
}

func TestZipArchiver_MissingStagingDir(t *testing.T) {
	t.Parallel()

	archive := types.FilesystemPath(filepath.Join(t.TempDir(), "m.omod"))
	staging := types.FilesystemPath(filepath.Join(t.TempDir(), "absent"))

	err := NewZipArchiver("", nil).CreateArchive(staging, archive, ArchiveConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, string(archive))
}

func TestExtract_RoundTrip(t *testing.T) {
	t.Parallel()

	tree := fullModuleTree()
	staging := stageTree(t, tree)
	archive := types.FilesystemPath(filepath.Join(t.TempDir(), "m.omod"))
	require.NoError(t, NewZipArchiver("", nil).CreateArchive(staging, archive, ArchiveConfig{Compress: true, CompressionLevel: -1}))

	dest := types.FilesystemPath(filepath.Join(t.TempDir(), "extracted"))
	require.NoError(t, Extract(archive, dest))

	want := append(testutil.ListFiles(t, string(staging)), manifestPath)
	assert.ElementsMatch(t, want, testutil.ListFiles(t, string(dest)))
	assert.NoError(t, Verify(DefaultVerifyOptions(dest), nil))
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.omod")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escaped.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("boom"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := filepath.Join(dir, "out")
	err = Extract(types.FilesystemPath(archive), types.FilesystemPath(dest))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "escaped.txt"))
}

func TestExtract_MissingArchive(t *testing.T) {
	t.Parallel()

	err := Extract(types.FilesystemPath(filepath.Join(t.TempDir(), "none.omod")), types.FilesystemPath(t.TempDir()))
	assert.Error(t, err)
}
