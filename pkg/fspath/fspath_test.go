// SPDX-License-Identifier: MPL-2.0

package fspath_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omodkit/omodkit/pkg/fspath"
	"github.com/omodkit/omodkit/pkg/types"
)

func TestJoinStr_MultipleSegments(t *testing.T) {
	t.Parallel()

	got := fspath.JoinStr(types.FilesystemPath("staging"), "lib", "dep.jar")
	want := types.FilesystemPath(filepath.Join("staging", "lib", "dep.jar"))
	if got != want {
		t.Errorf("JoinStr() = %q, want %q", got, want)
	}
}

func TestJoinSlash(t *testing.T) {
	t.Parallel()

	got := fspath.JoinSlash(types.FilesystemPath("staging"), "org/example/Activator.class")
	want := types.FilesystemPath(filepath.Join("staging", "org", "example", "Activator.class"))
	if got != want {
		t.Errorf("JoinSlash() = %q, want %q", got, want)
	}
}

func TestExistsAndIsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "config.xml")
	if err := os.WriteFile(file, []byte("<module/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !fspath.Exists(types.FilesystemPath(file)) {
		t.Error("Exists(file) = false, want true")
	}
	if !fspath.Exists(types.FilesystemPath(dir)) {
		t.Error("Exists(dir) = false, want true")
	}
	if fspath.Exists(types.FilesystemPath(filepath.Join(dir, "missing"))) {
		t.Error("Exists(missing) = true, want false")
	}
	if fspath.IsDir(types.FilesystemPath(file)) {
		t.Error("IsDir(file) = true, want false")
	}
	if !fspath.IsDir(types.FilesystemPath(dir)) {
		t.Error("IsDir(dir) = false, want true")
	}
}

func TestBase(t *testing.T) {
	t.Parallel()

	got := fspath.Base(types.FilesystemPath(filepath.Join("repo", "commons-lang3-3.14.jar")))
	if got != "commons-lang3-3.14.jar" {
		t.Errorf("Base() = %q, want %q", got, "commons-lang3-3.14.jar")
	}
}
