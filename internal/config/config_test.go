// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omodkit/omodkit/internal/issue"
	"github.com/omodkit/omodkit/internal/testutil"
	"github.com/omodkit/omodkit/pkg/types"
)

func load(t *testing.T, opts LoadOptions) (*Project, string) {
	t.Helper()
	project, source, err := NewProvider().LoadWithSource(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return project, source
}

func writeProject(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, ProjectFileName), content)
	return dir
}

func TestDefaultProject(t *testing.T) {
	t.Parallel()

	p := DefaultProject()
	if p.ClassesDir != filepath.Join("target", "classes") {
		t.Errorf("ClassesDir = %q", p.ClassesDir)
	}
	if p.OutputDir != "target" || p.LibDir != "lib" || p.ConfigFile != "config.xml" {
		t.Errorf("unexpected path defaults: %+v", p)
	}
	if !p.PrimaryArtifact || !p.ValidateFormat || !p.BundleDependencies {
		t.Error("packaging switches should default to true")
	}
	if !p.Verify.Enabled || p.Verify.WebappTarget != "web/module" {
		t.Errorf("Verify = %+v", p.Verify)
	}
	if !p.Archive.Compress || p.Archive.CompressionLevel != -1 {
		t.Errorf("Archive = %+v", p.Archive)
	}
	if valid, errs := p.IsValid(); !valid {
		t.Errorf("defaults should be valid: %v", errs)
	}
}

func TestLoad_DefaultsWithoutProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	project, source := load(t, LoadOptions{Dir: types.FilesystemPath(dir)})

	if source != "" {
		t.Errorf("source = %q, want none", source)
	}
	if project.Dir != dir {
		t.Errorf("Dir = %q, want %q", project.Dir, dir)
	}
	if project.OutputDir != "target" || !project.Verify.Enabled {
		t.Errorf("expected defaults, got %+v", project)
	}
}

func TestLoad_ProjectFile(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, `
name: "reporting-1.0"
classifier: "dev"
output_dir: "build"
bundle_dependencies: false
verify: enabled: false
archive: {
	compression_level: 9
	manifest: {
		add_default_entries: true
		implementation_title: "Reporting"
		entries: "Build-Jdk": "21"
	}
}
`)

	project, source := load(t, LoadOptions{Dir: types.FilesystemPath(dir)})

	if source != filepath.Join(dir, ProjectFileName) {
		t.Errorf("source = %q", source)
	}
	if project.Name != "reporting-1.0" || project.Classifier != "dev" || project.OutputDir != "build" {
		t.Errorf("file values not applied: %+v", project)
	}
	if project.BundleDependencies || project.Verify.Enabled {
		t.Error("booleans from file not applied")
	}
	if !project.ValidateFormat || project.LibDir != "lib" {
		t.Error("unset fields should keep defaults")
	}
	if project.Archive.CompressionLevel != 9 || !project.Archive.Compress {
		t.Errorf("Archive = %+v", project.Archive)
	}
	if got := project.Archive.Manifest.Entries["Build-Jdk"]; got != "21" {
		t.Errorf("manifest entry case must be preserved, entries = %v", project.Archive.Manifest.Entries)
	}
	if project.Archive.Manifest.ImplementationTitle != "Reporting" {
		t.Errorf("Manifest = %+v", project.Archive.Manifest)
	}
}

func TestLoad_ExplicitProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "custom.cue")
	testutil.MustWriteFile(t, path, `name: "custom"`)

	project, source := load(t, LoadOptions{ProjectFile: types.FilesystemPath(path)})
	if source != path || project.Name != "custom" {
		t.Errorf("source = %q, name = %q", source, project.Name)
	}
	if project.Dir != filepath.Dir(path) {
		t.Errorf("Dir = %q, want the project file's directory", project.Dir)
	}
}

func TestLoad_ExplicitProjectFileMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.cue")
	_, err := NewProvider().Load(context.Background(), LoadOptions{ProjectFile: types.FilesystemPath(path)})
	if err == nil {
		t.Fatal("expected error")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %T, want *issue.ActionableError", err)
	}
	if ae.Issue != issue.ProjectLoadFailedId || len(ae.Suggestions) == 0 {
		t.Errorf("ActionableError = %+v", ae)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{"syntax error", `name: "x`, ProjectFileName},
		{"unknown field", `colour: "blue"`, "colour"},
		{"wrong type", `validate_format: "yes"`, "validate_format"},
		{"level out of range", `archive: compression_level: 12`, "compression_level"},
		{"name with separator", `name: "a/b"`, "name"},
		{"invalid manifest header", `archive: manifest: entries: "Bad Header": "x"`, "entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeProject(t, tt.content)
			_, err := NewProvider().Load(context.Background(), LoadOptions{Dir: types.FilesystemPath(dir)})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := writeProject(t, `
name: "from-file"
archive: compress: true
`)
	t.Setenv("OMODKIT_NAME", "from-env")
	t.Setenv("OMODKIT_ARCHIVE_COMPRESS", "false")
	t.Setenv("OMODKIT_VERIFY_WEBAPP_TARGET", "web/legacy")

	project, _ := load(t, LoadOptions{Dir: types.FilesystemPath(dir)})

	if project.Name != "from-env" {
		t.Errorf("Name = %q, want from-env", project.Name)
	}
	if project.Archive.Compress {
		t.Error("OMODKIT_ARCHIVE_COMPRESS=false should win over the file")
	}
	if project.Verify.WebappTarget != "web/legacy" {
		t.Errorf("WebappTarget = %q", project.Verify.WebappTarget)
	}
}

func TestLoad_OverridesWinOverEnvironment(t *testing.T) {
	dir := writeProject(t, `name: "from-file"`)
	t.Setenv("OMODKIT_NAME", "from-env")

	project, _ := load(t, LoadOptions{
		Dir:       types.FilesystemPath(dir),
		Overrides: map[string]any{"name": "from-flag", "archive.compression_level": 3},
	})

	if project.Name != "from-flag" {
		t.Errorf("Name = %q, want from-flag", project.Name)
	}
	if project.Archive.CompressionLevel != 3 {
		t.Errorf("CompressionLevel = %d, want 3", project.Archive.CompressionLevel)
	}
}

func TestLoad_InvalidOverride(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		Dir:       types.FilesystemPath(t.TempDir()),
		Overrides: map[string]any{"lib_dir": "  "},
	})
	if !errors.Is(err, ErrInvalidProject) {
		t.Fatalf("error = %v, want ErrInvalidProject", err)
	}
	var fieldErr *InvalidProjectError
	if !errors.As(err, &fieldErr) || len(fieldErr.FieldErrors) != 1 {
		t.Errorf("expected one field error, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProvider().Load(ctx, LoadOptions{Dir: types.FilesystemPath(t.TempDir())})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	original := DefaultProject()
	original.Name = "reporting-1.0"
	original.Classifier = "dev"
	original.StagingDir = "build/stage"
	original.Archive.CompressionLevel = 6
	original.Archive.Manifest.MainClass = "org.example.Main"
	original.Archive.Manifest.ImplementationVendor = "Example"
	original.Archive.Manifest.Entries = map[string]string{"Build-Jdk": "21", "X-Flag": "on"}

	generated := GenerateCUE(original)
	if strings.Index(generated, `"Build-Jdk"`) > strings.Index(generated, `"X-Flag"`) {
		t.Errorf("manifest entries are not written sorted:\n%s", generated)
	}

	dir := writeProject(t, generated)
	loaded, _ := load(t, LoadOptions{Dir: types.FilesystemPath(dir)})

	loaded.Dir = ""
	if loaded.Name != original.Name || loaded.Classifier != original.Classifier ||
		loaded.StagingDir != original.StagingDir ||
		loaded.Archive.CompressionLevel != 6 ||
		loaded.Archive.Manifest.MainClass != original.Archive.Manifest.MainClass ||
		loaded.Archive.Manifest.ImplementationVendor != "Example" ||
		len(loaded.Archive.Manifest.Entries) != 2 ||
		loaded.Archive.Manifest.Entries["X-Flag"] != "on" {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, original)
	}
	if filepath.ToSlash(loaded.ClassesDir) != "target/classes" {
		t.Errorf("ClassesDir = %q", loaded.ClassesDir)
	}
}

func TestInitProject(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "module")
	path, err := InitProject(types.FilesystemPath(dir), "reporting-1.0", false)
	if err != nil {
		t.Fatalf("InitProject() error = %v", err)
	}
	data, err := os.ReadFile(string(path))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `name: "reporting-1.0"`) {
		t.Errorf("project file missing name:\n%s", data)
	}

	if _, err := InitProject(types.FilesystemPath(dir), "other", false); !errors.Is(err, os.ErrExist) {
		t.Errorf("second InitProject() error = %v, want os.ErrExist", err)
	}
	if _, err := InitProject(types.FilesystemPath(dir), "other", true); err != nil {
		t.Errorf("forced InitProject() error = %v", err)
	}

	loaded, _ := load(t, LoadOptions{Dir: types.FilesystemPath(dir)})
	if loaded.Name != "other" {
		t.Errorf("Name = %q, want other", loaded.Name)
	}
}
