// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/omodkit/omodkit/pkg/fspath"
	"github.com/omodkit/omodkit/pkg/omod"
	"github.com/omodkit/omodkit/pkg/types"
)

var (
	// ErrInvalidProject is the sentinel error wrapped by InvalidProjectError.
	ErrInvalidProject = errors.New("invalid project")
	// ErrInvalidProjectField is the sentinel error wrapped by InvalidProjectFieldError.
	ErrInvalidProjectField = errors.New("invalid project field")
)

type (
	// InvalidProjectError is returned when a Project has invalid fields.
	// It wraps ErrInvalidProject for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidProjectError struct {
		FieldErrors []error
	}

	// InvalidProjectFieldError describes one rejected project setting.
	InvalidProjectFieldError struct {
		Field  string
		Reason string
	}

	// Project holds the settings of one module build, read from omod.cue.
	// Relative paths are resolved against Dir.
	Project struct {
		// Dir is the project root. It is not read from the file.
		Dir string `json:"-" mapstructure:"-"`

		Name       string `json:"name,omitempty" mapstructure:"name"`
		Classifier string `json:"classifier,omitempty" mapstructure:"classifier"`

		ClassesDir string `json:"classes_dir,omitempty" mapstructure:"classes_dir"`
		OutputDir  string `json:"output_dir,omitempty" mapstructure:"output_dir"`
		// StagingDir defaults to <OutputDir>/<Name> when empty.
		StagingDir string `json:"staging_dir,omitempty" mapstructure:"staging_dir"`

		PrimaryArtifact bool   `json:"primary_artifact,omitempty" mapstructure:"primary_artifact"`
		ExistingPrimary string `json:"existing_primary,omitempty" mapstructure:"existing_primary"`

		ValidateFormat     bool   `json:"validate_format,omitempty" mapstructure:"validate_format"`
		BundleDependencies bool   `json:"bundle_dependencies,omitempty" mapstructure:"bundle_dependencies"`
		LibDir             string `json:"lib_dir,omitempty" mapstructure:"lib_dir"`
		ConfigFile         string `json:"config_file,omitempty" mapstructure:"config_file"`
		// DependenciesFile is the TOML list of resolved dependencies.
		DependenciesFile string `json:"dependencies_file,omitempty" mapstructure:"dependencies_file"`

		Verify  VerifyConfig  `json:"verify,omitempty" mapstructure:"verify"`
		Archive ArchiveConfig `json:"archive,omitempty" mapstructure:"archive"`
	}

	// VerifyConfig controls the verification phase.
	VerifyConfig struct {
		Enabled      bool   `json:"enabled,omitempty" mapstructure:"enabled"`
		WebappTarget string `json:"webapp_target,omitempty" mapstructure:"webapp_target"`
	}

	// ArchiveConfig controls how the archive is written.
	ArchiveConfig struct {
		Compress         bool           `json:"compress,omitempty" mapstructure:"compress"`
		CompressionLevel int            `json:"compression_level,omitempty" mapstructure:"compression_level"`
		Manifest         ManifestConfig `json:"manifest,omitempty" mapstructure:"manifest"`
	}

	// ManifestConfig lists the extra META-INF/MANIFEST.MF headers.
	ManifestConfig struct {
		MainClass             string            `json:"main_class,omitempty" mapstructure:"main_class"`
		AddDefaultEntries     bool              `json:"add_default_entries,omitempty" mapstructure:"add_default_entries"`
		ImplementationTitle   string            `json:"implementation_title,omitempty" mapstructure:"implementation_title"`
		ImplementationVersion string            `json:"implementation_version,omitempty" mapstructure:"implementation_version"`
		ImplementationVendor  string            `json:"implementation_vendor,omitempty" mapstructure:"implementation_vendor"`
		Entries               map[string]string `json:"entries,omitempty" mapstructure:"entries"`
	}
)

// DefaultProject returns the built-in project settings.
func DefaultProject() *Project {
	return &Project{
		ClassesDir:         filepath.Join("target", "classes"),
		OutputDir:          "target",
		PrimaryArtifact:    true,
		ValidateFormat:     true,
		BundleDependencies: true,
		LibDir:             omod.DefaultLibDir,
		ConfigFile:         omod.DefaultDescriptorPath,
		DependenciesFile:   DefaultDependenciesFile,
		Verify: VerifyConfig{
			Enabled:      true,
			WebappTarget: omod.DefaultWebappTarget,
		},
		Archive: ArchiveConfig{
			Compress:         true,
			CompressionLevel: -1,
		},
	}
}

// Error implements the error interface for InvalidProjectError.
func (e *InvalidProjectError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid project: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidProject for errors.Is() compatibility.
func (e *InvalidProjectError) Unwrap() error { return ErrInvalidProject }

// Error implements the error interface for InvalidProjectFieldError.
func (e *InvalidProjectFieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidProjectField for errors.Is() compatibility.
func (e *InvalidProjectFieldError) Unwrap() error { return ErrInvalidProjectField }

// IsValid returns whether the Project has valid fields. The schema already
// constrains values read from omod.cue; this also covers environment and
// flag overrides.
func (p Project) IsValid() (bool, []error) {
	var errs []error
	field := func(name, reason string) {
		errs = append(errs, &InvalidProjectFieldError{Field: name, Reason: reason})
	}

	if strings.ContainsAny(p.Name, `/\`) {
		field("name", "must not contain path separators")
	}
	for _, f := range [][2]string{
		{"classes_dir", p.ClassesDir},
		{"output_dir", p.OutputDir},
		{"lib_dir", p.LibDir},
		{"config_file", p.ConfigFile},
		{"verify.webapp_target", p.Verify.WebappTarget},
	} {
		if strings.TrimSpace(f[1]) == "" {
			field(f[0], "must not be empty")
		}
	}
	if p.Archive.CompressionLevel < -1 || p.Archive.CompressionLevel > 9 {
		field("archive.compression_level", fmt.Sprintf("%d is outside -1..9", p.Archive.CompressionLevel))
	}

	if len(errs) > 0 {
		return false, []error{&InvalidProjectError{FieldErrors: errs}}
	}
	return true, nil
}

// Resolve returns path made absolute against the project root.
func (p *Project) Resolve(path string) types.FilesystemPath {
	if path == "" || filepath.IsAbs(path) {
		return types.FilesystemPath(path)
	}
	return fspath.JoinStr(types.FilesystemPath(p.Dir), path)
}

// StagingPath returns the exploded module directory.
func (p *Project) StagingPath() types.FilesystemPath {
	if p.StagingDir != "" {
		return p.Resolve(p.StagingDir)
	}
	return fspath.JoinStr(p.Resolve(p.OutputDir), p.Name)
}

// DependenciesPath returns the dependency list location, or "" when the
// project does not use one.
func (p *Project) DependenciesPath() types.FilesystemPath {
	return p.Resolve(p.DependenciesFile)
}

// BuildContext converts the project into packaging inputs.
func (p *Project) BuildContext(deps []omod.Artifact) omod.BuildContext {
	return omod.BuildContext{
		ClassesDir:         p.Resolve(p.ClassesDir),
		StagingDir:         p.StagingPath(),
		OutputDir:          p.Resolve(p.OutputDir),
		Name:               p.Name,
		Classifier:         p.Classifier,
		PrimaryArtifact:    p.PrimaryArtifact,
		ExistingPrimary:    p.Resolve(p.ExistingPrimary),
		ValidateFormat:     p.ValidateFormat,
		BundleDependencies: p.BundleDependencies,
		LibDir:             p.LibDir,
		DescriptorPath:     p.ConfigFile,
		Dependencies:       deps,
		Archive: omod.ArchiveConfig{
			Compress:         p.Archive.Compress,
			CompressionLevel: p.Archive.CompressionLevel,
			Manifest: omod.ManifestConfig{
				MainClass:             p.Archive.Manifest.MainClass,
				AddDefaultEntries:     p.Archive.Manifest.AddDefaultEntries,
				ImplementationTitle:   p.Archive.Manifest.ImplementationTitle,
				ImplementationVersion: p.Archive.Manifest.ImplementationVersion,
				ImplementationVendor:  p.Archive.Manifest.ImplementationVendor,
				Entries:               p.Archive.Manifest.Entries,
			},
		},
	}
}

// VerifyOptions converts the project into verification inputs for the
// staging directory.
func (p *Project) VerifyOptions() omod.VerifyOptions {
	return omod.VerifyOptions{
		Enabled:        p.Verify.Enabled,
		StagingDir:     p.StagingPath(),
		DescriptorPath: p.ConfigFile,
		WebappTarget:   p.Verify.WebappTarget,
	}
}
