// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"github.com/omodkit/omodkit/pkg/fspath"
	"github.com/omodkit/omodkit/pkg/types"
)

const (
	// PackagingExtension is the file extension of a module archive.
	PackagingExtension = "omod"
	// DefaultLibDir is the staging subdirectory for bundled dependencies.
	DefaultLibDir = "lib"
	// DefaultDescriptorPath is the descriptor location relative to the staging root.
	DefaultDescriptorPath = "config.xml"
	// DefaultWebappTarget is the web resources location relative to the staging root.
	DefaultWebappTarget = "web/module"
)

type (
	// Artifact is a resolved dependency supplied by the host build.
	Artifact struct {
		// ID identifies the artifact in progress messages (e.g. "commons-lang").
		ID string
		// File is the resolved artifact file.
		File types.FilesystemPath
		// Scope is the dependency scope; the zero value means compile.
		Scope types.DependencyScope
		// Optional dependencies are never bundled.
		Optional bool
	}

	// ManifestConfig is passed through to the archiver to build
	// META-INF/MANIFEST.MF.
	ManifestConfig struct {
		MainClass string
		// AddDefaultEntries writes the Implementation-* headers below when set.
		AddDefaultEntries     bool
		ImplementationTitle   string
		ImplementationVersion string
		ImplementationVendor  string
		// Entries are extra main-section headers, written sorted by name.
		Entries map[string]string
	}

	// ArchiveConfig controls how the staging tree is compressed.
	ArchiveConfig struct {
		// Compress deflates entries; when false entries are stored.
		Compress bool
		// CompressionLevel is a flate level (-1 default, 0-9).
		CompressionLevel int
		Manifest         ManifestConfig
	}

	// BuildContext is the immutable input to Package. The host owns it.
	BuildContext struct {
		// ClassesDir holds the compiled classes and filtered resources.
		ClassesDir types.FilesystemPath
		// StagingDir is where the exploded module is assembled.
		StagingDir types.FilesystemPath
		// OutputDir receives the archive.
		OutputDir types.FilesystemPath
		// Name is the archive base name (usually artifactId-version).
		Name string
		// Classifier optionally distinguishes a variant archive.
		Classifier string
		// PrimaryArtifact forces the archive to replace the primary output.
		PrimaryArtifact bool
		// ExistingPrimary is the host's current primary output file, if any.
		ExistingPrimary types.FilesystemPath
		// ValidateFormat requires the descriptor to be staged before archiving.
		ValidateFormat bool
		// BundleDependencies copies runtime dependencies into LibDir.
		BundleDependencies bool
		// LibDir is relative to the staging root.
		LibDir string
		// DescriptorPath is relative to the staging root.
		DescriptorPath string
		// Dependencies is the resolved dependency list.
		Dependencies []Artifact
		Archive      ArchiveConfig
	}
)

// DefaultBuildContext returns the defaults for a module named name built
// under buildDir (the host's target directory).
func DefaultBuildContext(buildDir types.FilesystemPath, name string) BuildContext {
	return BuildContext{
		ClassesDir:         fspath.JoinStr(buildDir, "classes"),
		StagingDir:         fspath.JoinStr(buildDir, name),
		OutputDir:          buildDir,
		Name:               name,
		PrimaryArtifact:    true,
		ValidateFormat:     true,
		BundleDependencies: true,
		LibDir:             DefaultLibDir,
		DescriptorPath:     DefaultDescriptorPath,
		Archive: ArchiveConfig{
			Compress:         true,
			CompressionLevel: -1,
		},
	}
}

// libDir returns the configured library subdirectory or the default.
func (bc BuildContext) libDir() string {
	if bc.LibDir == "" {
		return DefaultLibDir
	}
	return bc.LibDir
}

// descriptorPath returns the configured descriptor path or the default.
func (bc BuildContext) descriptorPath() string {
	if bc.DescriptorPath == "" {
		return DefaultDescriptorPath
	}
	return bc.DescriptorPath
}
