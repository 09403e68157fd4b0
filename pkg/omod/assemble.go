// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"fmt"

	"github.com/omodkit/omodkit/pkg/fspath"
	"github.com/omodkit/omodkit/pkg/types"
)

// PackageResult describes a successfully packaged module.
type PackageResult struct {
	// StagingDir is the populated staging tree.
	StagingDir types.FilesystemPath
	// ArchiveFile is the written archive.
	ArchiveFile types.FilesystemPath
	// Bundled lists the dependencies copied into the library directory.
	Bundled []Artifact
	// Attachment is nil when the host's primary output is kept.
	Attachment Attachment
}

// Assemble builds the exploded module under bc.StagingDir: the compiled
// output is copied over the staging tree, then, when bundling is enabled,
// every runtime, non-optional dependency is copied to
// <staging>/<libDir>/<file name>. The staging tree is not cleaned first and
// same-named dependencies overwrite each other. It returns the staging root.
func Assemble(bc BuildContext, obs Observer) (types.FilesystemPath, error) {
	obs = observerOrNop(obs)

	if err := bc.ClassesDir.Validate(); err != nil {
		return "", fmt.Errorf("classes directory: %w", err)
	}
	if err := bc.StagingDir.Validate(); err != nil {
		return "", fmt.Errorf("staging directory: %w", err)
	}

	obs.Debug("building module directory structure", "staging", bc.StagingDir)

	obs.Debug("copying classes to module dir", "classes", bc.ClassesDir)
	if err := copyDirectoryStructure(bc.ClassesDir, bc.StagingDir); err != nil {
		return "", assemblyErr("copy classes", err)
	}

	if !bc.BundleDependencies {
		return bc.StagingDir, nil
	}

	libDir := fspath.JoinStr(bc.StagingDir, bc.libDir())
	obs.Debug("copying dependencies", "lib_dir", bc.libDir())

	for _, dep := range RuntimeArtifacts(bc.Dependencies) {
		obs.Debug("bundling artifact", "artifact", dep.ID, "scope", dep.Scope.Normalized())
		target := fspath.JoinStr(libDir, fspath.Base(dep.File))
		if err := copyFile(dep.File, target); err != nil {
			return "", assemblyErr(fmt.Sprintf("bundle dependency %s", dep.File), err)
		}
	}

	return bc.StagingDir, nil
}

// Package assembles the module, optionally checks that its descriptor was
// staged, writes the archive to TargetFile and decides how the host should
// attach it. A nil archiver selects a ZipArchiver. Any failure aborts
// packaging; nothing is retried.
func Package(bc BuildContext, archiver Archiver, obs Observer) (*PackageResult, error) {
	obs = observerOrNop(obs)
	obs.Info("Packaging module", "name", bc.Name)

	if bc.Name == "" {
		return nil, fmt.Errorf("module name must not be empty")
	}
	if err := bc.OutputDir.Validate(); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}

	if archiver == nil {
		archiver = NewZipArchiver(DefaultCreatedBy, obs)
	}
	archiveFile := TargetFile(bc.OutputDir, bc.Name, bc.Classifier)

	stagingDir, err := Assemble(bc, obs)
	if err != nil {
		return nil, err
	}

	var bundled []Artifact
	if bc.BundleDependencies {
		bundled = RuntimeArtifacts(bc.Dependencies)
	}

	if bc.ValidateFormat {
		if err := checkDescriptorStaged(stagingDir, bc.descriptorPath()); err != nil {
			return nil, err
		}
	}

	obs.Debug("creating archive", "file", archiveFile)
	if err := archiver.CreateArchive(stagingDir, archiveFile, bc.Archive); err != nil {
		return nil, assemblyErr("create archive", err)
	}

	obs.Debug("attaching artifact(s)")
	attachment := decideAttachment(bc, archiveFile)
	switch a := attachment.(type) {
	case SecondaryAttachment:
		obs.Debug("attaching as secondary artifact", "classifier", a.Classifier)
	case PrimaryAttachment:
		obs.Debug("attaching as primary artifact")
	default:
		obs.Debug("keeping existing primary artifact", "file", bc.ExistingPrimary)
	}

	return &PackageResult{
		StagingDir:  stagingDir,
		ArchiveFile: archiveFile,
		Bundled:     bundled,
		Attachment:  attachment,
	}, nil
}

// checkDescriptorStaged fails with IssueDescriptorMissing when the
// descriptor is not present in the staging tree.
func checkDescriptorStaged(stagingDir types.FilesystemPath, descriptorPath string) error {
	if !fspath.Exists(fspath.JoinSlash(stagingDir, descriptorPath)) {
		return &StructureError{Kind: IssueDescriptorMissing, Path: descriptorPath}
	}
	return nil
}
