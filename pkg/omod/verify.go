// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"github.com/omodkit/omodkit/pkg/fspath"
	"github.com/omodkit/omodkit/pkg/types"
)

const (
	// LegacyLayoutVersion is compared as a plain string against the declared
	// require_version: versions sorting before it need the legacy web layout.
	LegacyLayoutVersion = "1.5.0"

	portletsDir     = "portlets"
	webResourcesDir = "resources"
)

// VerifyOptions configures Verify.
type VerifyOptions struct {
	// Enabled turns the whole check on; when false Verify always succeeds.
	Enabled bool
	// StagingDir is the module root to check.
	StagingDir types.FilesystemPath
	// DescriptorPath is relative to StagingDir (default config.xml).
	DescriptorPath string
	// WebappTarget is the web resources directory relative to StagingDir
	// (default web/module).
	WebappTarget string
}

// DefaultVerifyOptions returns enabled options with default paths.
func DefaultVerifyOptions(stagingDir types.FilesystemPath) VerifyOptions {
	return VerifyOptions{
		Enabled:        true,
		StagingDir:     stagingDir,
		DescriptorPath: DefaultDescriptorPath,
		WebappTarget:   DefaultWebappTarget,
	}
}

// Verify checks that everything the module descriptor references exists in
// the staging tree. It stops at the first missing reference and returns a
// *StructureError naming it; a descriptor that cannot be parsed yields a
// *DescriptorError instead.
func Verify(opts VerifyOptions, obs Observer) error {
	if !opts.Enabled {
		return nil
	}
	obs = observerOrNop(obs)
	v := &verifier{root: opts.StagingDir, obs: obs}

	obs.Debug("verifying module")

	obs.Debug("verifying module directory exists")
	if opts.StagingDir == "" || !fspath.Exists(opts.StagingDir) {
		return &StructureError{Kind: IssueStagingMissing, Path: string(opts.StagingDir)}
	}

	descriptorPath := opts.DescriptorPath
	if descriptorPath == "" {
		descriptorPath = DefaultDescriptorPath
	}
	obs.Debug("verifying descriptor exists")
	descriptorFile := fspath.JoinSlash(opts.StagingDir, descriptorPath)
	if !fspath.Exists(descriptorFile) {
		return &StructureError{Kind: IssueDescriptorMissing, Path: descriptorPath}
	}

	obs.Debug("parsing descriptor", "file", descriptorFile)
	desc, err := LoadDescriptor(descriptorFile)
	if err != nil {
		return err
	}

	if err := v.checkReferences(desc); err != nil {
		return err
	}

	webappTarget := opts.WebappTarget
	if webappTarget == "" {
		webappTarget = DefaultWebappTarget
	}
	return v.checkLegacyLayout(desc.RequireVersion, webappTarget)
}

type verifier struct {
	root types.FilesystemPath
	obs  Observer
}

// checkReferences walks the descriptor categories in a fixed order.
func (v *verifier) checkReferences(desc *Descriptor) error {
	v.obs.Debug("checking activator exists")
	if desc.Activator != nil {
		if err := v.require(IssueActivatorMissing, desc.Activator.FilePath()); err != nil {
			return err
		}
	}

	classChecks := []struct {
		label   string
		kind    IssueKind
		classes []types.ClassName
	}{
		{"extensions", IssueExtensionMissing, desc.Extensions},
		{"advice", IssueAdviceMissing, desc.Advice},
		{"servlets", IssueServletMissing, desc.Servlets},
	}
	for _, check := range classChecks {
		v.obs.Debug("checking " + check.label + " exist")
		for _, class := range check.classes {
			if err := v.require(check.kind, class.FilePath()); err != nil {
				return err
			}
		}
	}

	v.obs.Debug("checking messages exist")
	for _, file := range desc.MessageFiles {
		if err := v.require(IssueMessageFileMissing, file); err != nil {
			return err
		}
	}

	v.obs.Debug("checking mappingFiles exist")
	for _, file := range desc.MappingFiles {
		if err := v.require(IssueMappingFileMissing, file); err != nil {
			return err
		}
	}

	return nil
}

// checkLegacyLayout requires the portlets and resources directories when a
// web directory is present and the module may run on hosts before 1.5.0.
// The comparison is lexical: "1.10.0" sorts before "1.5.0".
func (v *verifier) checkLegacyLayout(requireVersion, webappTarget string) error {
	webDir := fspath.JoinSlash(v.root, webappTarget)
	if !fspath.Exists(webDir) || requireVersion >= LegacyLayoutVersion {
		return nil
	}

	v.obs.Debug("verifying all module web dirs exist (required for versions < " + LegacyLayoutVersion + ")")

	v.obs.Debug("verifying portlets dir exists")
	if !fspath.Exists(fspath.JoinStr(webDir, portletsDir)) {
		return &StructureError{Kind: IssuePortletsMissing, Path: webappTarget + "/" + portletsDir}
	}

	v.obs.Debug("verifying resource dir exists")
	if !fspath.Exists(fspath.JoinStr(webDir, webResourcesDir)) {
		return &StructureError{Kind: IssueWebResourcesMissing, Path: webappTarget + "/" + webResourcesDir}
	}

	return nil
}

// require fails with kind unless rel exists under the module root. An empty
// reference never exists.
func (v *verifier) require(kind IssueKind, rel string) error {
	v.obs.Debug("checking for file", "file", rel, "root", v.root)
	if rel == "" || !fspath.Exists(fspath.JoinSlash(v.root, rel)) {
		return &StructureError{Kind: kind, Path: rel}
	}
	return nil
}
