// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"strings"

	"github.com/omodkit/omodkit/pkg/fspath"
	"github.com/omodkit/omodkit/pkg/types"
)

type (
	// Attachment tells the host how to register the built archive.
	// It is either PrimaryAttachment or SecondaryAttachment.
	Attachment interface {
		// ArchiveFile returns the archive being attached.
		ArchiveFile() types.FilesystemPath
		isAttachment()
	}

	// PrimaryAttachment replaces the build's primary output with File.
	PrimaryAttachment struct {
		File types.FilesystemPath
	}

	// SecondaryAttachment adds File as a classified output next to the
	// primary one.
	SecondaryAttachment struct {
		Classifier string
		File       types.FilesystemPath
	}
)

// ArchiveFile implements Attachment.
func (a PrimaryAttachment) ArchiveFile() types.FilesystemPath { return a.File }

// ArchiveFile implements Attachment.
func (a SecondaryAttachment) ArchiveFile() types.FilesystemPath { return a.File }

func (PrimaryAttachment) isAttachment()   {}
func (SecondaryAttachment) isAttachment() {}

// decideAttachment returns how archive should be attached, or nil when the
// host's existing primary output must be left alone.
func decideAttachment(bc BuildContext, archive types.FilesystemPath) Attachment {
	if strings.TrimSpace(bc.Classifier) != "" {
		return SecondaryAttachment{Classifier: bc.Classifier, File: archive}
	}
	if bc.PrimaryArtifact || bc.ExistingPrimary == "" || fspath.IsDir(bc.ExistingPrimary) {
		return PrimaryAttachment{File: archive}
	}
	return nil
}
