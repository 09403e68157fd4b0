// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/omodkit/omodkit/pkg/omod"
)

// formatFileSize formats a file size in human-readable form.
func formatFileSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/float64(GB))
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/float64(MB))
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

// describeAttachment tells the user how the host should register the archive.
func describeAttachment(a omod.Attachment) string {
	switch a := a.(type) {
	case omod.PrimaryAttachment:
		return "primary artifact"
	case omod.SecondaryAttachment:
		return fmt.Sprintf("secondary artifact (classifier %q)", a.Classifier)
	default:
		return "not attached (existing primary artifact kept)"
	}
}

// displayPath shortens path relative to the working directory when it is
// inside it.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return path
	}
	return rel
}

// printPackageResult writes the packaging summary.
func printPackageResult(w io.Writer, result *omod.PackageResult) {
	fmt.Fprintf(w, "%s Module packaged successfully\n\n", successIcon)
	fmt.Fprintf(w, "%s Archive: %s\n", infoIcon, PathStyle.Render(displayPath(string(result.ArchiveFile))))
	if info, err := os.Stat(string(result.ArchiveFile)); err == nil {
		fmt.Fprintf(w, "%s Size: %s\n", infoIcon, formatFileSize(info.Size()))
	}
	fmt.Fprintf(w, "%s Bundled dependencies: %d\n", infoIcon, len(result.Bundled))
	fmt.Fprintf(w, "%s Attached as: %s\n", infoIcon, describeAttachment(result.Attachment))
}
