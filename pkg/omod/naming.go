// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"strings"

	"github.com/omodkit/omodkit/pkg/fspath"
	"github.com/omodkit/omodkit/pkg/types"
)

// classifierSuffix returns the file name suffix for a classifier: empty for
// no classifier, otherwise the classifier with exactly one leading dash.
func classifierSuffix(classifier string) string {
	if strings.TrimSpace(classifier) == "" {
		return ""
	}
	if strings.HasPrefix(classifier, "-") {
		return classifier
	}
	return "-" + classifier
}

// TargetFile returns <outputDir>/<name>[-<classifier>].omod.
func TargetFile(outputDir types.FilesystemPath, name, classifier string) types.FilesystemPath {
	return fspath.JoinStr(outputDir, name+classifierSuffix(classifier)+"."+PackagingExtension)
}
