// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"errors"
	"fmt"
)

const (
	// IssueStagingMissing means the staging directory does not exist.
	IssueStagingMissing IssueKind = "staging root missing"
	// IssueDescriptorMissing means the module descriptor is not in the staging tree.
	IssueDescriptorMissing IssueKind = "descriptor missing"
	// IssueActivatorMissing means the activator class file is absent.
	IssueActivatorMissing IssueKind = "activator missing"
	// IssueExtensionMissing means an extension class file is absent.
	IssueExtensionMissing IssueKind = "extension missing"
	// IssueAdviceMissing means an advice class file is absent.
	IssueAdviceMissing IssueKind = "advice missing"
	// IssueServletMissing means a servlet class file is absent.
	IssueServletMissing IssueKind = "servlet missing"
	// IssueMessageFileMissing means a message bundle file is absent.
	IssueMessageFileMissing IssueKind = "message file missing"
	// IssueMappingFileMissing means an ORM mapping file is absent.
	IssueMappingFileMissing IssueKind = "mapping file missing"
	// IssuePortletsMissing means the legacy web portlets directory is absent.
	IssuePortletsMissing IssueKind = "portlets missing"
	// IssueWebResourcesMissing means the legacy web resources directory is absent.
	IssueWebResourcesMissing IssueKind = "web resources missing"
)

var (
	// ErrStructure is the sentinel error wrapped by StructureError.
	ErrStructure = errors.New("invalid module structure")
	// ErrDescriptorMalformed is the sentinel error wrapped by DescriptorError.
	ErrDescriptorMalformed = errors.New("malformed module descriptor")
	// ErrAssembly is the sentinel error wrapped by AssemblyError.
	ErrAssembly = errors.New("module assembly failed")
	// ErrManifest is the sentinel error wrapped by ManifestError.
	ErrManifest = errors.New("invalid archive manifest")
)

type (
	// IssueKind names the category of a structural failure.
	IssueKind string

	// StructureError reports a required file or directory that is absent.
	// Path is the reference as it was checked, relative to the staging root
	// for descriptor references.
	StructureError struct {
		Kind IssueKind
		Path string
	}

	// DescriptorError reports a module descriptor that could not be parsed.
	DescriptorError struct {
		Path string
		Err  error
	}

	// AssemblyError reports an I/O failure while building the staging tree or
	// writing the archive. Step identifies what was being done.
	AssemblyError struct {
		Step string
		Err  error
	}

	// ManifestError reports archive metadata that cannot be written.
	ManifestError struct {
		Header string
		Reason string
	}
)

// String returns the string representation of the IssueKind.
func (k IssueKind) String() string { return string(k) }

// Error implements the error interface.
func (e *StructureError) Error() string {
	switch e.Kind {
	case IssueStagingMissing:
		return fmt.Sprintf("module directory %s not found", e.Path)
	case IssueDescriptorMissing:
		return fmt.Sprintf("module descriptor does not exist: %s", e.Path)
	case IssuePortletsMissing:
		return fmt.Sprintf("module portlets dir %s doesn't exist", e.Path)
	case IssueWebResourcesMissing:
		return fmt.Sprintf("module web resources dir %s doesn't exist", e.Path)
	default:
		return fmt.Sprintf("%s: %s not in module", e.Kind, e.Path)
	}
}

// Unwrap returns ErrStructure for errors.Is() compatibility.
func (e *StructureError) Unwrap() error { return ErrStructure }

// Error implements the error interface.
func (e *DescriptorError) Error() string {
	return fmt.Sprintf("failed to parse module descriptor %s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrDescriptorMalformed and the parser error.
func (e *DescriptorError) Unwrap() []error { return []error{ErrDescriptorMalformed, e.Err} }

// Error implements the error interface.
func (e *AssemblyError) Error() string {
	return fmt.Sprintf("error assembling module: %s: %v", e.Step, e.Err)
}

// Unwrap returns both ErrAssembly and the underlying cause.
func (e *AssemblyError) Unwrap() []error { return []error{ErrAssembly, e.Err} }

// Error implements the error interface.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest header %q: %s", e.Header, e.Reason)
}

// Unwrap returns ErrManifest for errors.Is() compatibility.
func (e *ManifestError) Unwrap() error { return ErrManifest }

// KindOf returns the IssueKind of a structural failure anywhere in err's
// chain, or "" if err is not structural.
func KindOf(err error) IssueKind {
	var se *StructureError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func assemblyErr(step string, err error) error {
	if err == nil {
		return nil
	}
	return &AssemblyError{Step: step, Err: err}
}
