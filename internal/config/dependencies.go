// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/omodkit/omodkit/pkg/omod"
	"github.com/omodkit/omodkit/pkg/types"
)

// ErrInvalidDependency is the sentinel error wrapped by InvalidDependencyError.
var ErrInvalidDependency = errors.New("invalid dependency")

type (
	// InvalidDependencyError reports an unusable [[artifact]] entry.
	InvalidDependencyError struct {
		Index  int
		ID     string
		Reason string
	}

	// dependencyList is the TOML document written by the host build:
	//
	//	[[artifact]]
	//	id = "commons-lang"
	//	file = "/repo/commons-lang-2.6.jar"
	//	scope = "compile"
	//	optional = false
	dependencyList struct {
		Artifacts []dependencyEntry `toml:"artifact"`
	}

	dependencyEntry struct {
		ID       string `toml:"id"`
		File     string `toml:"file"`
		Scope    string `toml:"scope"`
		Optional bool   `toml:"optional"`
	}
)

// Error implements the error interface.
func (e *InvalidDependencyError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("artifact[%d] (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("artifact[%d]: %s", e.Index, e.Reason)
}

// Unwrap returns ErrInvalidDependency for errors.Is() compatibility.
func (e *InvalidDependencyError) Unwrap() error { return ErrInvalidDependency }

// LoadDependencies reads the resolved dependency list at path. Relative
// artifact files are resolved against the list's directory. A missing list
// means no dependencies unless required is set.
func LoadDependencies(path types.FilesystemPath, required bool) ([]omod.Artifact, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dependency list: %w", err)
	}

	artifacts, err := ParseDependencies(data, filepath.Dir(string(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return artifacts, nil
}

// ParseDependencies decodes a dependency list. Unknown keys are rejected.
func ParseDependencies(data []byte, baseDir string) ([]omod.Artifact, error) {
	var list dependencyList
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&list); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			keys := make([]string, 0, len(strictErr.Errors))
			for _, e := range strictErr.Errors {
				keys = append(keys, strings.Join(e.Key(), "."))
			}
			return nil, fmt.Errorf("unknown keys %s: %w", strings.Join(keys, ", "), err)
		}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}

	artifacts := make([]omod.Artifact, 0, len(list.Artifacts))
	for i, entry := range list.Artifacts {
		if strings.TrimSpace(entry.File) == "" {
			return nil, &InvalidDependencyError{Index: i, ID: entry.ID, Reason: "file must not be empty"}
		}
		scope := types.DependencyScope(entry.Scope)
		if err := scope.Validate(); err != nil {
			return nil, &InvalidDependencyError{Index: i, ID: entry.ID, Reason: err.Error()}
		}

		file := entry.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, filepath.FromSlash(file))
		}
		id := entry.ID
		if id == "" {
			id = filepath.Base(file)
		}

		artifacts = append(artifacts, omod.Artifact{
			ID:       id,
			File:     types.FilesystemPath(file),
			Scope:    scope.Normalized(),
			Optional: entry.Optional,
		})
	}
	return artifacts, nil
}
