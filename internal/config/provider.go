// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/omodkit/omodkit/pkg/types"
)

// LoadOptions defines explicit project loading inputs.
type LoadOptions struct {
	// ProjectFile forces loading from a specific project file when set;
	// a missing file is then an error.
	ProjectFile types.FilesystemPath
	// Dir is the project root. Defaults to the project file's directory,
	// else the working directory.
	Dir types.FilesystemPath
	// Overrides are applied last, keyed like the project file
	// (e.g. "archive.compress").
	Overrides map[string]any
}

// Provider loads project settings from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Project, error)
	// LoadWithSource also returns the project file that was read,
	// or "" when only defaults, environment and overrides applied.
	LoadWithSource(ctx context.Context, opts LoadOptions) (*Project, string, error)
}

type fileProvider struct{}

// NewProvider creates a project provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads the project from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Project, error) {
	project, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// LoadWithSource implements Provider.
func (p *fileProvider) LoadWithSource(ctx context.Context, opts LoadOptions) (*Project, string, error) {
	return loadWithOptions(ctx, opts)
}
