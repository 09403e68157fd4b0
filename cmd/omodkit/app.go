// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/omodkit/omodkit/internal/config"
	"github.com/omodkit/omodkit/internal/issue"
	"github.com/omodkit/omodkit/internal/output"
	"github.com/omodkit/omodkit/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches the project settings and output streams
	// through it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads project settings using explicit options.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Project, string, error)
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		verbose     bool
		projectFile string
		dir         string
	}
)

// NewApp creates an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// logger returns the progress logger handed to the packaging core.
func (a *App) logger(flags *rootFlags) *log.Logger {
	return output.NewLogger(a.stderr, flags.verbose)
}

// loadProject resolves the project settings for cmd. Flags listed in
// bindings (flag name to project key) override the file and environment
// when they were set on the command line.
func (a *App) loadProject(cmd *cobra.Command, flags *rootFlags, bindings map[string]string) (*config.Project, string, error) {
	opts := config.LoadOptions{
		ProjectFile: types.FilesystemPath(flags.projectFile),
		Dir:         types.FilesystemPath(flags.dir),
		Overrides:   flagOverrides(cmd.Flags(), bindings),
	}
	return a.Config.LoadWithSource(cmd.Context(), opts)
}

// flagOverrides collects the changed flags as project overrides.
func flagOverrides(fs *pflag.FlagSet, bindings map[string]string) map[string]any {
	overrides := make(map[string]any)
	for flagName, key := range bindings {
		f := fs.Lookup(flagName)
		if f == nil || !f.Changed {
			continue
		}
		overrides[key] = f.Value.String()
	}
	return overrides
}

// requireName fails when the project has no archive name, which every
// phase needs to locate the module directory.
func requireName(project *config.Project, source string) error {
	if project.Name != "" || project.StagingDir != "" {
		return nil
	}
	resource := source
	if resource == "" {
		resource = config.ProjectFileName
	}
	return issue.NewErrorContext().
		WithOperation("resolve module name").
		WithResource(resource).
		WithSuggestion("Set 'name' in omod.cue, e.g. name: \"reporting-1.0\"").
		WithSuggestion("Or pass --name on the command line").
		WithSuggestion("Or set OMODKIT_NAME in the environment").
		Wrap(errMissingName).
		BuildError()
}
