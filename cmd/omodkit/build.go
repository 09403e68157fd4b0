// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"maps"

	"github.com/spf13/cobra"

	"github.com/omodkit/omodkit/internal/watch"
	"github.com/omodkit/omodkit/pkg/types"
)

// buildBindings is the union of packaging and verification bindings.
var buildBindings = func() map[string]string {
	b := maps.Clone(packageBindings)
	maps.Copy(b, verifyBindings)
	return b
}()

// newBuildCommand creates the 'build' command, which packages the module
// and then verifies the staged result.
func newBuildCommand(app *App, rootFlags *rootFlags) *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package the module, then verify it",
		Long: `Package the module, then verify it.

Equivalent to 'omodkit package' followed by 'omodkit verify'. A packaging
failure exits with status 1, an invalid module with status 2.

With --watch the module is rebuilt whenever the classes directory or the
dependency manifest changes, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watchMode {
				return app.watchBuild(cmd, rootFlags)
			}
			return app.runBuild(cmd, rootFlags)
		},
	}

	addPackageFlags(cmd)
	cmd.Flags().String("config-file", "", "descriptor path relative to the module root")
	cmd.Flags().String("webapp-target", "", "web resources directory relative to the module root")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "rebuild when the module's inputs change")
	return cmd
}

// runBuild runs the packaging and verification phases in order.
func (a *App) runBuild(cmd *cobra.Command, flags *rootFlags) error {
	project, err := a.runPackage(cmd, flags, buildBindings)
	if err != nil {
		return err
	}
	return a.runVerify(cmd, flags, project, "")
}

// watchBuild builds once and then again after every input change. Build
// failures are reported and do not stop the loop.
func (a *App) watchBuild(cmd *cobra.Command, flags *rootFlags) error {
	project, _, err := a.loadProject(cmd, flags, buildBindings)
	if err != nil {
		return a.fail(cmd, flags, err, types.ExitBuildFailure)
	}

	_ = a.runBuild(cmd, flags)

	var files []string
	if deps := project.DependenciesPath(); deps != "" {
		files = append(files, string(deps))
	}
	w, err := watch.New(watch.Config{
		Roots:  []string{string(project.Resolve(project.ClassesDir))},
		Files:  files,
		Logger: a.logger(flags),
		OnChange: func(context.Context, []string) error {
			return a.runBuild(cmd, flags)
		},
	})
	if err != nil {
		return a.fail(cmd, flags, err, types.ExitBuildFailure)
	}

	if err := w.Run(cmd.Context()); err != nil {
		return a.fail(cmd, flags, err, types.ExitBuildFailure)
	}
	return nil
}
