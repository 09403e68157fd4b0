// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omodkit/omodkit/internal/config"
	"github.com/omodkit/omodkit/internal/issue"
	"github.com/omodkit/omodkit/pkg/omod"
	"github.com/omodkit/omodkit/pkg/types"
)

// packageBindings maps packaging flags to project keys.
var packageBindings = map[string]string{
	"name":                "name",
	"classifier":          "classifier",
	"classes-dir":         "classes_dir",
	"output-dir":          "output_dir",
	"staging-dir":         "staging_dir",
	"dependencies":        "dependencies_file",
	"validate-format":     "validate_format",
	"bundle-dependencies": "bundle_dependencies",
	"primary-artifact":    "primary_artifact",
}

// newPackageCommand creates the 'package' command.
func newPackageCommand(app *App, rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package",
		Short: "Assemble the module and write the .omod archive",
		Long: `Assemble the module and write the .omod archive.

The compiled classes directory is copied into the staging directory, runtime
dependencies are bundled under lib/, and the staging tree is archived as
<output-dir>/<name>[-<classifier>].omod.

Examples:
  omodkit package
  omodkit package --name reporting-1.0 --classifier api
  omodkit package --bundle-dependencies=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := app.runPackage(cmd, rootFlags, packageBindings)
			return err
		},
	}

	addPackageFlags(cmd)
	return cmd
}

// addPackageFlags registers the flags shared by 'package' and 'build'.
func addPackageFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "archive base name, usually <artifactId>-<version>")
	cmd.Flags().String("classifier", "", "archive classifier; attaches the archive as a secondary artifact")
	cmd.Flags().String("classes-dir", "", "compiled classes directory")
	cmd.Flags().String("output-dir", "", "directory receiving the archive")
	cmd.Flags().String("staging-dir", "", "directory the module is assembled in")
	cmd.Flags().String("dependencies", "", "TOML file listing resolved dependencies")
	cmd.Flags().Bool("validate-format", true, "require the module descriptor before archiving")
	cmd.Flags().Bool("bundle-dependencies", true, "copy runtime dependencies into the lib directory")
	cmd.Flags().Bool("primary-artifact", true, "replace the primary build output with the archive")
}

// runPackage loads the project and packages the module.
func (a *App) runPackage(cmd *cobra.Command, flags *rootFlags, bindings map[string]string) (*config.Project, error) {
	project, source, err := a.loadProject(cmd, flags, bindings)
	if err != nil {
		return nil, a.fail(cmd, flags, err, types.ExitBuildFailure)
	}
	if err := requireName(project, source); err != nil {
		return nil, a.fail(cmd, flags, err, types.ExitBuildFailure)
	}

	logger := a.logger(flags)
	if source != "" {
		logger.Debug("loaded project", "file", source)
	}

	var deps []omod.Artifact
	if project.BundleDependencies {
		depsFile := project.DependenciesPath()
		deps, err = config.LoadDependencies(depsFile, isSet(cmd, "dependencies"))
		if err != nil {
			err = issue.NewErrorContext().
				WithOperation("load dependencies").
				WithResource(string(depsFile)).
				WithIssue(issue.DependenciesLoadFailedId).
				WithSuggestion("Each entry needs a 'file'; 'scope' is one of compile, runtime, provided, test, system").
				Wrap(err).
				BuildError()
			return nil, a.fail(cmd, flags, err, types.ExitBuildFailure)
		}
		logger.Debug("resolved dependencies", "count", len(deps))
	}

	bc := project.BuildContext(deps)
	result, err := omod.Package(bc, omod.NewZipArchiver(createdBy(), logger), logger)
	if err != nil {
		return nil, a.fail(cmd, flags, err, types.ExitBuildFailure)
	}

	printPackageResult(a.stdout, result)
	return project, nil
}

// isSet reports whether the named flag was given on the command line.
func isSet(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// createdBy is the Created-By manifest value.
func createdBy() string {
	return fmt.Sprintf("omodkit %s", Version)
}
