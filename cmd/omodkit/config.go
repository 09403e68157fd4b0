// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/omodkit/omodkit/internal/config"
	"github.com/omodkit/omodkit/pkg/types"
)

// newConfigCommand creates the 'config' command and its subcommands.
func newConfigCommand(app *App, rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the project file",
		Long: `Inspect and create the omod.cue project file.

Examples:
  omodkit config show
  omodkit config init --name reporting-1.0`,
	}

	cmd.AddCommand(newConfigShowCommand(app, rootFlags))
	cmd.AddCommand(newConfigInitCommand(app, rootFlags))
	return cmd
}

func newConfigShowCommand(app *App, rootFlags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective project settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, source, err := app.loadProject(cmd, rootFlags, nil)
			if err != nil {
				return app.fail(cmd, rootFlags, err, types.ExitBuildFailure)
			}
			printProject(app.stdout, project, source)
			return nil
		},
	}
}

func newConfigInitCommand(app *App, rootFlags *rootFlags) *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default omod.cue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := rootFlags.dir
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return app.fail(cmd, rootFlags, err, types.ExitBuildFailure)
				}
				dir = wd
			}

			path, err := config.InitProject(types.FilesystemPath(dir), name, force)
			if err != nil {
				return app.fail(cmd, rootFlags, err, types.ExitBuildFailure)
			}
			fmt.Fprintf(app.stdout, "%s Created %s\n", successIcon, PathStyle.Render(displayPath(string(path))))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "archive base name, usually <artifactId>-<version>")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing project file")
	return cmd
}

// printProject writes the effective settings, one per line.
func printProject(w io.Writer, p *config.Project, source string) {
	fmt.Fprintln(w, TitleStyle.Render("Project settings"))
	if source != "" {
		fmt.Fprintf(w, "%s\n\n", SubtitleStyle.Render("from "+displayPath(source)))
	} else {
		fmt.Fprintf(w, "%s\n\n", SubtitleStyle.Render("no project file; defaults and environment only"))
	}

	row := func(key, value string) {
		fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render(fmt.Sprintf("%-38s", key)), value)
	}
	quoted := func(s string) string {
		if s == "" {
			return VerboseStyle.Render("(unset)")
		}
		return strconv.Quote(s)
	}

	row("dir", quoted(p.Dir))
	row("name", quoted(p.Name))
	row("classifier", quoted(p.Classifier))
	row("classes_dir", quoted(p.ClassesDir))
	row("output_dir", quoted(p.OutputDir))
	row("staging_dir", quoted(p.StagingDir))
	row("primary_artifact", strconv.FormatBool(p.PrimaryArtifact))
	row("existing_primary", quoted(p.ExistingPrimary))
	row("validate_format", strconv.FormatBool(p.ValidateFormat))
	row("bundle_dependencies", strconv.FormatBool(p.BundleDependencies))
	row("lib_dir", quoted(p.LibDir))
	row("config_file", quoted(p.ConfigFile))
	row("dependencies_file", quoted(p.DependenciesFile))
	row("verify.enabled", strconv.FormatBool(p.Verify.Enabled))
	row("verify.webapp_target", quoted(p.Verify.WebappTarget))
	row("archive.compress", strconv.FormatBool(p.Archive.Compress))
	row("archive.compression_level", strconv.Itoa(p.Archive.CompressionLevel))

	m := p.Archive.Manifest
	row("archive.manifest.main_class", quoted(m.MainClass))
	row("archive.manifest.add_default_entries", strconv.FormatBool(m.AddDefaultEntries))
	for _, name := range slices.Sorted(maps.Keys(m.Entries)) {
		row("archive.manifest.entries."+name, quoted(m.Entries[name]))
	}
}
