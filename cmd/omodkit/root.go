// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/omodkit/omodkit/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the omodkit command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "omodkit",
		Short: "Package and verify .omod modules",
		Long: TitleStyle.Render("omodkit") + SubtitleStyle.Render(" - Package and verify .omod modules") + `

omodkit turns a compiled module (classes, resources and config.xml) into a
.omod archive, bundling its runtime dependencies under lib/, and checks that
every class and file the descriptor references is present.

` + SubtitleStyle.Render("Settings:") + `
  Read from omod.cue in the project directory, overridden by OMODKIT_*
  environment variables and then by command-line flags.

` + SubtitleStyle.Render("Examples:") + `
  omodkit config init --name reporting-1.0   Create omod.cue
  omodkit package                            Assemble and archive the module
  omodkit verify                             Check the assembled module
  omodkit verify --archive target/x.omod     Check a built archive
  omodkit build                              Package, then verify`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&flags.projectFile, "project", "p", "", "project file (default is ./omod.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", "", "project directory (default is the project file's directory)")

	rootCmd.AddCommand(newPackageCommand(app, flags))
	rootCmd.AddCommand(newVerifyCommand(app, flags))
	rootCmd.AddCommand(newBuildCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the status of the failed phase.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitBuildFailure))
	}
}
