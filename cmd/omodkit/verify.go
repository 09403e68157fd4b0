// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omodkit/omodkit/internal/config"
	"github.com/omodkit/omodkit/internal/issue"
	"github.com/omodkit/omodkit/pkg/omod"
	"github.com/omodkit/omodkit/pkg/types"
)

// verifyBindings maps verification flags to project keys.
var verifyBindings = map[string]string{
	"name":          "name",
	"output-dir":    "output_dir",
	"staging-dir":   "staging_dir",
	"config-file":   "config_file",
	"webapp-target": "verify.webapp_target",
}

// newVerifyCommand creates the 'verify' command.
func newVerifyCommand(app *App, rootFlags *rootFlags) *cobra.Command {
	var archive string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the module's descriptor references exist",
		Long: `Check that every class and file named in the module descriptor
(config.xml) is present in the assembled module.

By default the staging directory is checked. With --archive a built .omod is
extracted to a temporary directory and checked instead.

Examples:
  omodkit verify
  omodkit verify --archive target/reporting-1.0.omod`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, _, err := app.loadProject(cmd, rootFlags, verifyBindings)
			if err != nil {
				return app.fail(cmd, rootFlags, err, types.ExitInvalidModule)
			}
			return app.runVerify(cmd, rootFlags, project, archive)
		},
	}

	cmd.Flags().StringVar(&archive, "archive", "", "verify a built .omod archive instead of the staging directory")
	cmd.Flags().String("name", "", "archive base name, usually <artifactId>-<version>")
	cmd.Flags().String("output-dir", "", "directory holding the staging directory")
	cmd.Flags().String("staging-dir", "", "assembled module directory")
	cmd.Flags().String("config-file", "", "descriptor path relative to the module root")
	cmd.Flags().String("webapp-target", "", "web resources directory relative to the module root")

	return cmd
}

// runVerify checks the staged module, or archive when it is set.
func (a *App) runVerify(cmd *cobra.Command, flags *rootFlags, project *config.Project, archive string) error {
	logger := a.logger(flags)
	opts := project.VerifyOptions()

	if !opts.Enabled {
		fmt.Fprintln(a.stdout, WarningStyle.Render("Verification is disabled (verify.enabled: false)"))
		return nil
	}

	if archive != "" {
		tmpDir, err := os.MkdirTemp("", "omodkit-verify-*")
		if err != nil {
			return a.fail(cmd, flags, fmt.Errorf("create temporary directory: %w", err), types.ExitInvalidModule)
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()

		archivePath := project.Resolve(archive)
		if err := omod.Extract(archivePath, types.FilesystemPath(tmpDir)); err != nil {
			err = issue.NewErrorContext().
				WithOperation("open module archive").
				WithResource(string(archivePath)).
				WithIssue(issue.ArchiveUnreadableId).
				Wrap(err).
				BuildError()
			return a.fail(cmd, flags, err, types.ExitInvalidModule)
		}
		opts.StagingDir = types.FilesystemPath(tmpDir)
		logger.Debug("extracted archive", "archive", archivePath, "dir", tmpDir)
	} else if err := requireName(project, ""); err != nil {
		return a.fail(cmd, flags, err, types.ExitInvalidModule)
	}

	if err := omod.Verify(opts, logger); err != nil {
		return a.fail(cmd, flags, err, types.ExitInvalidModule)
	}

	target := archive
	if target == "" {
		target = string(opts.StagingDir)
	}
	fmt.Fprintf(a.stdout, "%s Module is valid: %s\n", successIcon, PathStyle.Render(displayPath(target)))
	return nil
}
