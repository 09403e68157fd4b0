// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/omodkit/omodkit/internal/issue"
	"github.com/omodkit/omodkit/pkg/types"
)

// issueStyle is the glamour style used for catalog entries.
const issueStyle = "dark"

// fail renders err for the user and returns it as an ExitError with code.
// Cobra's own error and usage output is silenced so the message is printed
// once.
func (a *App) fail(cmd *cobra.Command, flags *rootFlags, err error, code types.ExitCode) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	renderFailure(a.stderr, err, flags.verbose)
	return &ExitError{Code: code, Err: err}
}

// renderFailure prints the error line followed by the matching issue
// catalog entry, if any.
func renderFailure(w io.Writer, err error, verbose bool) {
	fmt.Fprintln(w, ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, verbose))

	entry := catalogEntryFor(err)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(issueStyle)
	if renderErr != nil {
		fmt.Fprintln(w, VerboseStyle.Render(fmt.Sprintf("(could not render help: %v)", renderErr)))
		return
	}
	fmt.Fprint(w, rendered)
}

// catalogEntryFor picks the issue explicitly attached to an
// ActionableError, falling back to the entry for the packaging failure.
func catalogEntryFor(err error) *issue.Issue {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return issue.Get(ae.Issue)
	}
	return issue.ForError(err)
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors include their suggestions, and in verbose mode the full
// error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
