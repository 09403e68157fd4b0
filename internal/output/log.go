// SPDX-License-Identifier: MPL-2.0

// Package output provides terminal logging for the CLI.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/omodkit/omodkit/pkg/omod"
)

// Prefix is shown in front of every log line.
const Prefix = "omodkit"

// The logger is handed to the packaging core as its progress observer.
var _ omod.Observer = (*log.Logger)(nil)

// NewLogger returns a logger writing to w. Verbose output enables debug
// messages, timestamps and caller information. A nil w means os.Stderr.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: verbose,
		ReportCaller:    verbose,
	})
}
