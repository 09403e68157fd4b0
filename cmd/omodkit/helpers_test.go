// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/omodkit/omodkit/internal/testutil"
	"github.com/omodkit/omodkit/pkg/types"
)

const testDescriptor = `<?xml version="1.0" encoding="UTF-8"?>
<module configVersion="1.2">
	<id>reporting</id>
	<name>Reporting</name>
	<version>1.0</version>
	<require_version>1.6.0</require_version>
	<activator>org.example.reporting.ReportingActivator</activator>
	<messages>
		<lang>en</lang>
		<file>messages.properties</file>
	</messages>
</module>
`

// newProject writes a compiled module and an omod.cue named name under a
// fresh directory and returns the directory.
func newProject(t *testing.T, name string) string {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"target/classes/config.xml":                                      testDescriptor,
		"target/classes/messages.properties":                             "reporting.title=Reporting\n",
		"target/classes/org/example/reporting/ReportingActivator.class": "\xca\xfe\xba\xbe",
	})
	if name != "" {
		testutil.MustWriteFile(t, filepath.Join(dir, "omod.cue"), "name: \""+name+"\"\n")
	}
	return dir
}

// runCLI executes the command tree against dir and captures its output.
func runCLI(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := NewApp(Dependencies{Stdout: &out, Stderr: &errOut})
	root := NewRootCommand(app)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--dir", dir}, args...))

	err = root.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

// requireExitCode fails unless err is an ExitError carrying want.
func requireExitCode(t *testing.T, err error, want types.ExitCode) {
	t.Helper()

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != want {
		t.Fatalf("exit code = %d, want %d (error: %v)", exitErr.Code, want, exitErr.Err)
	}
}
