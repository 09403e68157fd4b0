// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omodkit/omodkit/internal/testutil"
	"github.com/omodkit/omodkit/pkg/types"
)

func stageModule(t *testing.T, files map[string]string) types.FilesystemPath {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, files)
	return types.FilesystemPath(root)
}

func TestVerify_CompleteModule(t *testing.T) {
	t.Parallel()

	root := stageModule(t, fullModuleTree())
	obs := &recordingObserver{}

	require.NoError(t, Verify(DefaultVerifyOptions(root), obs))
	assert.True(t, obs.contains("checking mappingFiles exist"))
}

func TestVerify_RemovingAnyReferenceFails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		kind IssueKind
	}{
		{"org/example/reporting/ReportingActivator.class", IssueActivatorMissing},
		{"org/example/reporting/extension/AdminList.class", IssueExtensionMissing},
		{"org/example/reporting/advice/PatientAdvice.class", IssueAdviceMissing},
		{"org/example/reporting/web/ReportServlet.class", IssueServletMissing},
		{"messages.properties", IssueMessageFileMissing},
		{"ReportDefinition.hbm.xml", IssueMappingFileMissing},
		{"ReportSchedule.hbm.xml", IssueMappingFileMissing},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()

			files := fullModuleTree()
			delete(files, tt.file)
			root := stageModule(t, files)

			err := Verify(DefaultVerifyOptions(root), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStructure)

			var se *StructureError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, tt.file, se.Path)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestVerify_FirstOffenderReported(t *testing.T) {
	t.Parallel()

	root := stageModule(t, map[string]string{
		"config.xml": `<module>
			<extension><class>org.example.Present</class></extension>
			<extension><class>org.example.FirstMissing</class></extension>
			<extension><class>org.example.SecondMissing</class></extension>
		</module>`,
		"org/example/Present.class": "x",
	})

	err := Verify(DefaultVerifyOptions(root), nil)

	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, IssueExtensionMissing, se.Kind)
	assert.Equal(t, "org/example/FirstMissing.class", se.Path)
}

func TestVerify_StagingRootMissing(t *testing.T) {
	t.Parallel()

	missing := types.FilesystemPath(filepath.Join(t.TempDir(), "nope"))

	err := Verify(DefaultVerifyOptions(missing), nil)
	assert.Equal(t, IssueStagingMissing, KindOf(err))
}

func TestVerify_DescriptorMissing(t *testing.T) {
	t.Parallel()

	root := stageModule(t, map[string]string{"org/example/A.class": "x"})

	err := Verify(DefaultVerifyOptions(root), nil)
	assert.Equal(t, IssueDescriptorMissing, KindOf(err))
}

func TestVerify_CustomDescriptorPath(t *testing.T) {
	t.Parallel()

	root := stageModule(t, map[string]string{"META-INF/omod.xml": `<module/>`})
	opts := DefaultVerifyOptions(root)
	opts.DescriptorPath = "META-INF/omod.xml"

	require.NoError(t, Verify(opts, nil))
}

func TestVerify_MalformedDescriptor(t *testing.T) {
	t.Parallel()

	root := stageModule(t, map[string]string{"config.xml": `<module><activator>`})

	err := Verify(DefaultVerifyOptions(root), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDescriptorMalformed)
	assert.Empty(t, KindOf(err))
}

func TestVerify_EmptyReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		xml  string
		kind IssueKind
	}{
		{"empty activator", `<module><activator/></module>`, IssueActivatorMissing},
		{"extension without class", `<module><extension><point>p</point></extension></module>`, IssueExtensionMissing},
		{"messages without file", `<module><messages><lang>en</lang></messages></module>`, IssueMessageFileMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := stageModule(t, map[string]string{"config.xml": tt.xml})
			assert.Equal(t, tt.kind, KindOf(Verify(DefaultVerifyOptions(root), nil)))
		})
	}
}

func TestVerify_Disabled(t *testing.T) {
	t.Parallel()

	opts := VerifyOptions{
		Enabled:    false,
		StagingDir: types.FilesystemPath(filepath.Join(t.TempDir(), "does-not-exist")),
	}
	assert.NoError(t, Verify(opts, nil))

	root := stageModule(t, map[string]string{"config.xml": `<module><activator>`})
	opts.StagingDir = root
	assert.NoError(t, Verify(opts, nil))
}

func TestVerify_LegacyLayout(t *testing.T) {
	t.Parallel()

	descriptor := func(version string) string {
		if version == "" {
			return `<module><id>legacy</id></module>`
		}
		return `<module><require_version>` + version + `</require_version></module>`
	}

	tests := []struct {
		name     string
		version  string
		webDirs  []string
		wantKind IssueKind
	}{
		{"no version, portlets missing", "", []string{"web/module/resources/"}, IssuePortletsMissing},
		{"no version, resources missing", "", []string{"web/module/portlets/"}, IssueWebResourcesMissing},
		{"no version, both present", "", []string{"web/module/portlets/", "web/module/resources/"}, ""},
		{"old version, portlets missing", "1.4.2", []string{"web/module/resources/"}, IssuePortletsMissing},
		{"1.6.0 sorts after 1.5.0", "1.6.0", []string{"web/module/"}, ""},
		{"exactly 1.5.0", "1.5.0", []string{"web/module/"}, ""},
		{"1.10.0 sorts before 1.5.0", "1.10.0", []string{"web/module/"}, IssuePortletsMissing},
		{"no web dir at all", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			files := map[string]string{"config.xml": descriptor(tt.version)}
			for _, d := range tt.webDirs {
				files[d] = ""
			}
			root := stageModule(t, files)

			err := Verify(DefaultVerifyOptions(root), nil)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestVerify_CustomWebappTarget(t *testing.T) {
	t.Parallel()

	root := stageModule(t, map[string]string{
		"config.xml":       `<module/>`,
		"webapp/portlets/": "",
	})
	opts := DefaultVerifyOptions(root)
	opts.WebappTarget = "webapp"

	err := Verify(opts, nil)
	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, IssueWebResourcesMissing, se.Kind)
	assert.True(t, strings.HasPrefix(se.Path, "webapp/"))
}

func TestVerify_StagingRootIsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "module")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := Verify(DefaultVerifyOptions(types.FilesystemPath(file)), nil)
	assert.Equal(t, IssueDescriptorMissing, KindOf(err))
}
