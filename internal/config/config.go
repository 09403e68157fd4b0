// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/exp/maps"

	"github.com/omodkit/omodkit/internal/issue"
	"github.com/omodkit/omodkit/pkg/cueutil"
	"github.com/omodkit/omodkit/pkg/fspath"
	"github.com/omodkit/omodkit/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "omodkit"
	// ProjectFileName is the project file looked up in the project root.
	ProjectFileName = "omod.cue"
	// EnvPrefix prefixes environment overrides, e.g. OMODKIT_OUTPUT_DIR.
	EnvPrefix = "OMODKIT"
	// DefaultDependenciesFile is the dependency list, relative to the project root.
	DefaultDependenciesFile = "target/dependencies.toml"

	projectDefinition  = "#Project"
	manifestEntriesKey = "archive.manifest.entries"
)

//go:embed project_schema.cue
var projectSchema string

// setDefaults registers every key so that environment overrides apply
// to all of them.
func setDefaults(v *viper.Viper) {
	defaults := DefaultProject()
	v.SetDefault("name", defaults.Name)
	v.SetDefault("classifier", defaults.Classifier)
	v.SetDefault("classes_dir", defaults.ClassesDir)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("staging_dir", defaults.StagingDir)
	v.SetDefault("primary_artifact", defaults.PrimaryArtifact)
	v.SetDefault("existing_primary", defaults.ExistingPrimary)
	v.SetDefault("validate_format", defaults.ValidateFormat)
	v.SetDefault("bundle_dependencies", defaults.BundleDependencies)
	v.SetDefault("lib_dir", defaults.LibDir)
	v.SetDefault("config_file", defaults.ConfigFile)
	v.SetDefault("dependencies_file", defaults.DependenciesFile)
	v.SetDefault("verify.enabled", defaults.Verify.Enabled)
	v.SetDefault("verify.webapp_target", defaults.Verify.WebappTarget)
	v.SetDefault("archive.compress", defaults.Archive.Compress)
	v.SetDefault("archive.compression_level", defaults.Archive.CompressionLevel)
	v.SetDefault("archive.manifest.main_class", defaults.Archive.Manifest.MainClass)
	v.SetDefault("archive.manifest.add_default_entries", defaults.Archive.Manifest.AddDefaultEntries)
	v.SetDefault("archive.manifest.implementation_title", defaults.Archive.Manifest.ImplementationTitle)
	v.SetDefault("archive.manifest.implementation_version", defaults.Archive.Manifest.ImplementationVersion)
	v.SetDefault("archive.manifest.implementation_vendor", defaults.Archive.Manifest.ImplementationVendor)
}

// loadWithOptions resolves the project: defaults, then omod.cue, then
// OMODKIT_* environment variables, then explicit overrides. It returns the
// project and the project file that was read ("" when none).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Project, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load project canceled: %w", ctx.Err())
	default:
	}

	dir, err := projectDir(opts)
	if err != nil {
		return nil, "", err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	projectFile := string(opts.ProjectFile)
	explicit := projectFile != ""
	if !explicit {
		projectFile = filepath.Join(dir, ProjectFileName)
	}

	var entries map[string]string
	resolvedPath := ""
	switch {
	case fspath.Exists(types.FilesystemPath(projectFile)):
		entries, err = loadCUEIntoViper(v, projectFile)
		if err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load project").
				WithResource(projectFile).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the settings match the project schema").
				WithSuggestion("Run 'omodkit config show' to see the effective settings").
				WithIssue(issue.ProjectLoadFailedId).
				Wrap(err).
				BuildError()
		}
		resolvedPath = projectFile
	case explicit:
		return nil, "", issue.NewErrorContext().
			WithOperation("load project").
			WithResource(projectFile).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Run 'omodkit config init' to create a project file").
			WithIssue(issue.ProjectLoadFailedId).
			Wrap(fmt.Errorf("project file not found: %s", projectFile)).
			BuildError()
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var project Project
	if err := v.Unmarshal(&project); err != nil {
		return nil, "", fmt.Errorf("failed to parse project settings: %w", err)
	}
	project.Dir = dir
	if entries != nil {
		project.Archive.Manifest.Entries = entries
	}

	if valid, errs := project.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate project").
			WithResource(resolvedPath).
			WithSuggestion("Check OMODKIT_* environment variables and command-line flags").
			WithIssue(issue.ProjectLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &project, resolvedPath, nil
}

// projectDir returns the absolute project root: opts.Dir, else the
// directory holding opts.ProjectFile, else the working directory.
func projectDir(opts LoadOptions) (string, error) {
	dir := string(opts.Dir)
	if dir == "" && opts.ProjectFile != "" {
		dir = filepath.Dir(string(opts.ProjectFile))
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return abs, nil
}

// loadCUEIntoViper validates a project file against #Project and merges it
// into v. Manifest entries are returned separately because viper folds key
// case and header names must be written as given.
func loadCUEIntoViper(v *viper.Viper, path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	values, err := cueutil.DecodeMap(projectSchema, data, projectDefinition, path)
	if err != nil {
		return nil, err
	}

	entries := manifestEntries(values)

	if err := v.MergeConfigMap(values); err != nil {
		return nil, fmt.Errorf("failed to merge project file: %w", err)
	}
	return entries, nil
}

// manifestEntries pulls archive.manifest.entries out of the decoded file.
func manifestEntries(values map[string]any) map[string]string {
	node := any(values)
	for _, key := range strings.Split(manifestEntriesKey, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[key]
	}
	raw, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	entries := make(map[string]string, len(raw))
	for name, value := range raw {
		entries[name] = fmt.Sprint(value)
	}
	return entries
}

// GenerateCUE renders a project as an omod.cue file.
func GenerateCUE(p *Project) string {
	var sb strings.Builder

	sb.WriteString("// omodkit project file\n")
	sb.WriteString("// Paths are relative to this file's directory.\n\n")

	if p.Name != "" {
		fmt.Fprintf(&sb, "name: %q\n", p.Name)
	}
	if p.Classifier != "" {
		fmt.Fprintf(&sb, "classifier: %q\n", p.Classifier)
	}
	fmt.Fprintf(&sb, "classes_dir: %q\n", filepath.ToSlash(p.ClassesDir))
	fmt.Fprintf(&sb, "output_dir: %q\n", filepath.ToSlash(p.OutputDir))
	if p.StagingDir != "" {
		fmt.Fprintf(&sb, "staging_dir: %q\n", filepath.ToSlash(p.StagingDir))
	}
	fmt.Fprintf(&sb, "primary_artifact: %v\n", p.PrimaryArtifact)
	if p.ExistingPrimary != "" {
		fmt.Fprintf(&sb, "existing_primary: %q\n", filepath.ToSlash(p.ExistingPrimary))
	}
	fmt.Fprintf(&sb, "validate_format: %v\n", p.ValidateFormat)
	fmt.Fprintf(&sb, "bundle_dependencies: %v\n", p.BundleDependencies)
	fmt.Fprintf(&sb, "lib_dir: %q\n", p.LibDir)
	fmt.Fprintf(&sb, "config_file: %q\n", p.ConfigFile)
	fmt.Fprintf(&sb, "dependencies_file: %q\n", filepath.ToSlash(p.DependenciesFile))

	sb.WriteString("\nverify: {\n")
	fmt.Fprintf(&sb, "\tenabled: %v\n", p.Verify.Enabled)
	fmt.Fprintf(&sb, "\twebapp_target: %q\n", p.Verify.WebappTarget)
	sb.WriteString("}\n")

	m := p.Archive.Manifest
	sb.WriteString("\narchive: {\n")
	fmt.Fprintf(&sb, "\tcompress: %v\n", p.Archive.Compress)
	fmt.Fprintf(&sb, "\tcompression_level: %d\n", p.Archive.CompressionLevel)
	sb.WriteString("\tmanifest: {\n")
	if m.MainClass != "" {
		fmt.Fprintf(&sb, "\t\tmain_class: %q\n", m.MainClass)
	}
	fmt.Fprintf(&sb, "\t\tadd_default_entries: %v\n", m.AddDefaultEntries)
	for _, h := range [][2]string{
		{"implementation_title", m.ImplementationTitle},
		{"implementation_version", m.ImplementationVersion},
		{"implementation_vendor", m.ImplementationVendor},
	} {
		if h[1] != "" {
			fmt.Fprintf(&sb, "\t\t%s: %q\n", h[0], h[1])
		}
	}
	if len(m.Entries) > 0 {
		sb.WriteString("\t\tentries: {\n")
		names := maps.Keys(m.Entries)
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "\t\t\t%q: %q\n", name, m.Entries[name])
		}
		sb.WriteString("\t\t}\n")
	}
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")

	return sb.String()
}

// InitProject writes a default omod.cue into dir. An existing file is kept
// unless force is set. It returns the written path.
func InitProject(dir types.FilesystemPath, name string, force bool) (types.FilesystemPath, error) {
	path := fspath.JoinStr(dir, ProjectFileName)
	if !force && fspath.Exists(path) {
		return "", issue.NewErrorContext().
			WithOperation("create project file").
			WithResource(string(path)).
			WithSuggestion("Use --force to overwrite it").
			Wrap(os.ErrExist).
			BuildError()
	}

	if err := os.MkdirAll(string(dir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	project := DefaultProject()
	project.Name = name
	if err := os.WriteFile(string(path), []byte(GenerateCUE(project)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write project file: %w", err)
	}
	return path, nil
}
