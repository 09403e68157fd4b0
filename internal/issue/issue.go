// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"

	"github.com/omodkit/omodkit/pkg/omod"
)

type Id int

const (
	StagingMissingId Id = iota + 1
	DescriptorMissingId
	DescriptorMalformedId
	ClassMissingId
	ResourceMissingId
	LegacyWebLayoutId
	AssemblyFailedId
	ManifestInvalidId
	ProjectLoadFailedId
	DependenciesLoadFailedId
	ArchiveUnreadableId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	moduleConfigLink = HttpLink("https://wiki.openmrs.org/display/docs/Module+Config+File")
	moduleLayoutLink = HttpLink("https://wiki.openmrs.org/display/docs/Module+Technical+Overview")

	stagingMissingIssue = &Issue{
		id: StagingMissingId,
		mdMsg: `
# The module directory does not exist!

Verification runs against the exploded module that packaging assembles.
Nothing was found at the configured staging directory.

## Things you can try:
- Package the module first:
~~~
$ omodkit package
~~~
- Or run both phases in one go:
~~~
$ omodkit build
~~~
- Check ` + "`staging_dir`" + ` and ` + "`output_dir`" + ` in your omod.cue`,
		docLinks: []HttpLink{moduleLayoutLink},
	}

	descriptorMissingIssue = &Issue{
		id: DescriptorMissingId,
		mdMsg: `
# No module descriptor found!

Every module needs a descriptor (config.xml by default) at the root of the
module directory. It is normally copied there from your compiled resources.

## Things you can try:
- Make sure config.xml is under your resources and ends up in target/classes
- If the descriptor has another name, set ` + "`config_file`" + ` in omod.cue
- To package without a descriptor, disable the check:
~~~cue
validate_format: false
~~~`,
		docLinks: []HttpLink{moduleConfigLink},
	}

	descriptorMalformedIssue = &Issue{
		id: DescriptorMalformedId,
		mdMsg: `
# The module descriptor is not valid XML!

The descriptor could not be parsed, so its references could not be checked.

## Things you can try:
- Look for unclosed elements or stray characters near the reported position
- Make sure the file has a single root element
- Check that the declared encoding matches the file's real encoding`,
		docLinks: []HttpLink{moduleConfigLink},
	}

	classMissingIssue = &Issue{
		id: ClassMissingId,
		mdMsg: `
# A class named in the descriptor is not in the module!

The descriptor names an activator, extension, advice or servlet class whose
compiled file is missing. Class names map to paths by replacing dots with
slashes and adding ".class".

## Things you can try:
- Check the class name in config.xml for typos
- Make sure the class compiles and lands in target/classes
- Rename references after moving a class to another package`,
		docLinks: []HttpLink{moduleConfigLink},
	}

	resourceMissingIssue = &Issue{
		id: ResourceMissingId,
		mdMsg: `
# A file named in the descriptor is not in the module!

Message files and mapping files are resolved relative to the module root.

## Things you can try:
- Check the ` + "`<messages><file>`" + ` entries in config.xml
- Check the ` + "`<mappingFiles>`" + ` list, which is separated by spaces or newlines
- Make sure the files are copied from your resources`,
		docLinks: []HttpLink{moduleConfigLink},
	}

	legacyWebLayoutIssue = &Issue{
		id: LegacyWebLayoutId,
		mdMsg: `
# The web directory does not follow the legacy layout!

Modules that require a platform version older than 1.5.0 (or that do not
declare one) must keep their web files in ` + "`portlets`" + ` and ` + "`resources`" + `
subdirectories of the web directory.

## Things you can try:
- Create the missing subdirectories under web/module
- Raise ` + "`<require_version>`" + ` to 1.5.0 or later if the module does not
  need to run on older platforms`,
		docLinks: []HttpLink{moduleLayoutLink},
	}

	assemblyFailedIssue = &Issue{
		id: AssemblyFailedId,
		mdMsg: `
# Assembling the module failed!

Copying files into the module directory or writing the archive hit an I/O error.

## Things you can try:
- Check free disk space and permissions on the output directory
- Make sure every dependency in dependencies.toml points to an existing file
- Re-run with ` + "`--verbose`" + ` to see each copied file`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# The archive manifest settings are invalid!

Manifest header names may only use letters, digits, '-' and '_' and must be
at most 70 characters long. ` + "`Manifest-Version`" + ` and ` + "`Created-By`" + ` are
written automatically and cannot be set.

## Things you can try:
- Fix the header names under ` + "`archive.manifest.entries`" + ` in omod.cue
- Remove line breaks from header values`,
	}

	projectLoadFailedIssue = &Issue{
		id: ProjectLoadFailedId,
		mdMsg: `
# Failed to load the project file!

The omod.cue project file could not be read or does not match the schema.

## Things you can try:
- Print the settings that are in effect:
~~~
$ omodkit config show
~~~
- Write a fresh project file with defaults:
~~~
$ omodkit config init --force
~~~`,
	}

	dependenciesLoadFailedIssue = &Issue{
		id: DependenciesLoadFailedId,
		mdMsg: `
# Failed to load the dependency list!

Resolved dependencies are read from a TOML file written by the host build.

## Expected format:
~~~toml
[[artifact]]
id = "commons-lang"
file = "/home/me/.m2/repository/commons-lang/commons-lang/2.6/commons-lang-2.6.jar"
scope = "compile"
optional = false
~~~

Valid scopes are compile, provided, runtime, test, system and import.`,
	}

	archiveUnreadableIssue = &Issue{
		id: ArchiveUnreadableId,
		mdMsg: `
# The module archive could not be read!

` + "`omodkit verify --archive`" + ` unpacks the archive before checking it.

## Things you can try:
- Make sure the path points to a .omod file
- Rebuild the archive with ` + "`omodkit package`" + ``,
	}

	issues = map[Id]*Issue{
		stagingMissingIssue.Id():         stagingMissingIssue,
		descriptorMissingIssue.Id():      descriptorMissingIssue,
		descriptorMalformedIssue.Id():    descriptorMalformedIssue,
		classMissingIssue.Id():           classMissingIssue,
		resourceMissingIssue.Id():        resourceMissingIssue,
		legacyWebLayoutIssue.Id():        legacyWebLayoutIssue,
		assemblyFailedIssue.Id():         assemblyFailedIssue,
		manifestInvalidIssue.Id():        manifestInvalidIssue,
		projectLoadFailedIssue.Id():      projectLoadFailedIssue,
		dependenciesLoadFailedIssue.Id(): dependenciesLoadFailedIssue,
		archiveUnreadableIssue.Id():      archiveUnreadableIssue,
	}

	kindIssues = map[omod.IssueKind]Id{
		omod.IssueStagingMissing:      StagingMissingId,
		omod.IssueDescriptorMissing:   DescriptorMissingId,
		omod.IssueActivatorMissing:    ClassMissingId,
		omod.IssueExtensionMissing:    ClassMissingId,
		omod.IssueAdviceMissing:       ClassMissingId,
		omod.IssueServletMissing:      ClassMissingId,
		omod.IssueMessageFileMissing:  ResourceMissingId,
		omod.IssueMappingFileMissing:  ResourceMissingId,
		omod.IssuePortletsMissing:     LegacyWebLayoutId,
		omod.IssueWebResourcesMissing: LegacyWebLayoutId,
	}
)

// Values returns every catalog entry ordered by ID.
func Values() []*Issue {
	vals := maps.Values(issues)
	slices.SortFunc(vals, func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
	return vals
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForError returns the catalog entry describing a packaging or verification
// failure, or nil when err is not one.
func ForError(err error) *Issue {
	if kind := omod.KindOf(err); kind != "" {
		return Get(kindIssues[kind])
	}
	switch {
	case errors.Is(err, omod.ErrDescriptorMalformed):
		return Get(DescriptorMalformedId)
	case errors.Is(err, omod.ErrManifest):
		return Get(ManifestInvalidId)
	case errors.Is(err, omod.ErrAssembly):
		return Get(AssemblyFailedId)
	}
	return nil
}
