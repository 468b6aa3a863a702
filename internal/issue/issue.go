// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type (
	// Id identifies an issue in the catalog.
	Id int

	// MarkdownMsg is Markdown rendered to the terminal.
	MarkdownMsg string

	// HttpLink is a documentation or external link.
	HttpLink string

	// Issue is a user-facing explanation of a class of failures.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

const (
	ConfigLoadFailedId Id = iota + 1
	ConfigValidationFailedId
	BlackHoleFolderId
	ConfigSaveFailedId
)

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show which file is being used:
~~~
$ dlconfig config path
~~~

- Print a valid configuration to compare with:
~~~
$ dlconfig config dump
~~~

- Start over from the defaults:
~~~
$ dlconfig config init
~~~`,
	}

	configValidationFailedIssue = &Issue{
		id: ConfigValidationFailedId,
		mdMsg: `
# The configuration is not valid

The configuration was loaded but one or more settings were rejected.
Errors block saving; warnings are shown for information only.

## Things you can try:
- Fix the settings named in the errors above and validate again:
~~~
$ dlconfig validate
~~~

- Get the result as JSON for scripts:
~~~
$ dlconfig validate --json
~~~`,
	}

	blackHoleFolderIssue = &Issue{
		id: BlackHoleFolderId,
		mdMsg: `
# Torrent black hole folder problem

Torrent files are written to the black hole folder for your download client to pick up.
Validation creates the folder when it does not exist.

## The folder must:
- be an **absolute** path, e.g. ` + "`/data/blackhole/torrents`" + `
- not point to an existing file
- have a parent directory that exists and is writable

## Things you can try:
~~~
$ dlconfig config set downloading.saveTorrentsTo /absolute/path
$ dlconfig config unset downloading.saveTorrentsTo
~~~`,
	}

	configSaveFailedIssue = &Issue{
		id: ConfigSaveFailedId,
		mdMsg: `
# Failed to save the configuration

The new configuration was valid but could not be written.

## Things you can try:
- Check the permissions of the configuration directory
- Use another file with ` + "`--config`" + `
`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.id:       configLoadFailedIssue,
		configValidationFailedIssue.id: configValidationFailedIssue,
		blackHoleFolderIssue.id:        blackHoleFolderIssue,
		configSaveFailedIssue.id:       configSaveFailedIssue,
	}
)

// Id returns the catalog id.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown message.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue with glamour using the given style ("dark",
// "light", "notty", or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

// Get returns the issue with the given id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Ids returns every catalog id in ascending order.
func Ids() []Id {
	ids := make([]Id, 0, len(issues))
	for id := range issues {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
