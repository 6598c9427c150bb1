// Package web embeds the templates and static assets of the site.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

var (
	// Templates holds every html/template file, rooted at the templates
	// directory, so paths look like layout/base.html.tmpl.
	Templates = mustSub(templateFiles, "templates")

	// Static holds the files served as-is, rooted at the static
	// directory, so paths look like img/logo.png.
	Static = mustSub(staticFiles, "static")
)

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
