// Package pages defines every page of the site and the layout they share.
//
// Pages read the configuration through .Site.Config in their templates, and
// the URL helpers (url, asset, absURL) are provided by the Site, so the types
// here only carry what differs from one page to the next.
package pages

import (
	"context"

	"github.com/trr266/bitesized/internal/livereload"
	"github.com/trr266/bitesized/internal/render"
)

// layoutTemplate is the template every page executes. It includes the
// "content" template that each page defines.
const layoutTemplate = "layout/base.html.tmpl"

// Layout is the frame shared by every page: the document head, the navbar,
// the footer, and the color mode script.
type Layout struct {
	// BaseURL is the path the site is served under, with a trailing
	// slash.
	BaseURL string

	// LiveReload includes the live reload client in the footer.
	LiveReload bool
}

func (Layout) Templates(_ context.Context) []string {
	return []string{
		layoutTemplate,
		"layout/navbar.html.tmpl",
		"layout/footer.html.tmpl",
	}
}

func (l Layout) UseComponents(_ context.Context) []render.Component {
	if !l.LiveReload {
		return nil
	}
	return []render.Component{livereload.Script{}}
}

// LinkCSS loads the theme stylesheet ahead of every embedded block, which
// override its variables.
func (l Layout) LinkCSS(_ context.Context) []render.CSSLink {
	return []render.CSSLink{{
		Href: l.BaseURL + "css/custom.css",
		CSSInlineRelationCalculator: func(context.Context, render.CSSInline) render.ResourceRelationship {
			return render.ResourceRelationshipBefore
		},
	}}
}

// EmbedJS sets the color mode before the body renders, so the page doesn't
// flash in the wrong theme.
func (Layout) EmbedJS(_ context.Context) []render.JSInline {
	return []render.JSInline{{TemplatePath: "layout/color-mode.js.tmpl"}}
}
