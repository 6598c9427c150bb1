// Package site ties the configuration, the templates, and the pages of the
// site together. The Site it defines is the render.Site every page is
// rendered with, and its route table is shared by the server and the
// generator.
package site

import (
	"context"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/trr266/bitesized/internal/features"
	"github.com/trr266/bitesized/internal/pages"
	"github.com/trr266/bitesized/internal/render"
	"github.com/trr266/bitesized/internal/siteconfig"
)

var (
	_ render.Site             = &Site{}
	_ render.FuncMapExtender  = &Site{}
	_ render.ServerErrorPager = &Site{}
)

// Site is the render.Site for every page. It caches parsed templates, so a
// single Site should be shared for the lifetime of the process.
type Site struct {
	*render.CachedSite

	// Config is the resolved configuration. Templates reach it through
	// .Site.Config.
	Config *siteconfig.Config

	liveReload bool
}

// New returns a Site for cfg, rendering the templates in templates. When
// liveReload is set, every page includes the live reload client.
func New(cfg *siteconfig.Config, templates fs.FS, liveReload bool) *Site {
	return &Site{
		CachedSite: render.NewCachedSite(templates),
		Config:     cfg,
		liveReload: liveReload,
	}
}

// LiveReload reports whether pages include the live reload client.
func (s *Site) LiveReload() bool {
	return s.liveReload
}

// FuncMap makes the URL helpers available to every template:
//
//	url     a page path, like /about/, within the site
//	asset   a static file path, like img/logo.png, within the site
//	absURL  a path returned by url or asset, made absolute
func (s *Site) FuncMap(_ context.Context) template.FuncMap {
	return template.FuncMap{
		"url":    s.URL,
		"asset":  s.Asset,
		"absURL": s.AbsURL,
	}
}

// URL resolves the path of a page against the base URL, adding or removing
// the trailing slash as configured. Paths whose last segment has an
// extension are left alone.
func (s *Site) URL(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return s.Config.BaseURL
	}
	if path.Ext(strings.TrimSuffix(p, "/")) == "" {
		p = strings.TrimSuffix(p, "/")
		if s.Config.TrailingSlash {
			p += "/"
		}
	}
	return s.Config.BaseURL + p
}

// Asset resolves the path of a static file against the base URL.
func (s *Site) Asset(p string) string {
	return s.Config.BaseURL + strings.TrimPrefix(p, "/")
}

// AbsURL prefixes a path within the site, as returned by URL or Asset, with
// the site's scheme and host.
func (s *Site) AbsURL(p string) string {
	return strings.TrimSuffix(s.Config.URL, "/") + "/" + strings.TrimPrefix(p, "/")
}

// Layout returns the layout every page of the site is rendered in.
func (s *Site) Layout() pages.Layout {
	return pages.Layout{
		BaseURL:    s.Config.BaseURL,
		LiveReload: s.liveReload,
	}
}

// ServerErrorPage is rendered by render.Render when a page can't be.
func (s *Site) ServerErrorPage(_ context.Context) render.Page {
	return pages.ServerErrorPage{Layout: s.Layout()}
}

// NotFoundPage is served for every path that isn't a route, and written to
// 404.html by the generator.
func (s *Site) NotFoundPage() render.Page {
	return pages.NotFoundPage{Layout: s.Layout()}
}

// Route is a page of the site and the path it's served at. Paths are
// relative to the base URL and always end with a slash.
type Route struct {
	Path string
	Page render.Page
}

// Routes returns every page of the site, in navigation order.
func (s *Site) Routes() []Route {
	layout := s.Layout()
	return []Route{
		{Path: "/", Page: pages.HomePage{Layout: layout, Features: features.HomepageFeatures()}},
		{Path: "/tutorials/", Page: pages.TutorialsPage{Layout: layout}},
		{Path: "/about/", Page: pages.AboutPage{Layout: layout}},
		{Path: "/contact/", Page: pages.ContactPage{Layout: layout}},
		{Path: "/contact-thanks/", Page: pages.ContactThanksPage{Layout: layout}},
	}
}
