package render_test

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/trr266/bitesized/internal/logging"
	"github.com/trr266/bitesized/internal/render"
)

type cachedAboutPage struct{}

func (cachedAboutPage) Templates(_ context.Context) []string {
	return []string{"layout.tmpl", "about.tmpl"}
}

func (cachedAboutPage) Key(_ context.Context) string {
	return "about.tmpl"
}

func (cachedAboutPage) ExecutedTemplate(_ context.Context) string {
	return "layout.tmpl"
}

type cachedContactPage struct {
	IncludeForm bool
}

func (p cachedContactPage) Templates(_ context.Context) []string {
	templates := []string{"layout.tmpl", "contact.tmpl"}
	if p.IncludeForm {
		templates = append(templates, "form.tmpl")
	}
	return templates
}

func (cachedContactPage) Key(_ context.Context) string {
	return "contact.tmpl"
}

func (cachedContactPage) ExecutedTemplate(_ context.Context) string {
	return "layout.tmpl"
}

func cachedSiteFS() fstest.MapFS {
	return fstest.MapFS(map[string]*fstest.MapFile{
		"about.tmpl": {
			Data:    []byte(`{{ define "content" }}about.tmpl{{ end }}`),
			Mode:    0o444,
			ModTime: time.Now(),
		},
		"contact.tmpl": {
			Data:    []byte(`{{ define "content" }}contact.tmpl{{ if .Page.IncludeForm }} {{ block "form" . }}{{ end }}{{ end }}{{ end }}`),
			Mode:    0o444,
			ModTime: time.Now(),
		},
		"form.tmpl": {
			Data:    []byte(`{{ define "form" }}included form.tmpl{{ end }}`),
			Mode:    0o444,
			ModTime: time.Now(),
		},
		"layout.tmpl": {
			Data:    []byte(`{{ block "content" . }}layout.tmpl{{ end }}`),
			Mode:    0o444,
			ModTime: time.Now(),
		},
	})
}

func TestCachedSite(t *testing.T) {
	t.Parallel()

	ctx := logging.WithLogger(context.Background(), slog.Default())
	templateFS := cachedSiteFS()
	site := render.NewCachedSite(templateFS)
	renderChangeAndRerender(t, ctx, templateFS, cachedAboutPage{}, site, "about.tmpl", "about.tmpl")
	renderChangeAndRerender(t, ctx, templateFS, cachedContactPage{}, site, "contact.tmpl", "contact.tmpl")

	// the key is shared, so the cached parse without form.tmpl is reused
	var out bytes.Buffer
	render.Render(ctx, &out, site, cachedContactPage{IncludeForm: true})
	if output := out.String(); output != "contact.tmpl " {
		t.Errorf("Expected the cached templates to be used, got %q", output)
	}
}

func TestCachedSitePurge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	templateFS := cachedSiteFS()
	site := render.NewCachedSite(templateFS)

	var out bytes.Buffer
	render.Render(ctx, &out, site, cachedAboutPage{})
	if out.String() != "about.tmpl" {
		t.Fatalf("expected %q, got %q", "about.tmpl", out.String())
	}

	templateFS["about.tmpl"].Data = []byte(`{{ define "content" }}about us{{ end }}`)
	site.SetCachedResource(ctx, "about.css", "stale")
	site.Purge(ctx)

	if site.GetCachedTemplate(ctx, "about.tmpl") != nil {
		t.Error("expected the template cache to be empty after purging")
	}
	if site.GetCachedResource(ctx, "about.css") != nil {
		t.Error("expected the resource cache to be empty after purging")
	}
	out.Reset()
	render.Render(ctx, &out, site, cachedAboutPage{})
	if out.String() != "about us" {
		t.Errorf("expected the changed template to be rendered, got %q", out.String())
	}
}

func renderChangeAndRerender(t *testing.T, ctx context.Context, fs fstest.MapFS, page render.Page, site render.Site, file, expected string) {
	t.Helper()

	var out bytes.Buffer
	render.Render(ctx, &out, site, page)
	if output := out.String(); output != expected {
		t.Errorf("Expected to get %q, got %q", expected, output)
	}
	out.Reset()
	oldData := slices.Clone(fs[file].Data)
	fs[file].Data = []byte(strings.ReplaceAll(string(fs[file].Data), expected, "changed-"+expected))
	render.Render(ctx, &out, site, page)
	if output := out.String(); output != expected {
		t.Errorf("Expected to get %q after modifying underlying data, got %q", expected, output)
	}
	fs[file].Data = oldData
}
