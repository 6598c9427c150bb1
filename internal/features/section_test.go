package features_test

import (
	"bytes"
	"context"
	"html/template"
	"strconv"
	"testing"

	"github.com/trr266/bitesized/internal/features"
	"github.com/trr266/bitesized/internal/htmltest"
	"github.com/trr266/bitesized/internal/render"
	"github.com/trr266/bitesized/web"
	"golang.org/x/net/html"
)

type testSite struct {
	*render.CachedSite
}

func (testSite) FuncMap(_ context.Context) template.FuncMap {
	return template.FuncMap{
		"asset": func(path string) string { return "/" + path },
	}
}

func newTestSite() testSite {
	return testSite{CachedSite: render.NewCachedSite(web.Templates)}
}

func renderSection(t testing.TB, site render.Site, section features.Section) string {
	t.Helper()
	var out bytes.Buffer
	if err := render.RenderPage(context.Background(), &out, site, section); err != nil {
		t.Fatalf("error rendering section: %s", err)
	}
	return out.String()
}

func cards(root *html.Node) []*html.Node {
	return htmltest.FindAll(root, htmltest.Class("feature"))
}

func TestHomepageFeatures(t *testing.T) {
	t.Parallel()

	doc := htmltest.Parse(t, renderSection(t, newTestSite(), features.HomepageFeatures()))

	sections := htmltest.FindAll(doc, htmltest.Tag("section"))
	if len(sections) != 1 {
		t.Fatalf("expected exactly one section, got %d", len(sections))
	}
	expected := []struct {
		title string
		icon  string
	}{
		{"Concise Video Tutorials", "/img/icon_video_tutorial.png"},
		{"Tailored for Researchers", "/img/icon_researcher.png"},
		{"Interactive & Practical", "/img/icon_interactive_practical.png"},
	}
	got := cards(sections[0])
	if len(got) != len(expected) {
		t.Fatalf("expected %d cards, got %d", len(expected), len(got))
	}
	for i, card := range got {
		img := htmltest.FindAll(card, htmltest.Tag("img"))[0]
		heading := htmltest.FindAll(card, htmltest.Tag("h3"))[0]
		if title := htmltest.Text(heading); title != expected[i].title {
			t.Errorf("card %d: expected heading %q, got %q", i, expected[i].title, title)
		}
		if alt := htmltest.Attr(img, "alt"); alt != expected[i].title {
			t.Errorf("card %d: expected alt text %q, got %q", i, expected[i].title, alt)
		}
		if src := htmltest.Attr(img, "src"); src != expected[i].icon {
			t.Errorf("card %d: expected icon %q, got %q", i, expected[i].icon, src)
		}
		if key := htmltest.Attr(card, "data-key"); key != strconv.Itoa(i) {
			t.Errorf("card %d: expected key %d, got %q", i, i, key)
		}
	}
}

func TestCardStructure(t *testing.T) {
	t.Parallel()

	doc := htmltest.Parse(t, renderSection(t, newTestSite(), features.HomepageFeatures()))
	for i, card := range cards(doc) {
		parts := htmltest.FindAll(card, func(n *html.Node) bool {
			return n.Data == "img" || n.Data == "h3" || n.Data == "p"
		})
		var tags []string
		for _, part := range parts {
			tags = append(tags, part.Data)
		}
		if len(tags) != 3 || tags[0] != "img" || tags[1] != "h3" || tags[2] != "p" {
			t.Errorf("card %d: expected img, h3, p in that order, got %v", i, tags)
		}
	}
}

func TestSectionEmptyCatalog(t *testing.T) {
	t.Parallel()

	doc := htmltest.Parse(t, renderSection(t, newTestSite(), features.Section{}))
	if n := len(htmltest.FindAll(doc, htmltest.Class("features"))); n != 1 {
		t.Fatalf("expected the section container to be rendered once, got %d", n)
	}
	rows := htmltest.FindAll(doc, htmltest.Class("row"))
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if children := htmltest.Elements(rows[0]); len(children) != 0 {
		t.Errorf("expected no cards, got %d", len(children))
	}
}

func TestSectionIdempotent(t *testing.T) {
	t.Parallel()

	site := newTestSite()
	first := renderSection(t, site, features.HomepageFeatures())
	second := renderSection(t, site, features.HomepageFeatures())
	if first != second {
		t.Errorf("expected identical output, got\n%s\nand\n%s", first, second)
	}
	// a fresh site parses the templates again and still agrees
	if third := renderSection(t, newTestSite(), features.HomepageFeatures()); third != first {
		t.Errorf("expected identical output from a fresh site, got\n%s", third)
	}
}

func TestDescriptionRenderedVerbatim(t *testing.T) {
	t.Parallel()

	section := features.Section{Catalog: features.NewCatalog(features.Descriptor{
		Title:       "Reproducible",
		Icon:        "img/icon.png",
		Description: "Works with <em>renv</em> &amp; <code>uv</code>.",
	})}
	doc := htmltest.Parse(t, renderSection(t, newTestSite(), section))
	paragraphs := htmltest.FindAll(doc, htmltest.Tag("p"))
	if len(paragraphs) != 1 {
		t.Fatalf("expected one paragraph, got %d", len(paragraphs))
	}
	if n := len(htmltest.FindAll(paragraphs[0], htmltest.Tag("em"))); n != 1 {
		t.Errorf("expected the description markup to be kept, found %d <em> elements", n)
	}
	if text := htmltest.Text(paragraphs[0]); text != "Works with renv & uv." {
		t.Errorf("unexpected description text %q", text)
	}
}

func TestSectionCards(t *testing.T) {
	t.Parallel()

	got := features.HomepageFeatures().Cards()
	if len(got) != features.Default.Len() {
		t.Fatalf("expected %d cards, got %d", features.Default.Len(), len(got))
	}
	for i, card := range got {
		if card.Key != i {
			t.Errorf("expected card %d to have key %d, got %d", i, i, card.Key)
		}
		if card.Feature != features.Default.At(i) {
			t.Errorf("expected card %d to hold %+v, got %+v", i, features.Default.At(i), card.Feature)
		}
	}
}
