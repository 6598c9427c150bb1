package features_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/trr266/bitesized/internal/features"
	"github.com/trr266/bitesized/internal/htmltest"
)

// TestSectionProperties checks the order-preservation and accessibility laws
// for arbitrary catalogs.
func TestSectionProperties(t *testing.T) {
	site := newTestSite()
	properties := gopter.NewProperties(nil)

	catalogOf := func(titles []string) features.Section {
		descriptors := make([]features.Descriptor, 0, len(titles))
		for i, title := range titles {
			descriptors = append(descriptors, features.Descriptor{
				Title: title,
				Icon:  fmt.Sprintf("img/feature-%d.png", i),
			})
		}
		return features.Section{Catalog: features.NewCatalog(descriptors...)}
	}

	// Property: N descriptors render N cards, in catalog order, each with
	// its title as heading and alt text
	properties.Property("cards preserve catalog order", prop.ForAll(
		func(titles []string) bool {
			doc := htmltest.Parse(t, renderSection(t, site, catalogOf(titles)))
			cards := htmltest.FindAll(doc, htmltest.Class("feature"))
			if len(cards) != len(titles) {
				return false
			}
			for i, card := range cards {
				img := htmltest.FindAll(card, htmltest.Tag("img"))
				heading := htmltest.FindAll(card, htmltest.Tag("h3"))
				if len(img) != 1 || len(heading) != 1 {
					return false
				}
				if htmltest.Attr(img[0], "alt") != titles[i] || htmltest.Text(heading[0]) != titles[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.RegexMatch(`^[A-Za-z][A-Za-z &]{0,30}[A-Za-z]$`)),
	))

	// Property: rendering is idempotent
	properties.Property("rendering is idempotent", prop.ForAll(
		func(titles []string) bool {
			section := catalogOf(titles)
			return renderSection(t, site, section) == renderSection(t, site, section)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
