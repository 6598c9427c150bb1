// Package features renders the feature highlights on the homepage: a fixed,
// ordered catalog of features, each shown as a card with an icon, a heading,
// and a short description.
package features

import (
	"html/template"
	"iter"
	"slices"
)

// Descriptor describes one feature.
type Descriptor struct {
	// Title is the short name of the feature. It's used as the card
	// heading and as the alternative text of its icon.
	Title string

	// Icon is the site-relative path of the icon image, e.g.
	// img/icon_video_tutorial.png.
	Icon string

	// Description is trusted markup rendered verbatim below the title.
	Description template.HTML
}

// Catalog is an ordered, immutable list of features. The order is the order
// the cards are displayed in. The zero value is an empty catalog.
type Catalog struct {
	descriptors []Descriptor
}

// NewCatalog returns a Catalog holding a copy of descriptors.
func NewCatalog(descriptors ...Descriptor) Catalog {
	return Catalog{descriptors: slices.Clone(descriptors)}
}

// Len returns the number of features in the catalog.
func (c Catalog) Len() int {
	return len(c.descriptors)
}

// At returns the feature at position i. It panics if i is out of range.
func (c Catalog) At(i int) Descriptor {
	return c.descriptors[i]
}

// All iterates over the features in display order.
func (c Catalog) All() iter.Seq2[int, Descriptor] {
	return func(yield func(int, Descriptor) bool) {
		for i, d := range c.descriptors {
			if !yield(i, d) {
				return
			}
		}
	}
}

// Default is the catalog shown on the homepage.
var Default = NewCatalog(
	Descriptor{
		Title:       "Concise Video Tutorials",
		Icon:        "img/icon_video_tutorial.png",
		Description: "Short, focused videos that simplify Open Science workflows into practical, actionable steps you can apply right away.",
	},
	Descriptor{
		Title:       "Tailored for Researchers",
		Icon:        "img/icon_researcher.png",
		Description: "Created with early-career researchers in mind, especially those using quantitative methods in economics and social sciences.",
	},
	Descriptor{
		Title:       "Interactive & Practical",
		Icon:        "img/icon_interactive_practical.png",
		Description: "Learn by doing with real-world examples and workflows using tools like GitHub, R, and Python.",
	},
)
