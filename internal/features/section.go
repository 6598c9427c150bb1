package features

import (
	"context"

	"github.com/trr266/bitesized/internal/render"
)

var _ render.Page = Section{}

// Card renders a single feature: its icon, its title as a heading, and its
// description.
type Card struct {
	// Key is the position of the feature in its catalog. It's rendered as
	// data-key and is unique within a section.
	Key     int
	Feature Descriptor
}

func (Card) Templates(_ context.Context) []string {
	return []string{"features/card.html.tmpl"}
}

// Section renders every feature of a catalog, in catalog order, inside a
// grid container.
//
// Section is a Page as well as a Component, so the section can be rendered on
// its own as an HTML fragment.
type Section struct {
	Catalog Catalog
}

// HomepageFeatures returns the section for the Default catalog.
func HomepageFeatures() Section {
	return Section{Catalog: Default}
}

// Cards returns one Card per feature, in catalog order.
func (s Section) Cards() []Card {
	cards := make([]Card, 0, s.Catalog.Len())
	for i, feature := range s.Catalog.All() {
		cards = append(cards, Card{Key: i, Feature: feature})
	}
	return cards
}

func (Section) Templates(_ context.Context) []string {
	return []string{"features/section.html.tmpl"}
}

func (Section) UseComponents(_ context.Context) []render.Component {
	return []render.Component{Card{}}
}

func (Section) EmbedCSS(_ context.Context) []render.CSSInline {
	return []render.CSSInline{{TemplatePath: "features/features.css.tmpl"}}
}

func (Section) Key(_ context.Context) string {
	return "features/section"
}

func (Section) ExecutedTemplate(_ context.Context) string {
	return "features/section.html.tmpl"
}
