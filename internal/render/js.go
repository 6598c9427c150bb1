package render

import (
	"context"
	"fmt"
	"html/template"
	"strings"
)

// JSEmbedder is an interface that Components can fulfill to include some
// JavaScript that should be embedded directly into the rendered HTML, inside
// <script> elements. The result is made available to the template as
// .HeaderJS or .FooterJS, depending on PlaceInFooter.
type JSEmbedder interface {
	// EmbedJS returns the JavaScript templates to execute and embed in
	// the output HTML.
	EmbedJS(context.Context) []JSInline
}

// JSLinker is an interface that Components can fulfill to include some
// JavaScript that should be loaded separately from the HTML document, using a
// <script> element with a src attribute. The result is made available to the
// template as .HeaderJS or .FooterJS, depending on PlaceInFooter.
type JSLinker interface {
	// LinkJS returns the scripts that should be linked to from the output
	// HTML.
	LinkJS(context.Context) []JSLink
}

// JSLink is a script loaded from a URL.
type JSLink struct {
	// Src is the URL of the script.
	Src string

	// Type is the optional type attribute, "module" for ES modules.
	Type string

	Async bool
	Defer bool

	// PlaceInFooter renders the script in .FooterJS instead of
	// .HeaderJS.
	PlaceInFooter bool

	// DisableImplicitOrdering keeps this script from depending on the
	// script declared before it by the same Component.
	DisableImplicitOrdering bool

	// JSLinkRelationCalculator, when set, decides the order of this
	// script relative to other JSLinks.
	JSLinkRelationCalculator func(context.Context, JSLink) ResourceRelationship

	// JSInlineRelationCalculator, when set, decides the order of this
	// script relative to JSInlines.
	JSInlineRelationCalculator func(context.Context, JSInline) ResourceRelationship
}

func (link JSLink) key() string { return link.Src }

func (JSLink) inline() bool { return false }

func (link JSLink) explicitOrdering() bool {
	return link.DisableImplicitOrdering || link.JSLinkRelationCalculator != nil || link.JSInlineRelationCalculator != nil
}

func (link JSLink) relation(ctx context.Context, other resource) ResourceRelationship {
	return jsRelation(ctx, other, link.JSLinkRelationCalculator, link.JSInlineRelationCalculator)
}

func (link JSLink) describe() string { return fmt.Sprintf("JSLink(%s)", link.Src) }

func (link JSLink) html() template.HTML {
	var out strings.Builder
	out.WriteString("<script")
	if link.Type != "" {
		fmt.Fprintf(&out, ` type="%s"`, template.HTMLEscapeString(link.Type))
	}
	fmt.Fprintf(&out, ` src="%s"`, template.HTMLEscapeString(link.Src))
	if link.Async {
		out.WriteString(" async")
	}
	if link.Defer {
		out.WriteString(" defer")
	}
	out.WriteString("></script>\n")
	return template.HTML(out.String()) // #nosec G203
}

// JSInline is a template whose output gets embedded in a <script> element.
// The template is executed with the same RenderData as the page.
type JSInline struct {
	// TemplatePath is the path of the template within the Site's
	// TemplateDir.
	TemplatePath string

	// PlaceInFooter renders the script in .FooterJS instead of
	// .HeaderJS.
	PlaceInFooter bool

	// DisableImplicitOrdering keeps this script from depending on the
	// script declared before it by the same Component.
	DisableImplicitOrdering bool

	// JSLinkRelationCalculator, when set, decides the order of this
	// script relative to JSLinks.
	JSLinkRelationCalculator func(context.Context, JSLink) ResourceRelationship

	// JSInlineRelationCalculator, when set, decides the order of this
	// script relative to other JSInlines.
	JSInlineRelationCalculator func(context.Context, JSInline) ResourceRelationship
}

func (block JSInline) key() string { return block.TemplatePath }

func (JSInline) inline() bool { return true }

func (block JSInline) explicitOrdering() bool {
	return block.DisableImplicitOrdering || block.JSLinkRelationCalculator != nil || block.JSInlineRelationCalculator != nil
}

func (block JSInline) relation(ctx context.Context, other resource) ResourceRelationship {
	return jsRelation(ctx, other, block.JSLinkRelationCalculator, block.JSInlineRelationCalculator)
}

func (block JSInline) describe() string { return fmt.Sprintf("JSInline(%s)", block.TemplatePath) }

func jsRelation(ctx context.Context, other resource, links func(context.Context, JSLink) ResourceRelationship, inlines func(context.Context, JSInline) ResourceRelationship) ResourceRelationship {
	switch res := other.(type) {
	case JSLink:
		if links != nil {
			return links(ctx, res)
		}
	case JSInline:
		if inlines != nil {
			return inlines(ctx, res)
		}
	}
	return ResourceRelationshipNeutral
}
