package render

import (
	"context"
	"fmt"
	"html/template"
	"strings"
)

// CSSEmbedder is an interface that Components can fulfill to include some CSS
// that should be embedded directly into the rendered HTML, inside <style>
// elements. The result is made available to the template as .CSS.
type CSSEmbedder interface {
	// EmbedCSS returns the CSS templates to execute and embed in the
	// output HTML. Their order within the slice is preserved unless a
	// resource says otherwise.
	EmbedCSS(context.Context) []CSSInline
}

// CSSLinker is an interface that Components can fulfill to include some CSS
// that should be loaded through a <link> element. The result is made
// available to the template as .CSS.
type CSSLinker interface {
	// LinkCSS returns the stylesheets that should be linked to from the
	// output HTML. Their order within the slice is preserved unless a
	// resource says otherwise.
	LinkCSS(context.Context) []CSSLink
}

// CSSLink is a stylesheet loaded with a <link> element.
type CSSLink struct {
	// Href is the URL of the stylesheet.
	Href string

	// Rel is the rel attribute of the <link> element. It defaults to
	// "stylesheet".
	Rel string

	// Type is the optional type attribute of the <link> element.
	Type string

	// Media is the optional media attribute of the <link> element.
	Media string

	// DisableImplicitOrdering keeps this link from depending on the link
	// declared before it by the same Component.
	DisableImplicitOrdering bool

	// CSSLinkRelationCalculator, when set, decides the order of this link
	// relative to other CSSLinks.
	CSSLinkRelationCalculator func(context.Context, CSSLink) ResourceRelationship

	// CSSInlineRelationCalculator, when set, decides the order of this
	// link relative to CSSInlines.
	CSSInlineRelationCalculator func(context.Context, CSSInline) ResourceRelationship
}

func (link CSSLink) key() string { return link.Href }

func (CSSLink) inline() bool { return false }

func (link CSSLink) explicitOrdering() bool {
	return link.DisableImplicitOrdering || link.CSSLinkRelationCalculator != nil || link.CSSInlineRelationCalculator != nil
}

func (link CSSLink) relation(ctx context.Context, other resource) ResourceRelationship {
	return cssRelation(ctx, other, link.CSSLinkRelationCalculator, link.CSSInlineRelationCalculator)
}

func (link CSSLink) describe() string { return fmt.Sprintf("CSSLink(%s)", link.Href) }

func (link CSSLink) html() template.HTML {
	rel := link.Rel
	if rel == "" {
		rel = "stylesheet"
	}
	var out strings.Builder
	fmt.Fprintf(&out, `<link href="%s" rel="%s"`, template.HTMLEscapeString(link.Href), template.HTMLEscapeString(rel))
	if link.Type != "" {
		fmt.Fprintf(&out, ` type="%s"`, template.HTMLEscapeString(link.Type))
	}
	if link.Media != "" {
		fmt.Fprintf(&out, ` media="%s"`, template.HTMLEscapeString(link.Media))
	}
	out.WriteString(">\n")
	return template.HTML(out.String()) // #nosec G203
}

// CSSInline is a template whose output gets embedded in a <style> element.
// The template is executed with the same RenderData as the page.
type CSSInline struct {
	// TemplatePath is the path of the template within the Site's
	// TemplateDir.
	TemplatePath string

	// DisableImplicitOrdering keeps this block from depending on the
	// block declared before it by the same Component.
	DisableImplicitOrdering bool

	// CSSLinkRelationCalculator, when set, decides the order of this
	// block relative to CSSLinks.
	CSSLinkRelationCalculator func(context.Context, CSSLink) ResourceRelationship

	// CSSInlineRelationCalculator, when set, decides the order of this
	// block relative to other CSSInlines.
	CSSInlineRelationCalculator func(context.Context, CSSInline) ResourceRelationship
}

func (block CSSInline) key() string { return block.TemplatePath }

func (CSSInline) inline() bool { return true }

func (block CSSInline) explicitOrdering() bool {
	return block.DisableImplicitOrdering || block.CSSLinkRelationCalculator != nil || block.CSSInlineRelationCalculator != nil
}

func (block CSSInline) relation(ctx context.Context, other resource) ResourceRelationship {
	return cssRelation(ctx, other, block.CSSLinkRelationCalculator, block.CSSInlineRelationCalculator)
}

func (block CSSInline) describe() string { return fmt.Sprintf("CSSInline(%s)", block.TemplatePath) }

func cssRelation(ctx context.Context, other resource, links func(context.Context, CSSLink) ResourceRelationship, inlines func(context.Context, CSSInline) ResourceRelationship) ResourceRelationship {
	switch res := other.(type) {
	case CSSLink:
		if links != nil {
			return links(ctx, res)
		}
	case CSSInline:
		if inlines != nil {
			return inlines(ctx, res)
		}
	}
	return ResourceRelationshipNeutral
}
