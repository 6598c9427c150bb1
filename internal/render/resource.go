package render

import (
	"context"
)

// ResourceRelationship controls the relationship between two resources. It's
// used to control the order in which CSS and JavaScript resources are rendered
// to the page.
type ResourceRelationship string

const (
	// ResourceRelationshipAfter indicates that the resource should be
	// rendered after the resource it's being compared to.
	ResourceRelationshipAfter ResourceRelationship = "after"

	// ResourceRelationshipBefore indicates that the resource should be
	// rendered before the resource it's being compared to.
	ResourceRelationshipBefore ResourceRelationship = "before"

	// ResourceRelationshipNeutral indicates that the resource has no
	// restrictions about where it's rendered in relation to the resource
	// it's being compared to. Prefer leaving the relation calculators nil
	// over returning ResourceRelationshipNeutral for every input.
	ResourceRelationshipNeutral ResourceRelationship = "neutral"
)

// resource is implemented by CSSLink, CSSInline, JSLink, and JSInline.
type resource interface {
	// key uniquely identifies the resource within its kind. Resources
	// with the same key are only rendered once.
	key() string

	// inline is true for resources whose contents end up in the page
	// itself. Linked resources sort before inline ones when nothing else
	// decides their order.
	inline() bool

	// explicitOrdering is true when the resource either declares its own
	// relation calculators or opted out of implicit ordering. Those
	// resources don't get an implicit dependency on their predecessor.
	explicitOrdering() bool

	// relation reports how the resource should be ordered relative to
	// other. It returns ResourceRelationshipNeutral when it has no opinion.
	relation(ctx context.Context, other resource) ResourceRelationship

	// describe identifies the resource in error messages.
	describe() string
}

// compareResources orders resources that have no dependency on each other:
// links before inline resources, then by key.
func compareResources(a, b resource) int {
	if a.inline() != b.inline() {
		if a.inline() {
			return 1
		}
		return -1
	}
	ak, bk := a.key(), b.key()
	switch {
	case ak < bk:
		return -1
	case bk < ak:
		return 1
	default:
		return 0
	}
}
