package render

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrResourceCycle is returned when a dependency cycle between
	// resources is found. It always indicates a misconfiguration: the
	// relation calculators on some resources contradict each other or
	// the order the resources were declared in.
	ErrResourceCycle = errors.New("resource cycle detected")
)

// graph is a directed acyclic graph of resources. It's used to ensure the
// ordering constraints of CSS and JS resources are met.
//
// Nodes point to their dependencies and dependencies are always walked first:
// with an edge from 1 to 2, 2 appears before 1 when walking the graph.
type graph struct {
	nodes []resource

	// edgesTo is indexed by the node being pointed to. With an edge from
	// 1 to 2, edgesTo[2] contains 1.
	edgesTo map[int]map[int]struct{}

	// edgesFrom is indexed by the node doing the pointing. With an edge
	// from 1 to 2, edgesFrom[1] contains 2.
	edgesFrom map[int]map[int]struct{}
}

func newGraph() *graph {
	return &graph{
		edgesTo:   map[int]map[int]struct{}{},
		edgesFrom: map[int]map[int]struct{}{},
	}
}

// add appends res to the graph and returns its position. If an identical
// resource is already in the graph, ok is false.
func (g *graph) add(res resource) (pos int, ok bool) {
	if slices.ContainsFunc(g.nodes, func(existing resource) bool {
		return existing.describe() == res.describe()
	}) {
		return -1, false
	}
	g.nodes = append(g.nodes, res)
	return len(g.nodes) - 1, true
}

// dependOn records that the node at from must be walked after the node at
// to.
func (g *graph) dependOn(from, to int) {
	if g.edgesFrom[from] == nil {
		g.edgesFrom[from] = map[int]struct{}{}
	}
	if g.edgesTo[to] == nil {
		g.edgesTo[to] = map[int]struct{}{}
	}
	g.edgesFrom[from][to] = struct{}{}
	g.edgesTo[to][from] = struct{}{}
}

// chain adds resources to the graph, giving each one an implicit dependency
// on the previous one, unless the resource opts out of implicit ordering.
func (g *graph) chain(resources []resource) {
	last := -1
	for _, res := range resources {
		pos, ok := g.add(res)
		if !ok || res.explicitOrdering() {
			continue
		}
		if last >= 0 {
			g.dependOn(pos, last)
		}
		last = pos
	}
}

// applyRelations adds the edges that resources with relation calculators ask
// for.
func (g *graph) applyRelations(ctx context.Context) {
	for pos, res := range g.nodes {
		if !res.explicitOrdering() {
			continue
		}
		for compPos, comparison := range g.nodes {
			if compPos == pos {
				continue
			}
			switch res.relation(ctx, comparison) {
			case ResourceRelationshipAfter:
				g.dependOn(pos, compPos)
			case ResourceRelationshipBefore:
				g.dependOn(compPos, pos)
			case ResourceRelationshipNeutral:
				// no dependency
			}
		}
	}
}

// walk returns the nodes of the graph in dependency order. Nodes that don't
// depend on each other are ordered by compareResources. walk consumes the
// graph's edges.
func (g *graph) walk(_ context.Context) ([]resource, error) {
	ready := make([]int, 0, len(g.nodes))
	results := make([]resource, 0, len(g.nodes))
	byPos := func(a, b int) int {
		return compareResources(g.nodes[a], g.nodes[b])
	}
	for pos := range g.nodes {
		if len(g.edgesFrom[pos]) < 1 {
			delete(g.edgesFrom, pos)
			ready = append(ready, pos)
		}
	}
	slices.SortFunc(ready, byPos)
	for len(ready) > 0 {
		pos := ready[0]
		ready = ready[1:]
		results = append(results, g.nodes[pos])
		var changed bool
		for child := range g.edgesTo[pos] {
			delete(g.edgesFrom[child], pos)
			if len(g.edgesFrom[child]) < 1 {
				delete(g.edgesFrom, child)
				ready = append(ready, child)
				changed = true
			}
		}
		delete(g.edgesTo, pos)
		if changed {
			slices.SortFunc(ready, byPos)
		}
	}
	if len(g.edgesFrom) > 0 {
		return results, fmt.Errorf("%w: %s", ErrResourceCycle, g.describeRemaining())
	}
	return results, nil
}

func (g *graph) describeRemaining() string {
	var edges, ids []string
	froms := make([]int, 0, len(g.edgesFrom))
	for from := range g.edgesFrom {
		froms = append(froms, from)
	}
	slices.Sort(froms)
	for _, from := range froms {
		var tos []string
		for to := range g.edgesFrom[from] {
			tos = append(tos, strconv.Itoa(to))
		}
		slices.Sort(tos)
		edges = append(edges, fmt.Sprintf("%d:%s", from, strings.Join(tos, ",")))
	}
	for _, node := range g.nodes {
		ids = append(ids, node.describe())
	}
	return fmt.Sprintf("edges_from=[%s], resources=[%s]", strings.Join(edges, "; "), strings.Join(ids, ", "))
}

// resourceGraphs holds one graph for CSS, one for JavaScript rendered in the
// page header, and one for JavaScript rendered in the page footer.
type resourceGraphs struct {
	css    *graph
	headJS *graph
	footJS *graph
}

// buildGraphs creates the resourceGraphs for the passed components, with all
// their dependencies computed.
//
// Each component's resources get an implicit dependency on the previous
// resource of the same type declared by that component, so their order
// within the slice is preserved when rendering them.
func buildGraphs(ctx context.Context, components []Component) resourceGraphs {
	result := resourceGraphs{
		css:    newGraph(),
		headJS: newGraph(),
		footJS: newGraph(),
	}
	for _, component := range components {
		if linker, ok := component.(CSSLinker); ok {
			result.css.chain(toResources(linker.LinkCSS(ctx)))
		}
		if embedder, ok := component.(CSSEmbedder); ok {
			result.css.chain(toResources(embedder.EmbedCSS(ctx)))
		}
		if linker, ok := component.(JSLinker); ok {
			head, foot := splitByPlacement(linker.LinkJS(ctx), func(link JSLink) bool { return link.PlaceInFooter })
			result.headJS.chain(head)
			result.footJS.chain(foot)
		}
		if embedder, ok := component.(JSEmbedder); ok {
			head, foot := splitByPlacement(embedder.EmbedJS(ctx), func(block JSInline) bool { return block.PlaceInFooter })
			result.headJS.chain(head)
			result.footJS.chain(foot)
		}
	}
	result.css.applyRelations(ctx)
	result.headJS.applyRelations(ctx)
	result.footJS.applyRelations(ctx)
	return result
}

func toResources[Res resource](in []Res) []resource {
	out := make([]resource, 0, len(in))
	for _, res := range in {
		out = append(out, res)
	}
	return out
}

func splitByPlacement[Res resource](in []Res, footer func(Res) bool) (head, foot []resource) {
	for _, res := range in {
		if footer(res) {
			foot = append(foot, res)
		} else {
			head = append(head, res)
		}
	}
	return head, foot
}
