// Package recipetree renders the crafting subtree of an archetype as a
// node-link diagram.
//
// # Overview
//
// [Walk] collects every archetype reachable from a root through recipe
// demands, breadth first. Each archetype becomes one node no matter how
// many recipes use it, so shared components and malformed cyclic recipes
// both produce a finite graph. Expansion stops at Options.MaxDepth; nodes
// cut off there are marked truncated.
//
// # Usage
//
//	tree, err := recipetree.Walk(cat, 1042, recipetree.Options{Inventory: inv})
//	dot := tree.DOT()
//	svg, err := recipetree.RenderSVG(dot)
//
// The generated DOT uses top-to-bottom layout with rounded boxes. Edge
// labels carry the per-unit demand count. Leaves are coloured by how they
// are obtained (faction, dispute mission, ship battle).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package recipetree
