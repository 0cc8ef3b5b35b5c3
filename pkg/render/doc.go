// Package render groups the diagram renderers.
//
// The [recipetree] subpackage draws the crafting subtree of one archetype
// with Graphviz:
//
//	tree, err := recipetree.Walk(cat, id, recipetree.Options{})
//	svg, err := recipetree.RenderSVG(ctx, tree.DOT())
//
// [recipetree]: github.com/matzehuels/equipneeds/pkg/render/recipetree
package render
