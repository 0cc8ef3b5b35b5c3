package recipetree

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/errors"
)

// DefaultMaxDepth bounds how many recipe levels [Walk] descends.
const DefaultMaxDepth = 8

// Catalog looks up archetypes by id. *catalog.Catalog implements it.
type Catalog interface {
	Lookup(id int) (archetype.Archetype, bool)
}

// Inventory reports owned quantities. *player.Inventory implements it.
type Inventory interface {
	Quantity(id int) int
}

// Options configures [Walk] and the DOT output.
type Options struct {
	// MaxDepth limits recipe levels below the root. Zero selects
	// DefaultMaxDepth.
	MaxDepth int

	// Inventory, when set, annotates nodes with owned counts.
	Inventory Inventory

	// Detailed adds rarity and the best source to node labels.
	Detailed bool
}

// Node is one archetype in the tree.
type Node struct {
	ID        int
	Depth     int
	Archetype archetype.Archetype
	Known     bool // false when the catalog has no entry for ID
	Truncated bool // has a recipe that MaxDepth cut off
	Have      int
}

// Edge is one recipe demand.
type Edge struct {
	From, To int
	Count    int
}

// Tree is the reachable recipe subtree of Root.
type Tree struct {
	Root  int
	Nodes []Node // breadth-first order
	Edges []Edge
	opts  Options
}

// Walk collects the recipe subtree of root.
func Walk(cat Catalog, root int, opts Options) (*Tree, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if _, ok := cat.Lookup(root); !ok {
		return nil, errors.New(errors.ErrCodeArchetypeNotFound, "archetype %d is not in the catalog", root)
	}

	t := &Tree{Root: root, opts: opts}
	index := make(map[int]int)
	visit := func(id, depth int) {
		if _, ok := index[id]; ok {
			return
		}
		a, known := cat.Lookup(id)
		n := Node{ID: id, Depth: depth, Archetype: a, Known: known}
		if opts.Inventory != nil {
			n.Have = opts.Inventory.Quantity(id)
		}
		index[id] = len(t.Nodes)
		t.Nodes = append(t.Nodes, n)
	}

	visit(root, 0)
	for i := 0; i < len(t.Nodes); i++ {
		n := &t.Nodes[i]
		if !n.Known || !n.Archetype.HasRecipe() {
			continue
		}
		if n.Depth >= opts.MaxDepth {
			n.Truncated = true
			continue
		}
		from, depth := n.ID, n.Depth
		for _, d := range n.Archetype.Demands() {
			t.Edges = append(t.Edges, Edge{From: from, To: d.ArchetypeID, Count: d.Count})
			visit(d.ArchetypeID, depth+1)
		}
	}
	return t, nil
}

// DOT converts the tree to Graphviz DOT format.
func (t *Tree) DOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=14];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range t.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n.ID), strings.Join(t.fmtAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range t.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(e.From), nodeID(e.To), fmt.Sprintf("x%d", e.Count))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string {
	return fmt.Sprintf("a%d", id)
}

func (t *Tree) fmtLabel(n Node) string {
	if !n.Known {
		return fmt.Sprintf("#%d\n(unknown)", n.ID)
	}
	name := n.Archetype.Name
	if name == "" {
		name = n.Archetype.Symbol
	}
	lines := []string{name}
	if t.opts.Detailed {
		lines = append(lines, fmt.Sprintf("rarity: %d", n.Archetype.Rarity))
		if srcs := n.Archetype.SortedSources(); len(srcs) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", srcs[0].Type, srcs[0].Name))
		}
	}
	if t.opts.Inventory != nil {
		lines = append(lines, fmt.Sprintf("have: %d", n.Have))
	}
	if n.Truncated {
		lines = append(lines, "...")
	}
	return strings.Join(lines, "\n")
}

func (t *Tree) fmtAttrs(n Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", t.fmtLabel(n))}
	switch {
	case !n.Known:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=mistyrose", "color=red")
	case n.Truncated:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case n.Archetype.HasRecipe():
	case n.Archetype.HasSourceType(archetype.SourceFaction):
		attrs = append(attrs, "fillcolor=lightblue")
	case n.Archetype.HasSourceType(archetype.SourceDisputeMission):
		attrs = append(attrs, "fillcolor=palegreen")
	case n.Archetype.HasSourceType(archetype.SourceShipBattle):
		attrs = append(attrs, "fillcolor=khaki")
	}
	return attrs
}
