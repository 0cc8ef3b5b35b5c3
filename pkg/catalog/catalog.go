// Package catalog builds and holds the archetype catalog: the validated,
// deduplicated table of every item definition a resolution may touch.
//
// A [Catalog] is filled once per session by a [Builder] from three inputs,
// in order of preference:
//
//  1. archetypes the game API returned with the player payload
//  2. a digest-keyed snapshot from an earlier completed build
//  3. item descriptions fetched on demand for anything still missing
//
// After a build the catalog is read-only and safe for concurrent lookups.
package catalog

import (
	"slices"

	"github.com/matzehuels/equipneeds/pkg/archetype"
)

// Catalog is an id-unique archetype table with a symbol index.
//
// The first archetype added for an id wins. Symbols are indexed the same
// way: when two ids share a symbol, lookups by symbol return the first.
type Catalog struct {
	items    []archetype.Archetype
	byID     map[int]int
	bySymbol map[string]int
}

// New creates a catalog from archetypes, dropping duplicate ids.
func New(archetypes ...archetype.Archetype) *Catalog {
	c := &Catalog{
		byID:     make(map[int]int, len(archetypes)),
		bySymbol: make(map[string]int, len(archetypes)),
	}
	c.AddAll(archetypes)
	return c
}

// Add inserts a if its id is not yet present and reports whether it did.
func (c *Catalog) Add(a archetype.Archetype) bool {
	if _, ok := c.byID[a.ID]; ok {
		return false
	}
	idx := len(c.items)
	c.items = append(c.items, a)
	c.byID[a.ID] = idx
	if a.Symbol != "" {
		if _, ok := c.bySymbol[a.Symbol]; !ok {
			c.bySymbol[a.Symbol] = idx
		}
	}
	return true
}

// AddAll inserts every archetype not yet present and returns how many were
// added.
func (c *Catalog) AddAll(archetypes []archetype.Archetype) int {
	n := 0
	for _, a := range archetypes {
		if c.Add(a) {
			n++
		}
	}
	return n
}

// Lookup returns the archetype with the given id.
func (c *Catalog) Lookup(id int) (archetype.Archetype, bool) {
	if c == nil {
		return archetype.Archetype{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return archetype.Archetype{}, false
	}
	return c.items[idx], true
}

// LookupSymbol returns the archetype with the given symbol.
func (c *Catalog) LookupSymbol(symbol string) (archetype.Archetype, bool) {
	if c == nil {
		return archetype.Archetype{}, false
	}
	idx, ok := c.bySymbol[symbol]
	if !ok {
		return archetype.Archetype{}, false
	}
	return c.items[idx], true
}

// Has reports whether id is present.
func (c *Catalog) Has(id int) bool {
	if c == nil {
		return false
	}
	_, ok := c.byID[id]
	return ok
}

// HasSymbol reports whether symbol is present.
func (c *Catalog) HasSymbol(symbol string) bool {
	if c == nil {
		return false
	}
	_, ok := c.bySymbol[symbol]
	return ok
}

// Len returns the number of archetypes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Archetypes returns a copy of all archetypes in insertion order.
func (c *Catalog) Archetypes() []archetype.Archetype {
	if c == nil {
		return nil
	}
	return slices.Clone(c.items)
}

// MissingDemands returns the recipe demand ids that are not in the catalog,
// in first-seen order without duplicates.
func (c *Catalog) MissingDemands() []int {
	seen := make(map[int]bool)
	var out []int
	for _, a := range c.items {
		for _, d := range a.Demands() {
			if !c.Has(d.ArchetypeID) && !seen[d.ArchetypeID] {
				seen[d.ArchetypeID] = true
				out = append(out, d.ArchetypeID)
			}
		}
	}
	return out
}
