package catalog

import (
	"slices"
	"testing"

	"github.com/matzehuels/equipneeds/pkg/archetype"
)

func item(id int, symbol string, demands ...int) archetype.Archetype {
	a := archetype.Archetype{ID: id, Symbol: symbol, Name: symbol}
	if len(demands) > 0 {
		a.Recipe = &archetype.Recipe{}
		for _, d := range demands {
			a.Recipe.Demands = append(a.Recipe.Demands, archetype.Demand{ArchetypeID: d, Count: 1})
		}
	}
	return a
}

func TestCatalogFirstIDWins(t *testing.T) {
	c := New(item(1, "a"), item(1, "dup"), item(2, "b"))

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	a, ok := c.Lookup(1)
	if !ok || a.Symbol != "a" {
		t.Errorf("Lookup(1) = %+v, %v; want symbol a", a, ok)
	}
	if c.HasSymbol("dup") {
		t.Error("a rejected duplicate should not be indexed by symbol")
	}
	if c.Add(item(2, "again")) {
		t.Error("Add() should reject an existing id")
	}
}

func TestCatalogSymbolIndex(t *testing.T) {
	c := New(item(1, "phaser"), item(7, "phaser"))
	a, ok := c.LookupSymbol("phaser")
	if !ok || a.ID != 1 {
		t.Errorf("LookupSymbol(phaser) = %d, %v; want 1, true", a.ID, ok)
	}
	if _, ok := c.LookupSymbol("tricorder"); ok {
		t.Error("LookupSymbol should miss unknown symbols")
	}
}

func TestCatalogMissingDemands(t *testing.T) {
	c := New(item(1, "a", 2, 3, 3), item(2, "b", 4, 1))
	got := c.MissingDemands()
	if !slices.Equal(got, []int{3, 4}) {
		t.Errorf("MissingDemands() = %v, want [3 4]", got)
	}
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	if c.Has(1) || c.HasSymbol("a") || c.Len() != 0 || c.Archetypes() != nil {
		t.Error("nil catalog should behave as empty")
	}
	if _, ok := c.Lookup(1); ok {
		t.Error("nil catalog Lookup should miss")
	}
}

func TestArchetypesReturnsCopy(t *testing.T) {
	c := New(item(1, "a"))
	out := c.Archetypes()
	out[0].Name = "changed"
	if a, _ := c.Lookup(1); a.Name != "a" {
		t.Error("Archetypes() should not expose internal storage")
	}
}
