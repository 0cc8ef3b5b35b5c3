// Package archetype defines item definitions shared by the catalog, the
// source index, and the needs resolver.
//
// An [Archetype] is one craftable or obtainable item: its identity, rarity,
// an optional [Recipe] describing which other archetypes it is built from,
// and an optional list of [ItemSource] tags describing where it drops.
//
// Archetype ids are not stable across the crowdsourced data sources the
// catalog is assembled from. The Symbol field is the reconciliation key:
// two archetypes with the same symbol describe the same item even when
// their ids differ.
package archetype

import (
	"slices"
	"strconv"
)

// SourceType enumerates the kinds of places an item can be obtained from.
// The numeric values match the game API's item_sources[].type codes.
type SourceType int

const (
	// SourceDisputeMission marks drops from away-team (dispute) missions.
	SourceDisputeMission SourceType = 0
	// SourceFaction marks faction transmission rewards.
	SourceFaction SourceType = 1
	// SourceShipBattle marks drops from space battle missions.
	SourceShipBattle SourceType = 2
)

// String returns a short human-readable name for the source type.
func (t SourceType) String() string {
	switch t {
	case SourceDisputeMission:
		return "dispute"
	case SourceFaction:
		return "faction"
	case SourceShipBattle:
		return "ship"
	default:
		return "source(" + strconv.Itoa(int(t)) + ")"
	}
}

// ItemSource is one obtainability tag on an archetype.
type ItemSource struct {
	Type           SourceType `json:"type"`
	EnergyQuotient float64    `json:"energy_quotient"` // desirability; higher is better
	Name           string     `json:"name"`
	ID             int        `json:"id,omitempty"`
	Mastery        int        `json:"mastery,omitempty"`
}

// Demand is one edge of the crafting graph: building one unit of the owning
// archetype consumes Count units of ArchetypeID.
type Demand struct {
	ArchetypeID int `json:"archetype_id"`
	Count       int `json:"count"`
}

// Recipe lists the demands needed to build one unit of an archetype.
type Recipe struct {
	Demands   []Demand `json:"demands"`
	CraftCost int      `json:"craft_cost,omitempty"`
}

// Archetype is a single item definition.
type Archetype struct {
	ID          int          `json:"id"`
	Symbol      string       `json:"symbol"`
	Name        string       `json:"name"`
	Rarity      int          `json:"rarity"`
	Type        int          `json:"type,omitempty"`
	Recipe      *Recipe      `json:"recipe,omitempty"`
	ItemSources []ItemSource `json:"item_sources,omitempty"`
}

// HasRecipe reports whether the archetype is built from other archetypes.
func (a *Archetype) HasRecipe() bool {
	return a.Recipe != nil && len(a.Recipe.Demands) > 0
}

// Demands returns the recipe demands, or nil if the archetype has no recipe.
func (a *Archetype) Demands() []Demand {
	if a.Recipe == nil {
		return nil
	}
	return a.Recipe.Demands
}

// HasSources reports whether the archetype carries any obtainability tags.
func (a *Archetype) HasSources() bool {
	return len(a.ItemSources) > 0
}

// HasSourceType reports whether any source tag has type t.
func (a *Archetype) HasSourceType(t SourceType) bool {
	for _, s := range a.ItemSources {
		if s.Type == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Catalog entries are shared read-only between
// resolutions, so anything that needs to reorder sources works on a clone.
func (a Archetype) Clone() Archetype {
	out := a
	if a.Recipe != nil {
		r := *a.Recipe
		r.Demands = slices.Clone(a.Recipe.Demands)
		out.Recipe = &r
	}
	out.ItemSources = slices.Clone(a.ItemSources)
	return out
}

// SortedSources returns a copy of the source tags ordered by energy quotient,
// best first. Tags with equal quotients keep their original relative order.
func (a *Archetype) SortedSources() []ItemSource {
	out := slices.Clone(a.ItemSources)
	slices.SortStableFunc(out, func(x, y ItemSource) int {
		switch {
		case x.EnergyQuotient > y.EnergyQuotient:
			return -1
		case x.EnergyQuotient < y.EnergyQuotient:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Ref formats an archetype id the way the item description API expects it.
func Ref(id int) string {
	return strconv.Itoa(id)
}
