package catalog

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/equipneeds/pkg/player"
)

// ReconcileCrewSlots rewrites the archetype id of every equipment slot in
// crews to the catalog id of the archetype with the same symbol.
//
// Full-catalog crew entries carry their own embedded archetype list whose
// ids may differ from the live catalog. The slot id is first resolved to a
// symbol through that embedded list, then back to an id through the catalog.
// A slot whose symbol is unknown to the catalog gets id 0 so that it can
// never match a real archetype. A slot whose id is not in the embedded list
// is left untouched.
//
// crews is modified in place; pass clones when the input must survive.
// Returns the number of slots that could not be reconciled.
func ReconcileCrewSlots(cat *Catalog, crews []player.Crew, logger *log.Logger) int {
	if logger == nil {
		logger = log.Default()
	}
	failed := 0
	for i := range crews {
		c := &crews[i]
		for j := range c.EquipmentSlots {
			slot := &c.EquipmentSlots[j]
			embedded, ok := c.EmbeddedArchetype(slot.Archetype)
			if !ok {
				logger.Warn("equipment slot references unknown archetype",
					"crew", c.Name, "archetype", slot.Archetype)
				failed++
				continue
			}
			a, ok := cat.LookupSymbol(embedded.Symbol)
			if !ok {
				logger.Warn("equipment symbol not in catalog",
					"crew", c.Name, "symbol", embedded.Symbol)
				slot.Archetype = 0
				slot.Symbol = embedded.Symbol
				failed++
				continue
			}
			slot.Archetype = a.ID
			slot.Symbol = a.Symbol
		}
	}
	return failed
}

// slotSymbols returns the symbols of every full-catalog slot archetype that
// the catalog does not know yet, in first-seen order.
func slotSymbols(cat *Catalog, crews []player.Crew) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range crews {
		c := &crews[i]
		for _, slot := range c.EquipmentSlots {
			a, ok := c.EmbeddedArchetype(slot.Archetype)
			if !ok || a.Symbol == "" || seen[a.Symbol] || cat.HasSymbol(a.Symbol) {
				continue
			}
			seen[a.Symbol] = true
			out = append(out, a.Symbol)
		}
	}
	return out
}
