package player

// Inventory answers owned-quantity lookups by archetype id.
// It is immutable after construction and safe for concurrent reads.
type Inventory struct {
	quantities map[int]int
}

// NewInventory indexes items by archetype id. Duplicate stacks of the same
// archetype are summed.
func NewInventory(items []Item) *Inventory {
	inv := &Inventory{quantities: make(map[int]int, len(items))}
	for _, it := range items {
		inv.quantities[it.ArchetypeID] += it.Quantity
	}
	return inv
}

// Quantity returns the owned count for id, or 0 if the item is not owned.
func (inv *Inventory) Quantity(id int) int {
	if inv == nil {
		return 0
	}
	return inv.quantities[id]
}

// Len returns the number of distinct archetypes in the inventory.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.quantities)
}
