package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
)

// Inventory is an unordered multiset of items. Duplicates are allowed.
type Inventory struct {
	items []Item
}

// NewInventory returns an inventory holding the given items.
func NewInventory(items ...Item) Inventory {
	return Inventory{items: append([]Item(nil), items...)}
}

// Len returns the number of items held.
func (inv *Inventory) Len() int { return len(inv.items) }

// Has reports whether at least one instance of item is held.
func (inv *Inventory) Has(item Item) bool {
	return slices.Contains(inv.items, item)
}

// Count returns how many instances of item are held.
func (inv *Inventory) Count(item Item) int {
	n := 0
	for _, it := range inv.items {
		if it == item {
			n++
		}
	}
	return n
}

// Items returns a copy of the held items in acquisition order.
func (inv *Inventory) Items() []Item {
	return append([]Item(nil), inv.items...)
}

// Add puts one item into the inventory.
func (inv *Inventory) Add(item Item) {
	inv.items = append(inv.items, item)
}

// Take removes one instance of item.
func (inv *Inventory) Take(item Item) error {
	idx := slices.Index(inv.items, item)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotOwned, item.Name())
	}
	inv.items = slices.Delete(inv.items, idx, idx+1)
	return nil
}

// TakeRandom removes and returns a uniformly chosen item.
func (inv *Inventory) TakeRandom(rng *rand.Rand) (Item, bool) {
	if len(inv.items) == 0 {
		return NoItem, false
	}
	idx := rng.IntN(len(inv.items))
	item := inv.items[idx]
	inv.items = slices.Delete(inv.items, idx, idx+1)
	return item, true
}
