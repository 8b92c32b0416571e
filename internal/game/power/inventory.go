package power

import "github.com/google/uuid"

// Instance is one owned, not yet consumed power.
type Instance struct {
	ID    string
	Power Power
}

// Inventory holds the player's available powers in acquisition order.
// Powers leave the inventory when they are applied.
//
// Inventory is not safe for concurrent use.
type Inventory struct {
	items []Instance
}

// NewInventory returns an Inventory holding powers.
//
// Postcondition: Len() == len(powers); every instance has a unique ID.
func NewInventory(powers ...Power) *Inventory {
	inv := &Inventory{}
	for _, p := range powers {
		inv.Add(p)
	}
	return inv
}

// Add stores p and returns its instance ID.
func (inv *Inventory) Add(p Power) string {
	id := uuid.New().String()
	inv.items = append(inv.items, Instance{ID: id, Power: p})
	return id
}

// Get returns the power with the given ID without consuming it.
func (inv *Inventory) Get(id string) (Power, bool) {
	for _, it := range inv.items {
		if it.ID == id {
			return it.Power, true
		}
	}
	return Power{}, false
}

// Take removes and returns the power with the given ID.
//
// Postcondition: On success the instance is no longer in the inventory.
func (inv *Inventory) Take(id string) (Power, bool) {
	for i, it := range inv.items {
		if it.ID == id {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return it.Power, true
		}
	}
	return Power{}, false
}

// All returns a copy of the instances in acquisition order.
func (inv *Inventory) All() []Instance {
	out := make([]Instance, len(inv.items))
	copy(out, inv.items)
	return out
}

// Len returns the number of available powers.
func (inv *Inventory) Len() int { return len(inv.items) }
