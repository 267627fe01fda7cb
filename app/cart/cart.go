// Package cart is the buyer's pending selection: crop id to quantity. It is
// a plain value owned by one session and carries no stock knowledge; the
// cart service checks quantities against live inventory.
package cart

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// SessionKey is where the cart lives in the session.
const SessionKey = "cart"

// Entry is one (crop, quantity) pair.
type Entry struct {
	CropID   uint    `json:"crop_id"`
	Quantity float64 `json:"quantity"`
}

// Cart maps crop ids to positive quantities. The zero value is an empty cart.
type Cart struct {
	items map[uint]float64
}

func New() *Cart {
	return &Cart{items: map[uint]float64{}}
}

// Quantity returns the stored quantity, 0 when absent.
func (c *Cart) Quantity(cropID uint) float64 {
	return c.items[cropID]
}

// Set stores quantity for cropID. A quantity <= 0 removes the entry.
func (c *Cart) Set(cropID uint, quantity float64) {
	if quantity <= 0 {
		c.Remove(cropID)
		return
	}
	if c.items == nil {
		c.items = map[uint]float64{}
	}
	c.items[cropID] = quantity
}

// Remove is a no-op for absent entries.
func (c *Cart) Remove(cropID uint) {
	delete(c.items, cropID)
}

func (c *Cart) Clear() {
	c.items = map[uint]float64{}
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Entries returns the cart's lines ordered by crop id.
func (c *Cart) Entries() []Entry {
	ids := make([]uint, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = Entry{CropID: id, Quantity: c.items[id]}
	}
	return out
}

// MarshalJSON stores the cart as {"<crop id>": quantity}.
func (c Cart) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(c.items))
	for id, q := range c.items {
		m[strconv.FormatUint(uint64(id), 10)] = q
	}
	return json.Marshal(m)
}

// UnmarshalJSON rejects keys that are not crop ids and drops non-positive
// quantities.
func (c *Cart) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	items := make(map[uint]float64, len(m))
	for k, q := range m {
		id, err := strconv.ParseUint(k, 10, 0)
		if err != nil || id == 0 {
			return fmt.Errorf("cart: invalid crop id %q", k)
		}
		if q > 0 {
			items[uint(id)] = q
		}
	}
	c.items = items
	return nil
}
