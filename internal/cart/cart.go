// Package cart implements the customer's working order: a multiset of menu
// items with per-item quantity.
package cart

import (
	"sync"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

type Cart struct {
	mu      sync.Mutex
	items   []models.CartItem
	version uint64
}

func New() *Cart {
	return &Cart{}
}

// Add increments the quantity of item, inserting it with quantity 1 when it
// is not yet present. The price is captured at the time of the first add.
func (c *Cart) Add(item models.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, models.CartItem{MenuItem: item, Quantity: 1})
}

// Remove decrements the quantity of itemID and drops the entry when it
// reaches zero. Unknown ids are ignored.
func (c *Cart) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID != itemID {
			continue
		}
		c.version++
		if c.items[i].Quantity > 1 {
			c.items[i].Quantity--
			return
		}
		c.items = append(c.items[:i], c.items[i+1:]...)
		return
	}
}

func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += it.LineTotal()
	}
	return total
}

func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartItem(nil), c.items...)
}

func (c *Cart) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.items))
	for _, it := range c.items {
		names = append(names, it.Name)
	}
	return names
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return
	}
	c.version++
	c.items = nil
}

// Snapshot returns the items together with the version they belong to.
func (c *Cart) Snapshot() ([]models.CartItem, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartItem(nil), c.items...), c.version
}

// ClearIf empties the cart only if it is still at version.
func (c *Cart) ClearIf(version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false
	}
	if len(c.items) > 0 {
		c.version++
		c.items = nil
	}
	return true
}

// Subtract takes the given quantities out of the cart, dropping entries that
// reach zero. Items not in the cart are ignored.
func (c *Cart) Subtract(lines []models.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range lines {
		for i := range c.items {
			if c.items[i].ID != line.ID {
				continue
			}
			c.version++
			c.items[i].Quantity -= line.Quantity
			if c.items[i].Quantity <= 0 {
				c.items = append(c.items[:i], c.items[i+1:]...)
			}
			break
		}
	}
}

// Version changes on every mutation.
func (c *Cart) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Summary is the read model returned to clients.
type Summary struct {
	Items []models.CartItem `json:"items"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

func (c *Cart) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Summary{Items: append([]models.CartItem{}, c.items...)}
	for _, it := range c.items {
		s.Total += it.LineTotal()
		s.Count += it.Quantity
	}
	return s
}
