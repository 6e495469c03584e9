// Package catalog holds the menu and the dining tables. Item descriptions
// are the only thing that may change after load.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

//go:embed menu.yaml
var defaultMenu []byte

type Catalog struct {
	mu     sync.RWMutex
	items  []models.MenuItem
	index  map[string]int
	tables []models.Table
	demo   []demoOrder
}

type catalogFile struct {
	Items      []models.MenuItem `yaml:"items"`
	Tables     []models.Table    `yaml:"tables"`
	DemoOrders []demoOrder       `yaml:"demo_orders"`
}

type demoOrder struct {
	ID         string             `yaml:"id"`
	Customer   string             `yaml:"customer"`
	Status     models.OrderStatus `yaml:"status"`
	Type       models.OrderType   `yaml:"type"`
	Table      string             `yaml:"table"`
	Address    string             `yaml:"address"`
	AgeMinutes int                `yaml:"age_minutes"`
	Items      []struct {
		ID       string `yaml:"id"`
		Quantity int    `yaml:"quantity"`
	} `yaml:"items"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultMenu)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	c, err := build(f.Items, f.Tables)
	if err != nil {
		return nil, err
	}
	c.demo = f.DemoOrders
	return c, nil
}

// New builds a catalog from explicit items.
func New(items []models.MenuItem, tables []models.Table) (*Catalog, error) {
	return build(items, tables)
}

func build(items []models.MenuItem, tables []models.Table) (*Catalog, error) {
	c := &Catalog{
		items:  make([]models.MenuItem, 0, len(items)),
		index:  make(map[string]int, len(items)),
		tables: append([]models.Table(nil), tables...),
	}
	for _, it := range items {
		switch {
		case it.ID == "":
			return nil, fmt.Errorf("menu item %q has no id", it.Name)
		case strings.TrimSpace(it.Name) == "":
			return nil, fmt.Errorf("menu item %s has no name", it.ID)
		case it.Price <= 0:
			return nil, fmt.Errorf("menu item %s has non-positive price %d", it.ID, it.Price)
		case !it.Category.Valid():
			return nil, fmt.Errorf("menu item %s has unknown category %q", it.ID, it.Category)
		}
		if _, dup := c.index[it.ID]; dup {
			return nil, fmt.Errorf("duplicate menu item id %s", it.ID)
		}
		c.index[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

func (c *Catalog) List() []models.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.MenuItem(nil), c.items...)
}

func (c *Catalog) Get(id string) (models.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return models.MenuItem{}, false
	}
	return c.items[i], true
}

// Categories returns each category present, in first-seen order.
func (c *Catalog) Categories() []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[models.Category]bool)
	var out []models.Category
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

func (c *Catalog) UpdateDescription(id, text string) (models.MenuItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.MenuItem{}, apperrors.Validation("description must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, apperrors.ErrNotFound)
	}
	c.items[i].Description = text
	return c.items[i], nil
}

func (c *Catalog) Tables() []models.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Table(nil), c.tables...)
}

// DemoOrders materialises the seeded orders with timestamps relative to now.
func (c *Catalog) DemoOrders(now time.Time) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(c.demo))
	for _, d := range c.demo {
		details, err := models.NewDetails(d.Type, d.Table, d.Address, 0, "")
		if err != nil {
			return nil, fmt.Errorf("demo order %s: %w", d.ID, err)
		}
		if !d.Status.Valid() {
			return nil, fmt.Errorf("demo order %s: unknown status %q", d.ID, d.Status)
		}
		o := models.Order{
			ID:           d.ID,
			CustomerName: d.Customer,
			Status:       d.Status,
			Details:      details,
			Timestamp:    now.Add(-time.Duration(d.AgeMinutes) * time.Minute),
		}
		for _, line := range d.Items {
			item, ok := c.Get(line.ID)
			if !ok {
				return nil, fmt.Errorf("demo order %s: unknown item %s", d.ID, line.ID)
			}
			ci := models.CartItem{MenuItem: item, Quantity: line.Quantity}
			o.Items = append(o.Items, ci)
			o.TotalAmount += ci.LineTotal()
		}
		orders = append(orders, o)
	}
	return orders, nil
}
