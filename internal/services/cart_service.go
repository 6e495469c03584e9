package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/cart"
)

// CartService keeps one in-memory cart per session.
type CartService interface {
	Cart(sessionID string) *cart.Cart
	Add(sessionID, itemID string) (cart.Summary, error)
	Remove(sessionID, itemID string) cart.Summary
	Summary(sessionID string) cart.Summary
	Drop(sessionID string)
	EvictIdle(idle time.Duration) int
}

type cartEntry struct {
	cart     *cart.Cart
	lastUsed time.Time
}

type cartService struct {
	menu Menu
	now  func() time.Time

	mu    sync.Mutex
	carts map[string]*cartEntry
}

func NewCartService(menu Menu) CartService {
	return &cartService{menu: menu, now: time.Now, carts: make(map[string]*cartEntry)}
}

// Cart returns the session's cart, creating it on first use.
func (s *cartService) Cart(sessionID string) *cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.carts[sessionID]
	if !ok {
		e = &cartEntry{cart: cart.New()}
		s.carts[sessionID] = e
	}
	e.lastUsed = s.now()
	return e.cart
}

// Add puts one unit of the menu item in the cart. Items marked unavailable
// are refused.
func (s *cartService) Add(sessionID, itemID string) (cart.Summary, error) {
	item, ok := s.menu.Get(itemID)
	if !ok {
		return cart.Summary{}, fmt.Errorf("menu item %s: %w", itemID, apperrors.ErrNotFound)
	}
	if !item.IsAvailable {
		return cart.Summary{}, apperrors.Validation(item.Name + " is currently unavailable")
	}
	c := s.Cart(sessionID)
	c.Add(item)
	return c.Summary(), nil
}

func (s *cartService) Remove(sessionID, itemID string) cart.Summary {
	c := s.Cart(sessionID)
	c.Remove(itemID)
	return c.Summary()
}

func (s *cartService) Summary(sessionID string) cart.Summary {
	return s.Cart(sessionID).Summary()
}

func (s *cartService) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

// EvictIdle drops carts not touched for longer than idle and reports how
// many went. Every cart access follows a session lookup that refreshes the
// session TTL, so with idle set to that TTL only carts of expired sessions
// are dropped.
func (s *cartService) EvictIdle(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	n := 0
	for id, e := range s.carts {
		if e.lastUsed.Before(cutoff) {
			delete(s.carts, id)
			n++
		}
	}
	return n
}
