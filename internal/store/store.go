// Package store holds the canonical list of orders. A single goroutine owns
// the orders; every read and write is a closure executed on that goroutine,
// so mutations from staff, the simulation ticker and the status feed are
// applied one at a time in arrival order.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

var (
	ErrClosed = errors.New("order store closed")
	ErrBusy   = errors.New("order store is busy")
)

const defaultCustomerName = "Customer"

type PlaceRequest struct {
	CustomerName        string
	Items               []models.CartItem
	Details             models.OrderDetails
	SpecialInstructions string
}

type Option func(*OrderStore)

func WithClock(now func() time.Time) Option {
	return func(s *OrderStore) { s.now = now }
}

// WithTimeout bounds how long a caller waits for the store goroutine.
func WithTimeout(d time.Duration) Option {
	return func(s *OrderStore) { s.timeout = d }
}

func WithThresholds(t Thresholds) Option {
	return func(s *OrderStore) { s.thresholds = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *OrderStore) { s.logger = l }
}

// WithFirstID sets the counter used for generated ids. The first placed
// order gets n+1.
func WithFirstID(n int) Option {
	return func(s *OrderStore) { s.nextID = n }
}

type OrderStore struct {
	now        func() time.Time
	timeout    time.Duration
	thresholds Thresholds
	logger     *slog.Logger

	ops       chan func()
	quit      chan struct{}
	closeOnce sync.Once

	// Owned by loop.
	orders  []models.Order
	index   map[string]int
	nextID  int
	subs    map[int]chan models.OrderEvent
	nextSub int
}

func New(opts ...Option) *OrderStore {
	s := &OrderStore{
		now:        time.Now,
		timeout:    2 * time.Second,
		thresholds: DefaultThresholds,
		logger:     slog.Default(),
		ops:        make(chan func()),
		quit:       make(chan struct{}),
		index:      make(map[string]int),
		nextID:     1000,
		subs:       make(map[int]chan models.OrderEvent),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s
}

func (s *OrderStore) loop() {
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.quit:
			for id, ch := range s.subs {
				close(ch)
				delete(s.subs, id)
			}
			return
		}
	}
}

// run executes fn on the store goroutine and waits for it. Once accepted, fn
// always runs to completion even if ctx ends first.
func (s *OrderStore) run(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	op := func() {
		fn()
		close(done)
	}

	select {
	case <-s.quit:
		return ErrClosed
	default:
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case s.ops <- op:
	case <-s.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrBusy
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("waiting for order store: %w", ErrBusy)
	}
}

// Place snapshots the given items into a new PENDING order.
func (s *OrderStore) Place(ctx context.Context, req PlaceRequest) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, apperrors.Validation("cart is empty")
	}
	if req.Details == nil {
		return models.Order{}, apperrors.Validation("order type is required")
	}
	if err := req.Details.Validate(); err != nil {
		return models.Order{}, err
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return models.Order{}, apperrors.Validation("item quantity must be positive")
		}
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = defaultCustomerName
	}

	var placed models.Order
	err := s.run(ctx, func() {
		o := models.Order{
			ID:                  s.generateID(),
			CustomerName:        name,
			Items:               append([]models.CartItem(nil), req.Items...),
			Status:              models.StatusPending,
			Details:             req.Details,
			SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
			Timestamp:           s.now(),
		}
		for _, it := range o.Items {
			o.TotalAmount += it.LineTotal()
		}
		s.insert(o)
		placed = o.Clone()
		s.publish(models.OrderEvent{Kind: models.EventPlaced, Order: o.Clone()})
	})
	if err != nil {
		return models.Order{}, err
	}
	return placed, nil
}

func (s *OrderStore) generateID() string {
	for {
		s.nextID++
		id := fmt.Sprintf("ORD-%d", s.nextID)
		if _, taken := s.index[id]; !taken {
			return id
		}
	}
}

func (s *OrderStore) insert(o models.Order) {
	s.index[o.ID] = len(s.orders)
	s.orders = append(s.orders, o)
}

// Seed loads existing orders as they are, keeping their ids and statuses.
func (s *OrderStore) Seed(ctx context.Context, orders ...models.Order) error {
	for _, o := range orders {
		if o.ID == "" || o.Details == nil || !o.Status.Valid() {
			return apperrors.Validation("seed order " + o.ID + " is incomplete")
		}
	}
	var seedErr error
	err := s.run(ctx, func() {
		for _, o := range orders {
			if _, dup := s.index[o.ID]; dup {
				seedErr = apperrors.Validation("duplicate order id " + o.ID)
				return
			}
		}
		for _, o := range orders {
			s.insert(o.Clone())
			s.publish(models.OrderEvent{Kind: models.EventPlaced, Order: o.Clone()})
		}
	})
	if err != nil {
		return err
	}
	return seedErr
}

// UpdateStatus applies next to the order if the transition is legal. An
// illegal transition returns a *TransitionError together with the unchanged
// order.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, next models.OrderStatus, by models.Role) (models.Order, error) {
	return s.UpdateStatusIf(ctx, id, next, by, nil)
}

// UpdateStatusIf is UpdateStatus with a guard evaluated against the current
// order on the store goroutine. A non-nil error from guard aborts the update
// and is returned as is.
func (s *OrderStore) UpdateStatusIf(ctx context.Context, id string, next models.OrderStatus, by models.Role, guard func(models.Order) error) (models.Order, error) {
	var (
		out   models.Order
		opErr error
	)
	err := s.run(ctx, func() {
		i, ok := s.index[id]
		if !ok {
			opErr = fmt.Errorf("order %s: %w", id, apperrors.ErrNotFound)
			return
		}
		o := &s.orders[i]
		out = o.Clone()
		if guard != nil {
			if opErr = guard(out); opErr != nil {
				return
			}
		}
		if opErr = CanTransition(*o, next); opErr != nil {
			return
		}
		s.apply(o, next, by, s.now())
		out = o.Clone()
	})
	if err != nil {
		return models.Order{}, err
	}
	return out, opErr
}

// AutoAdvance evaluates every non-terminal order once against the automatic
// thresholds. gate is consulted per order and the order is skipped when it
// returns false. The whole pass runs as one step on the store goroutine.
func (s *OrderStore) AutoAdvance(ctx context.Context, now time.Time, gate func() bool) ([]models.StatusChange, error) {
	var changes []models.StatusChange
	err := s.run(ctx, func() {
		for i := range s.orders {
			o := &s.orders[i]
			if o.Status.IsTerminal() {
				continue
			}
			if gate != nil && !gate() {
				continue
			}
			next, ok := s.thresholds.NextAutomatic(*o, now)
			if !ok {
				continue
			}
			changes = append(changes, s.apply(o, next, models.RoleSystem, now))
		}
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *OrderStore) apply(o *models.Order, next models.OrderStatus, by models.Role, at time.Time) models.StatusChange {
	change := models.StatusChange{
		OrderID:   o.ID,
		From:      o.Status,
		To:        next,
		ChangedBy: by,
		At:        at,
	}
	o.Status = next
	s.publish(models.OrderEvent{Kind: models.EventStatusChanged, Order: o.Clone(), Change: &change})
	return change
}

// List returns every order in placement order.
func (s *OrderStore) List(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := s.run(ctx, func() {
		out = make([]models.Order, len(s.orders))
		for i, o := range s.orders {
			out[i] = o.Clone()
		}
	})
	return out, err
}

func (s *OrderStore) Get(ctx context.Context, id string) (models.Order, error) {
	var (
		out   models.Order
		found bool
	)
	err := s.run(ctx, func() {
		if i, ok := s.index[id]; ok {
			out, found = s.orders[i].Clone(), true
		}
	})
	if err != nil {
		return models.Order{}, err
	}
	if !found {
		return models.Order{}, fmt.Errorf("order %s: %w", id, apperrors.ErrNotFound)
	}
	return out, nil
}

// Subscribe registers a listener for order events. Delivery never blocks the
// store: events are dropped for a subscriber whose buffer is full. The
// channel is closed by cancel or when the store closes.
func (s *OrderStore) Subscribe(ctx context.Context, buffer int) (<-chan models.OrderEvent, func(), error) {
	ch := make(chan models.OrderEvent, buffer)
	var id int
	err := s.run(ctx, func() {
		s.nextSub++
		id = s.nextSub
		s.subs[id] = ch
	})
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = s.run(context.Background(), func() {
				if c, ok := s.subs[id]; ok {
					delete(s.subs, id)
					close(c)
				}
			})
		})
	}
	return ch, cancel, nil
}

func (s *OrderStore) publish(ev models.OrderEvent) {
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("dropping order event for slow subscriber",
				"subscriber", id, "order_id", ev.Order.ID, "kind", ev.Kind)
		}
	}
}

func (s *OrderStore) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}
