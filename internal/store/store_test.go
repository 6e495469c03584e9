package store

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/cart"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

var (
	butterChicken = models.MenuItem{ID: "301", Name: "Butter Chicken", Price: 380, Category: models.MainCourse, IsAvailable: true}
	garlicNaan    = models.MenuItem{ID: "404", Name: "Garlic Naan", Price: 60, Category: models.Breads, IsAvailable: true}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, opts ...Option) (*OrderStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)}
	s := New(append([]Option{WithClock(clock.Now)}, opts...)...)
	t.Cleanup(s.Close)
	return s, clock
}

func placeDelivery(t *testing.T, s *OrderStore) models.Order {
	t.Helper()
	c := cart.New()
	c.Add(butterChicken)
	c.Add(garlicNaan)
	c.Add(garlicNaan)
	o, err := s.Place(context.Background(), PlaceRequest{
		CustomerName: "Asha",
		Items:        c.Items(),
		Details:      models.DeliveryDetails{Address: "12 Highway Rd"},
	})
	require.NoError(t, err)
	return o
}

func TestOrderStore_Place(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	o := placeDelivery(t, s)
	assert.Equal(t, "ORD-1001", o.ID)
	assert.Equal(t, int64(500), o.TotalAmount)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, models.TypeDelivery, o.Type())
	assert.Equal(t, "12 Highway Rd", o.DeliveryAddress())
	assert.Equal(t, clock.Now(), o.Timestamp)

	orders, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
}

func TestOrderStore_PlaceRejectsEmptyCart(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Place(ctx, PlaceRequest{Details: models.PickupDetails{}})
	assert.True(t, apperrors.IsValidation(err))

	_, err = s.Place(ctx, PlaceRequest{
		Items:   []models.CartItem{{MenuItem: garlicNaan, Quantity: 1}},
		Details: models.DeliveryDetails{},
	})
	assert.True(t, apperrors.IsValidation(err))

	orders, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderStore_SnapshotIsIndependentOfCart(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	items := []models.CartItem{{MenuItem: butterChicken, Quantity: 1}}
	o, err := s.Place(ctx, PlaceRequest{Items: items, Details: models.PickupDetails{}})
	require.NoError(t, err)

	items[0].Quantity = 10
	items[0].Price = 1
	o.Items[0].Quantity = 7

	stored, err := s.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Items[0].Quantity)
	assert.Equal(t, int64(380), stored.Items[0].Price)
	assert.Equal(t, int64(380), stored.TotalAmount)
}

func TestOrderStore_DefaultCustomerName(t *testing.T) {
	s, _ := newTestStore(t)
	o, err := s.Place(context.Background(), PlaceRequest{
		Items:   []models.CartItem{{MenuItem: garlicNaan, Quantity: 1}},
		Details: models.PickupDetails{},
	})
	require.NoError(t, err)
	assert.Equal(t, "Customer", o.CustomerName)
}

func TestOrderStore_UpdateStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	o := placeDelivery(t, s)

	got, err := s.UpdateStatus(ctx, o.ID, models.StatusPreparing, models.RoleKitchen)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, got.Status)

	got, err = s.UpdateStatus(ctx, o.ID, models.StatusPending, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.StatusPreparing, got.Status)

	_, err = s.UpdateStatus(ctx, o.ID, models.StatusDelivered, models.RoleDelivery)
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{models.StatusCancelled, models.StatusReady, models.StatusDelivered} {
		_, err = s.UpdateStatus(ctx, o.ID, next, models.RoleAdmin)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	stored, err := s.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)

	_, err = s.UpdateStatus(ctx, "ORD-9999", models.StatusReady, models.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderStore_UpdateStatusIfGuard(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	o := placeDelivery(t, s)

	onlyPending := func(cur models.Order) error {
		if cur.Status != models.StatusPending {
			return apperrors.ErrForbidden
		}
		return nil
	}

	_, err := s.UpdateStatus(ctx, o.ID, models.StatusPreparing, models.RoleSystem)
	require.NoError(t, err)

	got, err := s.UpdateStatusIf(ctx, o.ID, models.StatusCancelled, models.RoleCustomer, onlyPending)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, models.StatusPreparing, got.Status)

	got, err = s.UpdateStatusIf(ctx, o.ID, models.StatusCancelled, models.RoleAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestOrderStore_StatusNeverMovesBackward(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	all := []models.OrderStatus{
		models.StatusPending, models.StatusPreparing, models.StatusReady,
		models.StatusOutForDelivery, models.StatusDelivered, models.StatusCancelled,
	}

	for run := 0; run < 30; run++ {
		o := placeDelivery(t, s)
		history := []models.OrderStatus{o.Status}
		for step := 0; step < 20; step++ {
			got, _ := s.UpdateStatus(ctx, o.ID, all[rng.Intn(len(all))], models.RoleAdmin)
			if got.Status != history[len(history)-1] {
				history = append(history, got.Status)
			}
		}
		for i := 1; i < len(history); i++ {
			prev, cur := history[i-1], history[i]
			require.False(t, prev.IsTerminal(), "moved out of terminal status in %v", history)
			if cur != models.StatusCancelled {
				require.Greater(t, cur.Rank(), prev.Rank(), "backward move in %v", history)
			}
		}
	}
}

func TestOrderStore_AutoAdvance(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	o := placeDelivery(t, s)
	always := func() bool { return true }

	changes, err := s.AutoAdvance(ctx, clock.Now().Add(10*time.Second), always)
	require.NoError(t, err)
	assert.Empty(t, changes)

	changes, err = s.AutoAdvance(ctx, clock.Now().Add(31*time.Second), always)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.StatusChange{
		OrderID: o.ID, From: models.StatusPending, To: models.StatusPreparing,
		ChangedBy: models.RoleSystem, At: clock.Now().Add(31 * time.Second),
	}, changes[0])

	changes, err = s.AutoAdvance(ctx, clock.Now().Add(121*time.Second), func() bool { return false })
	require.NoError(t, err)
	assert.Empty(t, changes)

	changes, err = s.AutoAdvance(ctx, clock.Now().Add(121*time.Second), always)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.StatusReady, changes[0].To)

	changes, err = s.AutoAdvance(ctx, clock.Now().Add(time.Hour), always)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestOrderStore_AutoAdvanceSkipsTerminalOrders(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	o := placeDelivery(t, s)
	_, err := s.UpdateStatus(ctx, o.ID, models.StatusCancelled, models.RoleAdmin)
	require.NoError(t, err)

	gateCalls := 0
	changes, err := s.AutoAdvance(ctx, clock.Now().Add(time.Hour), func() bool { gateCalls++; return true })
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Zero(t, gateCalls)
}

func TestOrderStore_ConcurrentPlaceGivesUniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const n = 100
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := s.Place(ctx, PlaceRequest{
				Items:   []models.CartItem{{MenuItem: garlicNaan, Quantity: 1}},
				Details: models.PickupDetails{},
			})
			if err == nil {
				ids <- o.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestOrderStore_Seed(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	seed := models.Order{
		ID: "ORD-1001", CustomerName: "Rahul Kumar", Status: models.StatusReady,
		Details: models.PickupDetails{}, Timestamp: clock.Now().Add(-30 * time.Minute),
		Items: []models.CartItem{{MenuItem: garlicNaan, Quantity: 1}}, TotalAmount: 60,
	}
	require.NoError(t, s.Seed(ctx, seed))
	assert.True(t, apperrors.IsValidation(s.Seed(ctx, seed)))

	o := placeDelivery(t, s)
	assert.Equal(t, "ORD-1002", o.ID, "generated ids skip seeded ones")

	orders, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderStore_Subscribe(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	events, cancel, err := s.Subscribe(ctx, 8)
	require.NoError(t, err)

	o := placeDelivery(t, s)
	_, err = s.UpdateStatus(ctx, o.ID, models.StatusPreparing, models.RoleKitchen)
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, models.EventPlaced, ev.Kind)
	assert.Equal(t, o.ID, ev.Order.ID)

	ev = <-events
	assert.Equal(t, models.EventStatusChanged, ev.Kind)
	require.NotNil(t, ev.Change)
	assert.Equal(t, models.StatusPending, ev.Change.From)
	assert.Equal(t, models.StatusPreparing, ev.Change.To)
	assert.Equal(t, models.RoleKitchen, ev.Change.ChangedBy)

	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestOrderStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	s, _ := newTestStore(t)
	_, cancel, err := s.Subscribe(context.Background(), 0)
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 5; i++ {
		placeDelivery(t, s)
	}
	orders, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 5)
}

func TestOrderStore_Closed(t *testing.T) {
	s, _ := newTestStore(t)
	events, _, err := s.Subscribe(context.Background(), 1)
	require.NoError(t, err)

	s.Close()
	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, open := <-events
	assert.False(t, open)
}

func ExampleOrderStore_UpdateStatus() {
	s := New()
	defer s.Close()
	ctx := context.Background()

	o, _ := s.Place(ctx, PlaceRequest{
		CustomerName: "Asha",
		Items:        []models.CartItem{{MenuItem: garlicNaan, Quantity: 2}},
		Details:      models.DineInDetails{TableNumber: "4"},
	})
	o, _ = s.UpdateStatus(ctx, o.ID, models.StatusPreparing, models.RoleKitchen)
	_, err := s.UpdateStatus(ctx, o.ID, models.StatusPending, models.RoleKitchen)
	fmt.Println(o.Status, err != nil)
	// Output: PREPARING true
}
