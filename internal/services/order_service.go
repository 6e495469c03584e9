package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/store"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/views"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, sessionID string, user models.User, req PlaceOrderRequest) (models.Order, error)
	UpdateStatus(ctx context.Context, user models.User, orderID string, next models.OrderStatus) (models.Order, error)
	GetOrder(ctx context.Context, orderID string) (models.Order, error)

	KitchenView(ctx context.Context) (views.KitchenView, error)
	DeliveryView(ctx context.Context) (views.DeliveryView, error)
	CustomerView(ctx context.Context, user models.User) (views.CustomerView, error)
	AdminView(ctx context.Context) (views.AdminView, error)
}

// PlaceOrderRequest is the checkout form. Only the fields belonging to Type
// are read.
type PlaceOrderRequest struct {
	Type                models.OrderType `json:"type"`
	TableNumber         string           `json:"tableNumber"`
	DeliveryAddress     string           `json:"deliveryAddress"`
	People              int              `json:"people"`
	Time                string           `json:"time"`
	SpecialInstructions string           `json:"specialInstructions"`
}

type orderService struct {
	store OrderStore
	carts CartService
	menu  Menu
	now   func() time.Time
}

func NewOrderService(store OrderStore, carts CartService, menu Menu, now func() time.Time) OrderService {
	if now == nil {
		now = time.Now
	}
	return &orderService{store: store, carts: carts, menu: menu, now: now}
}

// PlaceOrder turns the session's cart into a PENDING order and takes the
// ordered items out of the cart. The cart is left alone when placement fails.
func (s *orderService) PlaceOrder(ctx context.Context, sessionID string, user models.User, req PlaceOrderRequest) (models.Order, error) {
	details, err := models.NewDetails(req.Type, req.TableNumber, req.DeliveryAddress, req.People, req.Time)
	if err != nil {
		return models.Order{}, err
	}
	c := s.carts.Cart(sessionID)
	items, version := c.Snapshot()
	order, err := s.store.Place(ctx, store.PlaceRequest{
		CustomerName:        user.Name,
		Items:               items,
		Details:             details,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		return models.Order{}, err
	}
	// Items added while the order was being placed stay in the cart.
	if !c.ClearIf(version) {
		c.Subtract(items)
	}
	return order, nil
}

// UpdateStatus moves the order on behalf of user. The role check runs
// against the order as it is when the move is applied.
func (s *orderService) UpdateStatus(ctx context.Context, user models.User, orderID string, next models.OrderStatus) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, apperrors.Validation("unknown order status " + string(next))
	}
	return s.store.UpdateStatusIf(ctx, orderID, next, user.Role, func(cur models.Order) error {
		if !views.Permitted(user.Role, user, cur, next) {
			return fmt.Errorf("%s may not move order %s from %s to %s: %w",
				user.Role, cur.ID, cur.Status, next, apperrors.ErrForbidden)
		}
		return nil
	})
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	return s.store.Get(ctx, orderID)
}

func (s *orderService) KitchenView(ctx context.Context) (views.KitchenView, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return views.KitchenView{}, err
	}
	return views.Kitchen(orders, s.now()), nil
}

func (s *orderService) DeliveryView(ctx context.Context) (views.DeliveryView, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return views.DeliveryView{}, err
	}
	return views.Delivery(orders), nil
}

func (s *orderService) CustomerView(ctx context.Context, user models.User) (views.CustomerView, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return views.CustomerView{}, err
	}
	return views.Customer(orders, user.Name), nil
}

func (s *orderService) AdminView(ctx context.Context) (views.AdminView, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return views.AdminView{}, err
	}
	return views.Admin(orders, s.menu.List(), s.menu.Tables()), nil
}
