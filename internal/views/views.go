// Package views projects the order list into what each role looks at. Every
// function here is pure and total: an empty or unmatched input yields an
// empty view, never an error.
package views

import (
	"sort"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

type ActionName string

const (
	ActionStartCooking  ActionName = "start_cooking"
	ActionMarkReady     ActionName = "mark_ready"
	ActionOutForDeliver ActionName = "out_for_delivery"
	ActionMarkDelivered ActionName = "mark_delivered"
	ActionCancel        ActionName = "cancel"
)

type Action struct {
	Name   ActionName         `json:"name"`
	Label  string             `json:"label"`
	Target models.OrderStatus `json:"target"`
}

var (
	startCooking  = Action{Name: ActionStartCooking, Label: "Start Cooking", Target: models.StatusPreparing}
	markReady     = Action{Name: ActionMarkReady, Label: "Mark Ready", Target: models.StatusReady}
	outForDeliver = Action{Name: ActionOutForDeliver, Label: "Out for Delivery", Target: models.StatusOutForDelivery}
	markDelivered = Action{Name: ActionMarkDelivered, Label: "Mark Delivered", Target: models.StatusDelivered}
	cancelOrder   = Action{Name: ActionCancel, Label: "Cancel Order", Target: models.StatusCancelled}
)

// Permitted reports whether role may move order to next. The lifecycle rules
// are checked separately by the store.
func Permitted(role models.Role, user models.User, order models.Order, next models.OrderStatus) bool {
	switch role {
	case models.RoleAdmin, models.RoleSystem:
		return true
	case models.RoleKitchen:
		return (order.Status == models.StatusPending && next == models.StatusPreparing) ||
			(order.Status == models.StatusPreparing && next == models.StatusReady)
	case models.RoleDelivery:
		return order.Type() == models.TypeDelivery &&
			(next == models.StatusOutForDelivery || next == models.StatusDelivered)
	case models.RoleCustomer:
		return order.CustomerName == user.Name &&
			order.Status == models.StatusPending && next == models.StatusCancelled
	}
	return false
}

// oldestFirst sorts by creation time, then id for a stable order.
func oldestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Timestamp.Equal(orders[j].Timestamp) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].Timestamp.Before(orders[j].Timestamp)
	})
}
