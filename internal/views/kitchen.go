package views

import (
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

const kitchenEmptyMessage = "No active orders in queue."

type KitchenTicket struct {
	Order      models.Order `json:"order"`
	AgeMinutes int          `json:"ageMinutes"`
	Actions    []Action     `json:"actions"`
}

type KitchenView struct {
	Tickets []KitchenTicket `json:"tickets"`
	Empty   bool            `json:"empty"`
	Message string          `json:"message,omitempty"`
}

// Kitchen lists orders still owned by the kitchen, oldest first.
func Kitchen(orders []models.Order, now time.Time) KitchenView {
	var active []models.Order
	for _, o := range orders {
		switch o.Status {
		case models.StatusPending, models.StatusPreparing, models.StatusReady:
			active = append(active, o)
		}
	}
	oldestFirst(active)

	v := KitchenView{Tickets: make([]KitchenTicket, 0, len(active))}
	for _, o := range active {
		t := KitchenTicket{
			Order:      o,
			AgeMinutes: int(o.Age(now) / time.Minute),
			Actions:    []Action{},
		}
		switch o.Status {
		case models.StatusPending:
			t.Actions = append(t.Actions, startCooking)
		case models.StatusPreparing:
			t.Actions = append(t.Actions, markReady)
		}
		v.Tickets = append(v.Tickets, t)
	}
	if len(v.Tickets) == 0 {
		v.Empty = true
		v.Message = kitchenEmptyMessage
	}
	return v
}
