package views

import "github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"

type DeliveryRow struct {
	Order   models.Order `json:"order"`
	Actions []Action     `json:"actions"`
}

type DeliveryView struct {
	Rows    []DeliveryRow `json:"rows"`
	Empty   bool          `json:"empty"`
	Message string        `json:"message,omitempty"`
}

// Delivery lists delivery orders that have not been delivered. Cancelled
// orders stay visible without actions so riders know not to pick them up.
func Delivery(orders []models.Order) DeliveryView {
	var rows []models.Order
	for _, o := range orders {
		if o.Type() == models.TypeDelivery && o.Status != models.StatusDelivered {
			rows = append(rows, o)
		}
	}
	oldestFirst(rows)

	v := DeliveryView{Rows: make([]DeliveryRow, 0, len(rows))}
	for _, o := range rows {
		r := DeliveryRow{Order: o, Actions: []Action{}}
		if !o.Status.IsTerminal() {
			if o.Status != models.StatusOutForDelivery {
				r.Actions = append(r.Actions, outForDeliver)
			}
			r.Actions = append(r.Actions, markDelivered)
		}
		v.Rows = append(v.Rows, r)
	}
	if len(v.Rows) == 0 {
		v.Empty = true
		v.Message = "No pending deliveries."
	}
	return v
}
