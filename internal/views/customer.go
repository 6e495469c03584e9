package views

import (
	"sort"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

type CustomerView struct {
	Orders []models.Order `json:"orders"`
	// Banner is the most recent order that is still in progress.
	Banner  *models.Order `json:"banner"`
	Actions []Action      `json:"bannerActions"`
	Empty   bool          `json:"empty"`
	Message string        `json:"message,omitempty"`
}

// Customer lists the orders placed under name, newest first.
func Customer(orders []models.Order, name string) CustomerView {
	v := CustomerView{Orders: []models.Order{}, Actions: []Action{}}
	for _, o := range orders {
		if name != "" && o.CustomerName == name {
			v.Orders = append(v.Orders, o)
		}
	}
	sort.SliceStable(v.Orders, func(i, j int) bool {
		if v.Orders[i].Timestamp.Equal(v.Orders[j].Timestamp) {
			return v.Orders[i].ID > v.Orders[j].ID
		}
		return v.Orders[i].Timestamp.After(v.Orders[j].Timestamp)
	})
	for i := range v.Orders {
		if !v.Orders[i].Status.IsTerminal() {
			banner := v.Orders[i]
			v.Banner = &banner
			if banner.Status == models.StatusPending {
				v.Actions = append(v.Actions, cancelOrder)
			}
			break
		}
	}
	if len(v.Orders) == 0 {
		v.Empty = true
		v.Message = "You have not placed any orders yet."
	}
	return v
}
