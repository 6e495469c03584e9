package views

import (
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

type DaySales struct {
	Day   string `json:"name"`
	Sales int64  `json:"sales"`
}

type TableSummary struct {
	Total    int            `json:"total"`
	Occupied int            `json:"occupied"`
	Tables   []models.Table `json:"tables"`
}

type AdminView struct {
	TotalRevenue   int64                      `json:"totalRevenue"`
	TotalOrders    int                        `json:"totalOrders"`
	ActiveOrders   int                        `json:"activeOrders"`
	AverageOrder   int64                      `json:"averageOrderValue"`
	StatusCounts   map[models.OrderStatus]int `json:"statusCounts"`
	SalesByWeekday []DaySales                 `json:"salesByWeekday"`
	Tables         TableSummary               `json:"tables"`
	Menu           []models.MenuItem          `json:"menu"`
	RecentOrders   []models.Order             `json:"recentOrders"`
	Empty          bool                       `json:"empty"`
}

const recentOrderLimit = 10

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Admin aggregates the whole order list. Revenue excludes cancelled orders.
func Admin(orders []models.Order, menu []models.MenuItem, tables []models.Table) AdminView {
	v := AdminView{
		StatusCounts: make(map[models.OrderStatus]int),
		Menu:         append([]models.MenuItem{}, menu...),
		Tables:       TableSummary{Total: len(tables), Tables: append([]models.Table{}, tables...)},
		RecentOrders: []models.Order{},
		TotalOrders:  len(orders),
		Empty:        len(orders) == 0,
	}

	byDay := make(map[time.Weekday]int64)
	var paid int64
	for _, o := range orders {
		v.StatusCounts[o.Status]++
		if !o.Status.IsTerminal() {
			v.ActiveOrders++
		}
		if o.Status == models.StatusCancelled {
			continue
		}
		v.TotalRevenue += o.TotalAmount
		byDay[o.Timestamp.Weekday()] += o.TotalAmount
		paid++
	}
	if paid > 0 {
		v.AverageOrder = v.TotalRevenue / paid
	}
	for _, d := range weekdays {
		v.SalesByWeekday = append(v.SalesByWeekday, DaySales{Day: d.String()[:3], Sales: byDay[d]})
	}
	for _, t := range tables {
		if t.IsOccupied {
			v.Tables.Occupied++
		}
	}

	recent := append([]models.Order(nil), orders...)
	oldestFirst(recent)
	for i := len(recent) - 1; i >= 0 && len(v.RecentOrders) < recentOrderLimit; i-- {
		v.RecentOrders = append(v.RecentOrders, recent[i])
	}
	return v
}
