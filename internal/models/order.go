package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReady          OrderStatus = "READY"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

var statusRank = map[OrderStatus]int{
	StatusPending:        0,
	StatusPreparing:      1,
	StatusReady:          2,
	StatusOutForDelivery: 3,
	StatusDelivered:      4,
}

// Rank is the position along the forward pipeline. CANCELLED and unknown
// values have no rank and report -1.
func (s OrderStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) Valid() bool {
	return s == StatusCancelled || s.Rank() >= 0
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

type Order struct {
	ID                  string
	CustomerName        string
	Items               []CartItem
	TotalAmount         int64
	Status              OrderStatus
	Details             OrderDetails
	SpecialInstructions string
	Timestamp           time.Time
}

func (o Order) Type() OrderType {
	if o.Details == nil {
		return ""
	}
	return o.Details.Type()
}

func (o Order) TableNumber() string {
	if d, ok := o.Details.(DineInDetails); ok {
		return d.TableNumber
	}
	return ""
}

func (o Order) DeliveryAddress() string {
	if d, ok := o.Details.(DeliveryDetails); ok {
		return d.Address
	}
	return ""
}

func (o Order) Age(now time.Time) time.Duration {
	return now.Sub(o.Timestamp)
}

func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Clone returns a copy that shares no item storage with o.
func (o Order) Clone() Order {
	c := o
	c.Items = make([]CartItem, len(o.Items))
	copy(c.Items, o.Items)
	return c
}

type orderJSON struct {
	ID                  string      `json:"id"`
	CustomerName        string      `json:"customerName"`
	Items               []CartItem  `json:"items"`
	TotalAmount         int64       `json:"totalAmount"`
	Status              OrderStatus `json:"status"`
	Type                OrderType   `json:"type"`
	Timestamp           time.Time   `json:"timestamp"`
	TableNumber         string      `json:"tableNumber,omitempty"`
	DeliveryAddress     string      `json:"deliveryAddress,omitempty"`
	People              int         `json:"people,omitempty"`
	Time                string      `json:"time,omitempty"`
	SpecialInstructions string      `json:"specialInstructions,omitempty"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	out := orderJSON{
		ID:                  o.ID,
		CustomerName:        o.CustomerName,
		Items:               o.Items,
		TotalAmount:         o.TotalAmount,
		Status:              o.Status,
		Type:                o.Type(),
		Timestamp:           o.Timestamp,
		TableNumber:         o.TableNumber(),
		DeliveryAddress:     o.DeliveryAddress(),
		SpecialInstructions: o.SpecialInstructions,
	}
	if out.Items == nil {
		out.Items = []CartItem{}
	}
	if p, ok := o.Details.(PreOrderDetails); ok {
		out.People = p.People
		out.Time = p.Time
	}
	return json.Marshal(out)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var in orderJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	details, err := detailsFor(in.Type, in.TableNumber, in.DeliveryAddress, in.People, in.Time)
	if err != nil {
		return err
	}
	*o = Order{
		ID:                  in.ID,
		CustomerName:        in.CustomerName,
		Items:               in.Items,
		TotalAmount:         in.TotalAmount,
		Status:              in.Status,
		Details:             details,
		SpecialInstructions: in.SpecialInstructions,
		Timestamp:           in.Timestamp,
	}
	return nil
}

type StatusChange struct {
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedBy Role        `json:"changedBy"`
	At        time.Time   `json:"at"`
}

type EventKind string

const (
	EventPlaced        EventKind = "order.placed"
	EventStatusChanged EventKind = "order.status_changed"
)

// OrderEvent is emitted by the order store after every applied mutation.
// Change is set only for EventStatusChanged.
type OrderEvent struct {
	Kind   EventKind     `json:"kind"`
	Order  Order         `json:"order"`
	Change *StatusChange `json:"change,omitempty"`
}
