package models

import (
	"strings"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
)

type OrderType string

const (
	TypeDineIn   OrderType = "DINE_IN"
	TypeDelivery OrderType = "DELIVERY"
	TypePickup   OrderType = "PICKUP"
	TypePreOrder OrderType = "PRE_ORDER"
)

// OrderDetails carries the fields that only make sense for one order type.
// The set of variants is closed.
type OrderDetails interface {
	Type() OrderType
	Validate() error
	isOrderDetails()
}

type DineInDetails struct {
	TableNumber string
}

func (DineInDetails) Type() OrderType { return TypeDineIn }
func (DineInDetails) isOrderDetails() {}

func (d DineInDetails) Validate() error {
	if strings.TrimSpace(d.TableNumber) == "" {
		return apperrors.Validation("missing table number")
	}
	return nil
}

type DeliveryDetails struct {
	Address string
}

func (DeliveryDetails) Type() OrderType { return TypeDelivery }
func (DeliveryDetails) isOrderDetails() {}

func (d DeliveryDetails) Validate() error {
	if strings.TrimSpace(d.Address) == "" {
		return apperrors.Validation("missing delivery address")
	}
	return nil
}

type PickupDetails struct{}

func (PickupDetails) Type() OrderType { return TypePickup }
func (PickupDetails) isOrderDetails() {}
func (PickupDetails) Validate() error { return nil }

type PreOrderDetails struct {
	People int
	Time   string
}

func (PreOrderDetails) Type() OrderType { return TypePreOrder }
func (PreOrderDetails) isOrderDetails() {}

func (d PreOrderDetails) Validate() error {
	if d.People <= 0 {
		return apperrors.Validation("number of people must be positive")
	}
	if strings.TrimSpace(d.Time) == "" {
		return apperrors.Validation("missing pre-order time")
	}
	return nil
}

// NewDetails builds and validates the variant for t.
func NewDetails(t OrderType, table, address string, people int, at string) (OrderDetails, error) {
	d, err := detailsFor(t, table, address, people, at)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func detailsFor(t OrderType, table, address string, people int, at string) (OrderDetails, error) {
	switch t {
	case TypeDineIn:
		return DineInDetails{TableNumber: strings.TrimSpace(table)}, nil
	case TypeDelivery:
		return DeliveryDetails{Address: strings.TrimSpace(address)}, nil
	case TypePickup:
		return PickupDetails{}, nil
	case TypePreOrder:
		return PreOrderDetails{People: people, Time: strings.TrimSpace(at)}, nil
	}
	return nil, apperrors.Validation("unknown order type " + string(t))
}
