package models

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
	RoleKitchen  Role = "KITCHEN"
	RoleDelivery Role = "DELIVERY"
	// RoleSystem marks transitions made by the ticker or the status feed.
	RoleSystem Role = "SYSTEM"
)

func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleKitchen || r == RoleDelivery
}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Mobile string `json:"mobile,omitempty"`
}

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleCustomer, RoleAdmin, RoleKitchen, RoleDelivery:
		return r, true
	}
	return "", false
}
