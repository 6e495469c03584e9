package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderRecord is the archived copy of an order. Order ids restart with every
// process, so a record is identified by the id together with its placement
// time.
type OrderRecord struct {
	ID                  uint              `json:"id" gorm:"primaryKey"`
	OrderID             string            `json:"order_id" gorm:"size:32;not null;uniqueIndex:idx_order_placed"`
	CustomerName        string            `json:"customer_name"`
	OrderType           string            `json:"order_type" gorm:"size:16;not null"`
	Status              string            `json:"status" gorm:"size:24;not null;index"`
	TotalAmount         int64             `json:"total_amount"`
	TableNumber         string            `json:"table_number"`
	DeliveryAddress     string            `json:"delivery_address"`
	People              int               `json:"people"`
	PreOrderTime        string            `json:"pre_order_time"`
	SpecialInstructions string            `json:"special_instructions"`
	PlacedAt            time.Time         `json:"placed_at" gorm:"not null;uniqueIndex:idx_order_placed"`
	Items               []OrderItemRecord `json:"items" gorm:"foreignKey:OrderRecordID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	DeletedAt           gorm.DeletedAt    `json:"deleted_at" gorm:"index"`
}

type OrderItemRecord struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	OrderRecordID uint   `json:"order_record_id" gorm:"not null;index"`
	MenuItemID    string `json:"menu_item_id" gorm:"size:32;not null"`
	Name          string `json:"name" gorm:"not null"`
	UnitPrice     int64  `json:"unit_price"`
	Quantity      int    `json:"quantity"`
	LineTotal     int64  `json:"line_total"`
}

// OrderStatusHistory is one applied transition.
type OrderStatusHistory struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OrderRecordID uint      `json:"order_record_id" gorm:"not null;index"`
	OrderID       string    `json:"order_id" gorm:"size:32;not null;index"`
	FromStatus    string    `json:"from_status" gorm:"size:24;not null"`
	ToStatus      string    `json:"to_status" gorm:"size:24;not null"`
	ChangedBy     string    `json:"changed_by" gorm:"size:16;not null"`
	ChangedAt     time.Time `json:"changed_at"`
}

type MenuItemRecord struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description"`
	Price        int64     `json:"price" gorm:"not null"`
	Category     string    `json:"category" gorm:"size:32;index"`
	ImageURL     string    `json:"image_url"`
	IsAvailable  bool      `json:"is_available" gorm:"default:true"`
	IsVegetarian bool      `json:"is_vegetarian"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
