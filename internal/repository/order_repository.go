package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

type OrderRepository interface {
	Create(order models.Order) error
	AppendStatusChange(change models.StatusChange) error
	GetByOrderID(orderID string) (*models.OrderRecord, error)
	GetAll() ([]models.OrderRecord, error)
	GetHistory(recordID uint) ([]models.OrderStatusHistory, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// archivedAt truncates to the precision Postgres keeps for timestamps.
func archivedAt(o models.Order) time.Time {
	return o.Timestamp.Truncate(time.Microsecond)
}

func newOrderRecord(o models.Order) models.OrderRecord {
	rec := models.OrderRecord{
		OrderID:             o.ID,
		CustomerName:        o.CustomerName,
		OrderType:           string(o.Type()),
		Status:              string(o.Status),
		TotalAmount:         o.TotalAmount,
		TableNumber:         o.TableNumber(),
		DeliveryAddress:     o.DeliveryAddress(),
		SpecialInstructions: o.SpecialInstructions,
		PlacedAt:            archivedAt(o),
	}
	if d, ok := o.Details.(models.PreOrderDetails); ok {
		rec.People = d.People
		rec.PreOrderTime = d.Time
	}
	for _, it := range o.Items {
		rec.Items = append(rec.Items, models.OrderItemRecord{
			MenuItemID: it.ID,
			Name:       it.Name,
			UnitPrice:  it.Price,
			Quantity:   it.Quantity,
			LineTotal:  it.LineTotal(),
		})
	}
	return rec
}

// Create archives o with its items. Archiving the same order twice is a
// no-op.
func (r *orderRepository) Create(order models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.OrderRecord{}).
			Where("order_id = ? AND placed_at = ?", order.ID, archivedAt(order)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		rec := newOrderRecord(order)
		return tx.Create(&rec).Error
	})
}

// AppendStatusChange records the transition against the most recent record
// for the order and moves its status.
func (r *orderRepository) AppendStatusChange(change models.StatusChange) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var rec models.OrderRecord
		err := tx.Where("order_id = ?", change.OrderID).Order("placed_at DESC").First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("archived order %s: %w", change.OrderID, apperrors.ErrNotFound)
			}
			return err
		}
		hist := models.OrderStatusHistory{
			OrderRecordID: rec.ID,
			OrderID:       change.OrderID,
			FromStatus:    string(change.From),
			ToStatus:      string(change.To),
			ChangedBy:     string(change.ChangedBy),
			ChangedAt:     change.At,
		}
		if err := tx.Create(&hist).Error; err != nil {
			return err
		}
		return tx.Model(&rec).Update("status", string(change.To)).Error
	})
}

func (r *orderRepository) GetByOrderID(orderID string) (*models.OrderRecord, error) {
	var rec models.OrderRecord
	err := r.db.Preload("Items").Where("order_id = ?", orderID).Order("placed_at DESC").First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("archived order %s: %w", orderID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

func (r *orderRepository) GetAll() ([]models.OrderRecord, error) {
	var orders []models.OrderRecord
	err := r.db.Preload("Items").Order("placed_at ASC").Find(&orders).Error
	return orders, err
}

// GetHistory returns the transitions of one archived record. Ids are reused
// across runs, so callers pass the record id from GetByOrderID.
func (r *orderRepository) GetHistory(recordID uint) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := r.db.Where("order_record_id = ?", recordID).Order("changed_at ASC, id ASC").Find(&history).Error
	return history, err
}
