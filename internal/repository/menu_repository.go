package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

type MenuRepository interface {
	Upsert(items []models.MenuItem) error
	GetAll() ([]models.MenuItem, error)
	UpdateDescription(id, description string) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

// Upsert writes the given items. Descriptions already stored are kept so
// that reseeding does not undo the owner's edits.
func (r *menuRepository) Upsert(items []models.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	records := make([]models.MenuItemRecord, len(items))
	for i, it := range items {
		records[i] = models.MenuItemRecord{
			ID:           it.ID,
			Name:         it.Name,
			Description:  it.Description,
			Price:        it.Price,
			Category:     string(it.Category),
			ImageURL:     it.ImageURL,
			IsAvailable:  it.IsAvailable,
			IsVegetarian: it.IsVegetarian,
		}
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "price", "category", "image_url", "is_available", "is_vegetarian", "updated_at",
		}),
	}).Create(&records).Error
}

func (r *menuRepository) GetAll() ([]models.MenuItem, error) {
	var records []models.MenuItemRecord
	if err := r.db.Order("category ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]models.MenuItem, len(records))
	for i, rec := range records {
		items[i] = models.MenuItem{
			ID:           rec.ID,
			Name:         rec.Name,
			Description:  rec.Description,
			Price:        rec.Price,
			Category:     models.Category(rec.Category),
			ImageURL:     rec.ImageURL,
			IsAvailable:  rec.IsAvailable,
			IsVegetarian: rec.IsVegetarian,
		}
	}
	return items, nil
}

func (r *menuRepository) UpdateDescription(id, description string) error {
	res := r.db.Model(&models.MenuItemRecord{}).Where("id = ?", id).Update("description", description)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu item %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
