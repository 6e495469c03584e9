package migrations

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/database"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/repository"
)

// Run creates the archive tables and seeds the menu. With reset set the
// tables are dropped first.
func Run(db *gorm.DB, menu []models.MenuItem, reset bool) error {
	log.Println("Running database migrations...")

	if reset {
		log.Println("Dropping existing tables...")
		err := db.Migrator().DropTable(
			&models.OrderStatusHistory{},
			&models.OrderItemRecord{},
			&models.OrderRecord{},
			&models.MenuItemRecord{},
		)
		if err != nil {
			log.Printf("Warning: Error dropping tables: %v", err)
		}
	}

	log.Println("Creating tables...")
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	log.Printf("Seeding %d menu items...", len(menu))
	if err := repository.NewMenuRepository(db).Upsert(menu); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}
