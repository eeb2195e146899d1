package database

import (
	"fmt"

	"gorm.io/gorm"

	"inventory-plus/internal/model"
)

// Migrate creates or updates every table and index the service uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Product{},
		&model.InventoryTransaction{},
		&model.StockMovement{},
		&model.StockAlert{},
		&model.Notification{},
		&model.NotificationTemplate{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
