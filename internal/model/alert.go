package model

import (
	"time"

	"github.com/google/uuid"
)

// StockAlert configures how one alert type behaves for one product.
// An inactive row mutes that alert for the product.
type StockAlert struct {
	BaseModel
	ProductID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_stock_alerts_product_type,priority:1" json:"product_id"`
	Product            *Product         `json:"product,omitempty"`
	AlertType          NotificationType `gorm:"type:varchar(20);not null;uniqueIndex:idx_stock_alerts_product_type,priority:2" json:"alert_type"`
	ThresholdValue     *int             `json:"threshold_value,omitempty"`
	IsActive           bool             `gorm:"not null" json:"is_active"`
	EmailNotifications bool             `gorm:"not null" json:"email_notifications"`
	NotifyUsers        []User           `gorm:"many2many:stock_alert_users;" json:"notify_users,omitempty"`
	NotifyRoles        []Role           `gorm:"type:text;serializer:json" json:"notify_roles"`
	LastTriggered      *time.Time       `json:"last_triggered,omitempty"`
}
