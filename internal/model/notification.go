package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifLowStock     NotificationType = "low_stock"
	NotifOutOfStock   NotificationType = "out_of_stock"
	NotifExpirySoon   NotificationType = "expiry_soon"
	NotifExpired      NotificationType = "expired"
	NotifReorderPoint NotificationType = "reorder_point"
	NotifSystem       NotificationType = "system"
	NotifUser         NotificationType = "user"
)

var notificationLabels = map[NotificationType]string{
	NotifLowStock:     "Low Stock Alert",
	NotifOutOfStock:   "Out of Stock Alert",
	NotifExpirySoon:   "Expiry Soon Alert",
	NotifExpired:      "Expired Product Alert",
	NotifReorderPoint: "Reorder Point Alert",
	NotifSystem:       "System Notification",
	NotifUser:         "User Notification",
}

func (t NotificationType) Valid() bool {
	_, ok := notificationLabels[t]
	return ok
}

func (t NotificationType) Label() string {
	if l, ok := notificationLabels[t]; ok {
		return l
	}
	return string(t)
}

// IsStockLevel reports the types produced by the low_stock check group.
func (t NotificationType) IsStockLevel() bool {
	return t == NotifLowStock || t == NotifOutOfStock
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Label capitalizes the priority for email bodies.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	}
	return string(p)
}

// Notification is a persisted alert or message. UserID nil means it is addressed
// to every admin and manager.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Type      NotificationType `gorm:"type:varchar(20);not null;index:idx_notifications_type_read,priority:1;index:idx_notifications_dedup,priority:2" json:"type"`
	Title     string           `gorm:"type:varchar(200);not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Priority  Priority         `gorm:"type:varchar(10);not null;index:idx_notifications_priority_created,priority:1" json:"priority"`
	ProductID *uuid.UUID       `gorm:"type:uuid;index:idx_notifications_dedup,priority:1" json:"product_id,omitempty"`
	Product   *Product         `json:"product,omitempty"`
	UserID    *uuid.UUID       `gorm:"type:uuid;index:idx_notifications_user_read,priority:1" json:"user_id,omitempty"`
	User      *User            `json:"-"`

	IsRead      bool       `gorm:"not null;index:idx_notifications_type_read,priority:2;index:idx_notifications_user_read,priority:2" json:"is_read"`
	IsEmailSent bool       `gorm:"not null;index" json:"is_email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`

	Payload NotificationPayload `gorm:"type:jsonb;serializer:json" json:"extra_data"`

	CreatedAt   time.Time  `gorm:"not null;index:idx_notifications_priority_created,priority:2;index:idx_notifications_dedup,priority:3" json:"created_at"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	return nil
}

// IsRecent is true for notifications younger than a day.
func (n *Notification) IsRecent(now time.Time) bool {
	return now.Sub(n.CreatedAt) < 24*time.Hour
}
