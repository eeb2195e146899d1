package model

// NotificationTemplate renders a notification from text/template sources,
// e.g. "Low stock: {{.product}}".
type NotificationTemplate struct {
	BaseModel
	Name            string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required,max=100"`
	Type            NotificationType `gorm:"type:varchar(20);not null" json:"type" validate:"required"`
	TitleTemplate   string           `gorm:"type:varchar(200);not null" json:"title_template" validate:"required,max=200"`
	MessageTemplate string           `gorm:"type:text;not null" json:"message_template" validate:"required"`
	Priority        Priority         `gorm:"type:varchar(10);not null" json:"priority" validate:"required,oneof=low medium high urgent"`
	IsActive        bool             `gorm:"not null" json:"is_active"`
	SendEmail       bool             `gorm:"not null" json:"send_email"`
}
