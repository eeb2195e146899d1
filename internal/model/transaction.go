package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxPurchase   TransactionType = "purchase"
	TxSale       TransactionType = "sale"
	TxAdjustment TransactionType = "adjustment"
	TxTransfer   TransactionType = "transfer"
	TxReturn     TransactionType = "return"
)

type TransactionStatus string

const (
	TxStatusDraft     TransactionStatus = "draft"
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusCancelled TransactionStatus = "cancelled"
)

// InventoryTransaction groups the movements of one business event (a purchase, a sale...).
// A draft owns no movements; the first movement moves it to pending.
type InventoryTransaction struct {
	BaseModel
	TransactionType TransactionType   `gorm:"type:varchar(20);not null;index" json:"transaction_type" validate:"required,oneof=purchase sale adjustment transfer return"`
	ReferenceNumber string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference_number"`
	Description     string            `gorm:"type:text" json:"description"`
	Status          TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount     decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	TaxAmount       decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"tax_amount"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedByID *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id,omitempty"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	Movements []StockMovement `gorm:"foreignKey:TransactionID" json:"movements,omitempty"`
}

func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// IsOpen reports whether movements may still be attached.
func (t *InventoryTransaction) IsOpen() bool {
	return t.Status == TxStatusDraft || t.Status == TxStatusPending
}
