package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementDamaged    MovementType = "damaged"
	MovementExpired    MovementType = "expired"
	MovementReturned   MovementType = "returned"
	MovementTransfer   MovementType = "transfer"
)

var movementLabels = map[MovementType]string{
	MovementIn:         "Stock In",
	MovementOut:        "Stock Out",
	MovementAdjustment: "Stock Adjustment",
	MovementDamaged:    "Damaged",
	MovementExpired:    "Expired",
	MovementReturned:   "Returned",
	MovementTransfer:   "Transfer",
}

func (t MovementType) Valid() bool {
	_, ok := movementLabels[t]
	return ok
}

// Label is the human readable name used in notification text.
func (t MovementType) Label() string {
	if l, ok := movementLabels[t]; ok {
		return l
	}
	return string(t)
}

// IsInbound reports types that add Quantity to stock.
func (t MovementType) IsInbound() bool {
	return t == MovementIn || t == MovementReturned
}

// IsOutbound reports types that remove Quantity from stock (transfer leaves this store).
func (t MovementType) IsOutbound() bool {
	switch t {
	case MovementOut, MovementDamaged, MovementExpired, MovementTransfer:
		return true
	}
	return false
}

// StockMovement is one append-only ledger entry. Rows are never updated or deleted.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_movements_product_created,priority:1" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`

	MovementType  MovementType     `gorm:"type:varchar(20);not null;index:idx_movements_type_created,priority:1" json:"movement_type"`
	Quantity      int              `gorm:"not null" json:"quantity"`
	PreviousStock int              `gorm:"not null" json:"previous_stock"`
	NewStock      int              `gorm:"not null" json:"new_stock"`
	UnitCost      *decimal.Decimal `gorm:"type:numeric(12,2)" json:"unit_cost,omitempty"`

	ReferenceNumber string `gorm:"type:varchar(100);index" json:"reference_number,omitempty"`
	Notes           string `gorm:"type:text" json:"notes,omitempty"`

	// TransactionID is set when an InventoryTransaction owns this movement.
	TransactionID *uuid.UUID `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	// ReversesID points at the movement a compensating entry undoes.
	ReversesID *uuid.UUID `gorm:"type:uuid;index" json:"reverses_id,omitempty"`

	CreatedAt   time.Time  `gorm:"not null;index:idx_movements_product_created,priority:2;index:idx_movements_type_created,priority:2;index:idx_movements_actor_created,priority:2" json:"created_at"`
	CreatedByID *uuid.UUID `gorm:"type:uuid;index:idx_movements_actor_created,priority:1" json:"created_by_id,omitempty"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// BeforeCreate assigns a time-ordered ID so id breaks created_at ties in
// insertion order.
func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// QuantityChange is the signed effect this entry had on stock.
// Outbound entries report new-previous, so a clamped entry reports what was actually removed.
func (m *StockMovement) QuantityChange() int {
	if m.MovementType.IsInbound() {
		return m.Quantity
	}
	return m.NewStock - m.PreviousStock
}
