package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product holds the stock state every movement and alert works against.
// StockQuantity is only written by the ledger.
type Product struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SKU       string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name      string          `gorm:"type:varchar(200);not null" json:"name" validate:"required"`
	Category  string          `gorm:"type:varchar(100);index" json:"category"`
	Unit      string          `gorm:"type:varchar(20)" json:"unit"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`

	StockQuantity int `gorm:"not null;check:chk_products_stock_non_negative,stock_quantity >= 0" json:"stock_quantity" validate:"gte=0"`
	MinimumStock  int `gorm:"not null" json:"minimum_stock" validate:"gte=0"`
	MaximumStock  int `gorm:"not null" json:"maximum_stock" validate:"gte=0"`
	ReorderLevel  int `gorm:"not null" json:"reorder_level" validate:"gte=0"`

	HasExpiry  bool       `gorm:"not null" json:"has_expiry"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	IsActive   bool       `gorm:"not null;index" json:"is_active"`
}

// BeforeSave normalizes the SKU the same way on every write path.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	return nil
}

// StockValue is stock_quantity × unit_price.
func (p *Product) StockValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}

// StockStatus is the display bucket used by stock-level listings.
func (p *Product) StockStatus() string {
	switch {
	case p.StockQuantity == 0:
		return "out_of_stock"
	case p.StockQuantity <= p.MinimumStock:
		return "low_stock"
	case p.MaximumStock > 0 && p.StockQuantity >= p.MaximumStock:
		return "overstock"
	default:
		return "in_stock"
	}
}
