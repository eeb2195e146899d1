// Package testutil wires an in-memory database for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventory-plus/internal/model"
	"inventory-plus/pkg/database"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// ProductOpts tweaks the product created by CreateProduct.
type ProductOpts func(p *model.Product)

func WithExpiry(d time.Time) ProductOpts {
	return func(p *model.Product) {
		p.HasExpiry = true
		p.ExpiryDate = &d
	}
}

func Inactive() ProductOpts {
	return func(p *model.Product) { p.IsActive = false }
}

func WithReorderLevel(n int) ProductOpts {
	return func(p *model.Product) { p.ReorderLevel = n }
}

// CreateProduct inserts an active product with the given stock and minimum.
// Reorder level defaults to the minimum.
func CreateProduct(t *testing.T, db *gorm.DB, sku string, stock, minimum int, opts ...ProductOpts) *model.Product {
	t.Helper()
	p := &model.Product{
		SKU:           sku,
		Name:          "Product " + sku,
		Category:      "General",
		Unit:          "pcs",
		UnitPrice:     decimal.NewFromInt(10),
		StockQuantity: stock,
		MinimumStock:  minimum,
		MaximumStock:  1000,
		ReorderLevel:  minimum,
		IsActive:      true,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateUser inserts an active user with a profile for the given role.
func CreateUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Email: email, FullName: email, IsActive: true}
	require.NoError(t, u.SetPassword("secret123"))
	require.NoError(t, db.Create(u).Error)
	profile := model.NewUserProfile(u.ID, role, "", "")
	require.NoError(t, db.Create(profile).Error)
	u.Profile = profile
	return u
}
