package repository

import (
	"context"
	"time"

	"inventory-plus/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int) error
	ScanActive(ctx context.Context, batchSize int, fn func(batch []model.Product) error) error
	Stats(ctx context.Context) (*DashboardStats, error)
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	OutOfStock     int64           `json:"out_of_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update saves descriptive fields only. stock_quantity belongs to the ledger.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("stock_quantity", "created_at").Save(product).Error
}

// FindForUpdate reads the product row under SELECT ... FOR UPDATE inside tx.
func (r *productRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateStock menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"stock_quantity": newStock,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// ScanActive walks active products in id order, batchSize rows at a time.
func (r *productRepo) ScanActive(ctx context.Context, batchSize int, fn func(batch []model.Product) error) error {
	var batch []model.Product
	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return result.Error
}

func (r *productRepo) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)

	if err := db.Session(&gorm.Session{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("stock_quantity > 0 AND stock_quantity <= minimum_stock").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).
		Where("stock_quantity = 0").
		Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}

	// Valuation is summed in Go so the decimal stays exact on every driver.
	var rows []struct {
		StockQuantity int
		UnitPrice     decimal.Decimal
	}
	if err := db.Session(&gorm.Session{}).Select("stock_quantity, unit_price").Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats.TotalValuation = decimal.Zero
	for _, row := range rows {
		stats.TotalValuation = stats.TotalValuation.Add(row.UnitPrice.Mul(decimal.NewFromInt(int64(row.StockQuantity))))
	}

	return &stats, nil
}
