package repository

import (
	"context"
	"time"

	"inventory-plus/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRepository is append-only: there is no update or delete.
type MovementRepository interface {
	Create(tx *gorm.DB, movement *model.StockMovement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockMovement, error)
	FindByTransaction(tx *gorm.DB, transactionID uuid.UUID) ([]model.StockMovement, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
	Recent(ctx context.Context, limit int) ([]model.StockMovement, error)
	DailyTotals(ctx context.Context, start, end time.Time, loc *time.Location) ([]StockMovementData, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	return tx.Omit("Product", "CreatedBy").Create(movement).Error
}

func (r *movementRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockMovement, error) {
	var m model.StockMovement
	if err := r.db.WithContext(ctx).Preload("Product").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByTransaction returns owned movements in insertion order.
func (r *movementRepo) FindByTransaction(tx *gorm.DB, transactionID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := tx.Where("transaction_id = ?", transactionID).
		Order("created_at ASC, id ASC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) Recent(ctx context.Context, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

// DailyTotals buckets movement volume per calendar day in loc. Inbound counts
// in/returned quantities, outbound counts what outbound entries actually removed.
// Days without movements are returned with zero totals.
func (r *movementRepo) DailyTotals(ctx context.Context, start, end time.Time, loc *time.Location) ([]StockMovementData, error) {
	var rows []model.StockMovement
	err := r.db.WithContext(ctx).
		Select("movement_type", "quantity", "previous_stock", "new_stock", "created_at").
		Where("created_at >= ? AND created_at <= ?", start.UTC(), end.UTC()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*StockMovementData)
	var results []StockMovementData
	for d := dayStart(start.In(loc)); !d.After(end.In(loc)); d = d.AddDate(0, 0, 1) {
		results = append(results, StockMovementData{Date: d.Format("2006-01-02")})
	}
	for i := range results {
		buckets[results[i].Date] = &results[i]
	}

	for i := range rows {
		m := &rows[i]
		bucket, ok := buckets[m.CreatedAt.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		switch {
		case m.MovementType.IsInbound():
			bucket.Inbound += m.Quantity
		case m.MovementType.IsOutbound():
			bucket.Outbound += -m.QuantityChange()
		}
	}

	return results, nil
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
