package repository

import (
	"context"

	"inventory-plus/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.InventoryTransaction) error
	FindAll(ctx context.Context, status model.TransactionStatus) ([]model.InventoryTransaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryTransaction, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryTransaction, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	Save(tx *gorm.DB, txn *model.InventoryTransaction) error
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(ctx context.Context, txn *model.InventoryTransaction) error {
	return r.db.WithContext(ctx).Omit("Movements", "CreatedBy").Create(txn).Error
}

// FindAll lists transactions newest first; an empty status lists every status.
func (r *transactionRepo) FindAll(ctx context.Context, status model.TransactionStatus) ([]model.InventoryTransaction, error) {
	var transactions []model.InventoryTransaction
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryTransaction, error) {
	var txn model.InventoryTransaction
	err := r.db.WithContext(ctx).
		Preload("Movements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Movements.Product").
		First(&txn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryTransaction, error) {
	var txn model.InventoryTransaction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepo) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InventoryTransaction{}).
		Where("reference_number = ?", reference).
		Count(&count).Error
	return count > 0, err
}

// Save writes the header row only; movements are owned through the ledger.
func (r *transactionRepo) Save(tx *gorm.DB, txn *model.InventoryTransaction) error {
	return tx.Omit("Movements", "CreatedBy").Save(txn).Error
}
