package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-plus/internal/metrics"
	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionInput struct {
	TransactionType model.TransactionType `json:"transaction_type" validate:"required,oneof=purchase sale adjustment transfer return"`
	ReferenceNumber string                `json:"reference_number" validate:"max=100"`
	Description     string                `json:"description" validate:"max=2000"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	ActorID         *uuid.UUID            `json:"-"`
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, in TransactionInput) (*model.InventoryTransaction, error)
	AddMovement(ctx context.Context, transactionID uuid.UUID, in MovementInput) (*model.StockMovement, error)
	CompleteTransaction(ctx context.Context, transactionID uuid.UUID, actorID *uuid.UUID) (*model.InventoryTransaction, error)
	CancelTransaction(ctx context.Context, transactionID uuid.UUID, actorID *uuid.UUID) (*model.InventoryTransaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.InventoryTransaction, error)
	ListTransactions(ctx context.Context, status model.TransactionStatus) ([]model.InventoryTransaction, error)
}

type transactionService struct {
	db           *gorm.DB
	transactions repository.TransactionRepository
	movements    repository.MovementRepository
	writer       *stockWriter
	effects      *movementEffects
	hub          ws.Broadcaster
	log          zerolog.Logger
	now          func() time.Time
}

func NewTransactionService(
	db *gorm.DB,
	transactionRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	notificationRepo repository.NotificationRepository,
	hub ws.Broadcaster,
	policy OverdrawPolicy,
	log zerolog.Logger,
) TransactionService {
	if hub == nil {
		hub = ws.Nop{}
	}
	log = log.With().Str("component", "transactions").Logger()
	return &transactionService{
		db:           db,
		transactions: transactionRepo,
		movements:    movementRepo,
		writer:       newStockWriter(productRepo, movementRepo, policy),
		effects:      newMovementEffects(notificationRepo, hub, log),
		hub:          hub,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *transactionService) CreateTransaction(ctx context.Context, in TransactionInput) (*model.InventoryTransaction, error) {
	if err := validate(&in); err != nil {
		if !validTransactionType(in.TransactionType) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, in.TransactionType)
		}
		return nil, err
	}

	ref := strings.TrimSpace(in.ReferenceNumber)
	if ref == "" {
		var err error
		if ref, err = s.generateReference(ctx, in.TransactionType); err != nil {
			return nil, err
		}
	} else {
		exists, err := s.transactions.ReferenceExists(ctx, ref)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateReference, ref)
		}
	}

	txn := &model.InventoryTransaction{
		TransactionType: in.TransactionType,
		ReferenceNumber: ref,
		Description:     in.Description,
		Status:          model.TxStatusDraft,
		TotalAmount:     decimal.Zero,
		TaxAmount:       in.TaxAmount,
		CreatedByID:     in.ActorID,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	s.log.Info().Str("reference", txn.ReferenceNumber).Str("type", string(txn.TransactionType)).Msg("transaction created")
	return txn, nil
}

func validTransactionType(t model.TransactionType) bool {
	switch t {
	case model.TxPurchase, model.TxSale, model.TxAdjustment, model.TxTransfer, model.TxReturn:
		return true
	}
	return false
}

// generateReference builds TYPE-YYYYMMDD-XXXXXX, retrying on the rare collision.
func (s *transactionService) generateReference(ctx context.Context, t model.TransactionType) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		ref := fmt.Sprintf("%s-%s-%s", strings.ToUpper(string(t)), s.now().Format("20060102"), suffix)
		exists, err := s.transactions.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique reference", ErrDuplicateReference)
}

// lock loads the transaction row under FOR UPDATE.
func (s *transactionService) lock(tx *gorm.DB, id uuid.UUID) (*model.InventoryTransaction, error) {
	txn, err := s.transactions.FindForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
		}
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) AddMovement(ctx context.Context, transactionID uuid.UUID, in MovementInput) (*model.StockMovement, error) {
	var (
		movement *model.StockMovement
		product  *model.Product
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := s.lock(tx, transactionID)
		if err != nil {
			return err
		}
		switch txn.Status {
		case model.TxStatusCancelled:
			return ErrTransactionCancelled
		case model.TxStatusCompleted:
			return ErrTransactionClosed
		}

		in.ReferenceNumber = txn.ReferenceNumber
		movement, product, err = s.writer.apply(tx, in, &txn.ID)
		if err != nil {
			return err
		}

		if txn.Status == model.TxStatusDraft {
			txn.Status = model.TxStatusPending
		}
		total, err := s.totalAmount(tx, txn.ID)
		if err != nil {
			return err
		}
		txn.TotalAmount = total
		return s.transactions.Save(tx, txn)
	})
	if err != nil {
		metrics.MovementsRejected.WithLabelValues(ReasonCode(err)).Inc()
		return nil, err
	}

	s.effects.afterCommit(ctx, product, movement)
	return movement, nil
}

// totalAmount is Σ |stock change| × (unit_cost, or the product's unit price).
func (s *transactionService) totalAmount(tx *gorm.DB, transactionID uuid.UUID) (decimal.Decimal, error) {
	movements, err := s.movements.FindByTransaction(tx, transactionID)
	if err != nil {
		return decimal.Zero, err
	}

	ids := make([]uuid.UUID, 0, len(movements))
	for _, m := range movements {
		ids = append(ids, m.ProductID)
	}
	var products []model.Product
	if len(ids) > 0 {
		if err := tx.Unscoped().Where("id IN ?", ids).Find(&products).Error; err != nil {
			return decimal.Zero, err
		}
	}
	prices := make(map[uuid.UUID]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.UnitPrice
	}

	total := decimal.Zero
	for i := range movements {
		m := &movements[i]
		if m.ReversesID != nil {
			continue
		}
		price := prices[m.ProductID]
		if m.UnitCost != nil {
			price = *m.UnitCost
		}
		qty := m.QuantityChange()
		if qty < 0 {
			qty = -qty
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}

func (s *transactionService) CompleteTransaction(ctx context.Context, transactionID uuid.UUID, actorID *uuid.UUID) (*model.InventoryTransaction, error) {
	var (
		txn     *model.InventoryTransaction
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.lock(tx, transactionID)
		if err != nil {
			return err
		}
		switch txn.Status {
		case model.TxStatusCancelled:
			return ErrTransactionCancelled
		case model.TxStatusCompleted:
			return nil
		}

		now := s.now()
		txn.Status = model.TxStatusCompleted
		txn.CompletedAt = &now
		changed = true
		return s.transactions.Save(tx, txn)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.TransactionsFinished.WithLabelValues(string(model.TxStatusCompleted)).Inc()
		s.log.Info().Str("reference", txn.ReferenceNumber).Msg("transaction completed")
		s.publish(txn, "transaction_completed", actorID)
	}
	return txn, nil
}

type reversed struct {
	movement *model.StockMovement
	product  *model.Product
}

// CancelTransaction reverses every owned movement with a compensating
// adjustment. Any failure rolls back the whole cancellation.
func (s *transactionService) CancelTransaction(ctx context.Context, transactionID uuid.UUID, actorID *uuid.UUID) (*model.InventoryTransaction, error) {
	var (
		txn       *model.InventoryTransaction
		reversals []reversed
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.lock(tx, transactionID)
		if err != nil {
			return err
		}
		if txn.Status == model.TxStatusCancelled {
			return ErrTransactionCancelled
		}

		if txn.Status != model.TxStatusDraft {
			owned, err := s.movements.FindByTransaction(tx, txn.ID)
			if err != nil {
				return err
			}
			reference := "REVERSE-" + txn.ReferenceNumber
			notes := fmt.Sprintf("Reversal of transaction %s", txn.ReferenceNumber)

			// Newest first, so each reversal sees the stock its movement produced.
			for i := len(owned) - 1; i >= 0; i-- {
				m := &owned[i]
				if m.ReversesID != nil {
					continue
				}
				rev, product, err := s.writer.reverse(tx, m, reference, notes, actorID)
				if err != nil {
					return err
				}
				reversals = append(reversals, reversed{movement: rev, product: product})
			}
		}

		now := s.now()
		txn.Status = model.TxStatusCancelled
		txn.CancelledAt = &now
		return s.transactions.Save(tx, txn)
	})
	if err != nil {
		return nil, err
	}

	metrics.TransactionsFinished.WithLabelValues(string(model.TxStatusCancelled)).Inc()
	s.log.Info().
		Str("reference", txn.ReferenceNumber).
		Int("reversals", len(reversals)).
		Msg("transaction cancelled")

	for _, r := range reversals {
		s.effects.afterCommit(ctx, r.product, r.movement)
	}
	s.publish(txn, "transaction_cancelled", actorID)
	return txn, nil
}

func (s *transactionService) publish(txn *model.InventoryTransaction, action string, actorID *uuid.UUID) {
	data := map[string]interface{}{
		"id":               txn.ID,
		"reference_number": txn.ReferenceNumber,
		"status":           txn.Status,
		"total_amount":     txn.TotalAmount,
	}
	if actorID != nil {
		data["actor_id"] = *actorID
	}
	s.hub.Publish(ws.Event{
		Type:    "transaction_update",
		Action:  action,
		Data:    data,
		Message: fmt.Sprintf("Transaction %s is now %s", txn.ReferenceNumber, txn.Status),
	})
}

func (s *transactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.InventoryTransaction, error) {
	txn, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
		}
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, status model.TransactionStatus) ([]model.InventoryTransaction, error) {
	return s.transactions.FindAll(ctx, status)
}
