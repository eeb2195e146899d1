package service

import (
	"context"
	"errors"
	"fmt"

	"inventory-plus/internal/metrics"
	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OverdrawPolicy decides what an outbound movement larger than the stock does.
type OverdrawPolicy string

const (
	OverdrawClamp  OverdrawPolicy = "clamp"
	OverdrawReject OverdrawPolicy = "reject"
)

// MovementInput is a request to change one product's stock. For adjustment
// Quantity is the new absolute stock.
type MovementInput struct {
	ProductID       uuid.UUID          `json:"product_id"`
	Type            model.MovementType `json:"movement_type"`
	Quantity        int                `json:"quantity"`
	UnitCost        *decimal.Decimal   `json:"unit_cost,omitempty"`
	ReferenceNumber string             `json:"reference_number" validate:"max=100"`
	Notes           string             `json:"notes" validate:"max=2000"`
	ActorID         *uuid.UUID         `json:"-"`
}

type LedgerService interface {
	RecordMovement(ctx context.Context, in MovementInput) (*model.StockMovement, error)
	GetMovement(ctx context.Context, id uuid.UUID) (*model.StockMovement, error)
	ProductHistory(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
}

type ledgerService struct {
	db        *gorm.DB
	writer    *stockWriter
	effects   *movementEffects
	movements repository.MovementRepository
	log       zerolog.Logger
}

func NewLedgerService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	notificationRepo repository.NotificationRepository,
	hub ws.Broadcaster,
	policy OverdrawPolicy,
	log zerolog.Logger,
) LedgerService {
	log = log.With().Str("component", "ledger").Logger()
	return &ledgerService{
		db:        db,
		writer:    newStockWriter(productRepo, movementRepo, policy),
		effects:   newMovementEffects(notificationRepo, hub, log),
		movements: movementRepo,
		log:       log,
	}
}

func (s *ledgerService) RecordMovement(ctx context.Context, in MovementInput) (*model.StockMovement, error) {
	var (
		movement *model.StockMovement
		product  *model.Product
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		movement, product, err = s.writer.apply(tx, in, nil)
		return err
	})
	if err != nil {
		metrics.MovementsRejected.WithLabelValues(ReasonCode(err)).Inc()
		return nil, err
	}

	s.log.Info().
		Str("product_id", product.ID.String()).
		Str("movement_type", string(movement.MovementType)).
		Int("quantity", movement.Quantity).
		Int("previous_stock", movement.PreviousStock).
		Int("new_stock", movement.NewStock).
		Msg("stock movement recorded")

	s.effects.afterCommit(ctx, product, movement)
	return movement, nil
}

func (s *ledgerService) GetMovement(ctx context.Context, id uuid.UUID) (*model.StockMovement, error) {
	m, err := s.movements.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMovementNotFound
	}
	return m, err
}

func (s *ledgerService) ProductHistory(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.movements.FindByProduct(ctx, productID, limit)
}

// nextStock computes the stock after a movement of type t and quantity q
// applied to prev. It never returns a negative value.
func nextStock(policy OverdrawPolicy, t model.MovementType, prev, q int) (int, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMovementType, t)
	}
	if t == model.MovementAdjustment {
		if q < 0 {
			return 0, fmt.Errorf("%w: adjustment target must be >= 0, got %d", ErrInvalidQuantity, q)
		}
		return q, nil
	}
	if q <= 0 {
		return 0, fmt.Errorf("%w: quantity must be > 0, got %d", ErrInvalidQuantity, q)
	}
	if t.IsInbound() {
		return prev + q, nil
	}
	if prev-q < 0 {
		if policy == OverdrawReject {
			return 0, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, q, prev)
		}
		return 0, nil
	}
	return prev - q, nil
}

// stockWriter is the only code that writes products.stock_quantity. Both the
// ledger and the transaction grouper run it inside their own DB transaction.
type stockWriter struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	policy    OverdrawPolicy
}

func newStockWriter(products repository.ProductRepository, movements repository.MovementRepository, policy OverdrawPolicy) *stockWriter {
	if policy != OverdrawReject {
		policy = OverdrawClamp
	}
	return &stockWriter{products: products, movements: movements, policy: policy}
}

// apply validates in, locks the product, appends the movement and updates
// the stock counter. transactionID links the movement to its owner, if any.
func (w *stockWriter) apply(tx *gorm.DB, in MovementInput, transactionID *uuid.UUID) (*model.StockMovement, *model.Product, error) {
	// Type and quantity are checked before the product row is touched.
	if _, err := nextStock(w.policy, in.Type, 0, in.Quantity); err != nil && !errors.Is(err, ErrInsufficientStock) {
		return nil, nil, err
	}
	if err := validate(&in); err != nil {
		return nil, nil, err
	}
	if in.ProductID == uuid.Nil {
		return nil, nil, ErrProductNotFound
	}

	product, err := w.products.FindForUpdate(tx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
		}
		return nil, nil, err
	}
	if !product.IsActive {
		return nil, nil, fmt.Errorf("%w: %s", ErrProductInactive, product.SKU)
	}

	newStock, err := nextStock(w.policy, in.Type, product.StockQuantity, in.Quantity)
	if err != nil {
		return nil, nil, err
	}

	movement := &model.StockMovement{
		ProductID:       product.ID,
		MovementType:    in.Type,
		Quantity:        in.Quantity,
		PreviousStock:   product.StockQuantity,
		NewStock:        newStock,
		UnitCost:        in.UnitCost,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
		TransactionID:   transactionID,
		CreatedByID:     in.ActorID,
	}
	if err := w.movements.Create(tx, movement); err != nil {
		return nil, nil, err
	}
	if err := w.products.UpdateStock(tx, product.ID, newStock); err != nil {
		return nil, nil, err
	}

	product.StockQuantity = newStock
	return movement, product, nil
}

// reverse appends the compensating adjustment for m and restores the stock it changed.
func (w *stockWriter) reverse(tx *gorm.DB, m *model.StockMovement, reference, notes string, actorID *uuid.UUID) (*model.StockMovement, *model.Product, error) {
	product, err := w.products.FindForUpdate(tx, m.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("reverse movement %s: %w", m.ID, ErrProductNotFound)
		}
		return nil, nil, err
	}

	change := m.QuantityChange()
	newStock := product.StockQuantity - change
	if newStock < 0 {
		return nil, nil, fmt.Errorf("%w: product %s has %d, reversal needs %d", ErrReversalUnderflow, product.SKU, product.StockQuantity, change)
	}

	qty := change
	if qty < 0 {
		qty = -qty
	}
	reversesID := m.ID
	reversal := &model.StockMovement{
		ProductID:       product.ID,
		MovementType:    model.MovementAdjustment,
		Quantity:        qty,
		PreviousStock:   product.StockQuantity,
		NewStock:        newStock,
		ReferenceNumber: reference,
		Notes:           notes,
		TransactionID:   m.TransactionID,
		ReversesID:      &reversesID,
		CreatedByID:     actorID,
	}
	if err := w.movements.Create(tx, reversal); err != nil {
		return nil, nil, err
	}
	if err := w.products.UpdateStock(tx, product.ID, newStock); err != nil {
		return nil, nil, err
	}

	product.StockQuantity = newStock
	return reversal, product, nil
}

// movementEffects runs the post-commit side effects of a movement: the live
// stock_update event and the significant-movement notification.
type movementEffects struct {
	notifications repository.NotificationRepository
	hub           ws.Broadcaster
	log           zerolog.Logger
}

func newMovementEffects(notifications repository.NotificationRepository, hub ws.Broadcaster, log zerolog.Logger) *movementEffects {
	if hub == nil {
		hub = ws.Nop{}
	}
	return &movementEffects{notifications: notifications, hub: hub, log: log}
}

func (e *movementEffects) afterCommit(ctx context.Context, product *model.Product, m *model.StockMovement) {
	metrics.MovementsRecorded.WithLabelValues(string(m.MovementType)).Inc()

	e.hub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "movement_recorded",
		Data: map[string]interface{}{
			"movement_id":    m.ID,
			"movement_type":  m.MovementType,
			"quantity":       m.Quantity,
			"previous_stock": m.PreviousStock,
			"new_stock":      m.NewStock,
			"product": map[string]interface{}{
				"id":   product.ID,
				"sku":  product.SKU,
				"name": product.Name,
			},
		},
		Message: fmt.Sprintf("%s of %d units for '%s'", m.MovementType.Label(), m.Quantity, product.Name),
	})

	if !isSignificant(product, m) {
		return
	}
	productID := product.ID
	n := &model.Notification{
		Type:      model.NotifSystem,
		Title:     fmt.Sprintf("Significant Stock Movement: %s", product.Name),
		Message:   fmt.Sprintf("%s of %d units for %s (SKU: %s)", m.MovementType.Label(), m.Quantity, product.Name, product.SKU),
		Priority:  model.PriorityMedium,
		ProductID: &productID,
		Payload: model.NewMovementPayload(model.MovementPayload{
			MovementID:    m.ID,
			MovementType:  m.MovementType,
			Quantity:      m.Quantity,
			PreviousStock: m.PreviousStock,
			NewStock:      m.NewStock,
		}),
		CreatedByID: m.CreatedByID,
	}
	if err := e.notifications.Create(ctx, n); err != nil {
		e.log.Error().Err(err).Str("movement_id", m.ID.String()).Msg("create significant movement notification")
		return
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
}

// isSignificant: outbound losses of at least half the product's minimum stock.
func isSignificant(p *model.Product, m *model.StockMovement) bool {
	switch m.MovementType {
	case model.MovementOut, model.MovementDamaged, model.MovementExpired:
		return 2*m.Quantity >= p.MinimumStock
	}
	return false
}
