package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateProductRequest registers a product. InitialStock is booked through
// the ledger as an inbound movement, never written straight to the row.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,max=50"`
	Name         string          `json:"name" validate:"required,max=200"`
	Category     string          `json:"category" validate:"max=100"`
	Unit         string          `json:"unit" validate:"max=20"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	InitialStock int             `json:"initial_stock" validate:"gte=0"`
	MinimumStock int             `json:"minimum_stock" validate:"gte=0"`
	MaximumStock int             `json:"maximum_stock" validate:"gte=0"`
	ReorderLevel int             `json:"reorder_level" validate:"gte=0"`
	HasExpiry    bool            `json:"has_expiry"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// UpdateProductRequest changes descriptive fields. Nil fields are left alone.
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=200"`
	Category     *string          `json:"category" validate:"omitempty,max=100"`
	Unit         *string          `json:"unit" validate:"omitempty,max=20"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	MinimumStock *int             `json:"minimum_stock" validate:"omitempty,gte=0"`
	MaximumStock *int             `json:"maximum_stock" validate:"omitempty,gte=0"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,gte=0"`
	HasExpiry    *bool            `json:"has_expiry"`
	ExpiryDate   *time.Time       `json:"expiry_date"`
	IsActive     *bool            `json:"is_active"`
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req *CreateProductRequest, actorID *uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	ledger      LedgerService
	hub         ws.Broadcaster
	log         zerolog.Logger
}

func NewInventoryService(productRepo repository.ProductRepository, ledger LedgerService, hub ws.Broadcaster, log zerolog.Logger) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		ledger:      ledger,
		hub:         hub,
		log:         log.With().Str("component", "inventory").Logger(),
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *CreateProductRequest, actorID *uuid.UUID) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit_price must not be negative", ErrValidation)
	}

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if _, err := s.productRepo.FindBySKU(ctx, sku); err == nil {
		return nil, ErrDuplicateSKU
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := &model.Product{
		SKU:          sku,
		Name:         req.Name,
		Category:     req.Category,
		Unit:         req.Unit,
		UnitPrice:    req.UnitPrice,
		MinimumStock: req.MinimumStock,
		MaximumStock: req.MaximumStock,
		ReorderLevel: req.ReorderLevel,
		HasExpiry:    req.HasExpiry,
		ExpiryDate:   req.ExpiryDate,
		IsActive:     true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.log.Info().Str("sku", product.SKU).Int("initial_stock", req.InitialStock).Msg("product created")

	s.hub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "product_created",
		Data: map[string]interface{}{
			"id":   product.ID,
			"sku":  product.SKU,
			"name": product.Name,
		},
		Message: fmt.Sprintf("Product '%s' created", product.Name),
	})

	if req.InitialStock > 0 {
		if _, err := s.ledger.RecordMovement(ctx, MovementInput{
			ProductID:       product.ID,
			Type:            model.MovementIn,
			Quantity:        req.InitialStock,
			ReferenceNumber: "INITIAL-" + product.SKU,
			Notes:           "Initial stock",
			ActorID:         actorID,
		}); err != nil {
			return nil, fmt.Errorf("record initial stock: %w", err)
		}
		return s.productRepo.FindByID(ctx, product.ID)
	}
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: unit_price must not be negative", ErrValidation)
		}
		product.UnitPrice = *req.UnitPrice
	}
	if req.MinimumStock != nil {
		product.MinimumStock = *req.MinimumStock
	}
	if req.MaximumStock != nil {
		product.MaximumStock = *req.MaximumStock
	}
	if req.ReorderLevel != nil {
		product.ReorderLevel = *req.ReorderLevel
	}
	if req.HasExpiry != nil {
		product.HasExpiry = *req.HasExpiry
	}
	if req.ExpiryDate != nil {
		product.ExpiryDate = req.ExpiryDate
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.hub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "product_updated",
		Data: map[string]interface{}{
			"id":   product.ID,
			"sku":  product.SKU,
			"name": product.Name,
		},
		Message: fmt.Sprintf("Product '%s' updated", product.Name),
	})
	return product, nil
}

func (s *inventoryService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *inventoryService) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}
