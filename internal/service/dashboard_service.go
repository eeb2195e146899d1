package service

import (
	"context"
	"time"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	RecentMovements(ctx context.Context, limit int) ([]MovementView, error)
	StockLevels(ctx context.Context) ([]StockLevelView, error)
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	repository.DashboardStats
	ExpiringSoon int64 `json:"expiring_soon_count"`
	Expired      int64 `json:"expired_count"`
}

// MovementView is the read projection of a ledger entry.
type MovementView struct {
	ID              uuid.UUID          `json:"id"`
	ProductID       uuid.UUID          `json:"product_id"`
	ProductName     string             `json:"product_name"`
	SKU             string             `json:"sku"`
	MovementType    model.MovementType `json:"movement_type"`
	Quantity        int                `json:"quantity"`
	Change          int                `json:"quantity_change"`
	PreviousStock   int                `json:"previous_stock"`
	NewStock        int                `json:"new_stock"`
	ReferenceNumber string             `json:"reference_number,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// StockLevelView is the current stock of one product.
type StockLevelView struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	MinimumStock  int             `json:"minimum_stock"`
	ReorderLevel  int             `json:"reorder_level"`
	Status        string          `json:"status"`
	StockValue    decimal.Decimal `json:"stock_value"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type dashboardService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	windows      AlertWindows
	now          func() time.Time
}

func NewDashboardService(productRepo repository.ProductRepository, movementRepo repository.MovementRepository, windows AlertWindows) DashboardService {
	return &dashboardService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		windows:      windows,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	base, err := s.productRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{DashboardStats: *base}

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range products {
		alert := EvaluateExpiry(&products[i], now, s.windows)
		if alert == nil {
			continue
		}
		if alert.Type == model.NotifExpired {
			stats.Expired++
		} else {
			stats.ExpiringSoon++
		}
	}
	return stats, nil
}

// GetStockMovement returns daily inbound/outbound totals for the last days (today included).
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	loc := s.windows.location()
	end := s.now().In(loc)
	y, m, d := end.AddDate(0, 0, -(days - 1)).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return s.movementRepo.DailyTotals(ctx, start, end, loc)
}

func (s *dashboardService) RecentMovements(ctx context.Context, limit int) ([]MovementView, error) {
	if limit <= 0 {
		limit = 10
	}
	movements, err := s.movementRepo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	views := make([]MovementView, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		v := MovementView{
			ID:              m.ID,
			ProductID:       m.ProductID,
			MovementType:    m.MovementType,
			Quantity:        m.Quantity,
			Change:          m.QuantityChange(),
			PreviousStock:   m.PreviousStock,
			NewStock:        m.NewStock,
			ReferenceNumber: m.ReferenceNumber,
			CreatedAt:       m.CreatedAt,
		}
		if m.Product != nil {
			v.ProductName = m.Product.Name
			v.SKU = m.Product.SKU
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *dashboardService) StockLevels(ctx context.Context) ([]StockLevelView, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]StockLevelView, 0, len(products))
	for i := range products {
		p := &products[i]
		views = append(views, StockLevelView{
			ID:            p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			Category:      p.Category,
			StockQuantity: p.StockQuantity,
			MinimumStock:  p.MinimumStock,
			ReorderLevel:  p.ReorderLevel,
			Status:        p.StockStatus(),
			StockValue:    p.StockValue(),
			UpdatedAt:     p.UpdatedAt,
		})
	}
	return views, nil
}
