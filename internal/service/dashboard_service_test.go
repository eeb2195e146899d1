package service

import (
	"context"
	"testing"
	"time"

	"inventory-plus/internal/model"
	"inventory-plus/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_Stats(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	dash := NewDashboardService(f.repos.products, f.repos.movements, DefaultAlertWindows())
	dash.(*dashboardService).now = func() time.Time { return now }

	testutil.CreateProduct(t, f.db, "OUT", 0, 5)
	testutil.CreateProduct(t, f.db, "LOW", 3, 5)
	testutil.CreateProduct(t, f.db, "OLD", 20, 5, testutil.WithExpiry(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
	testutil.CreateProduct(t, f.db, "SOON", 10, 5, testutil.WithExpiry(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)))
	testutil.CreateProduct(t, f.db, "GONE", 99, 5, testutil.Inactive())

	stats, err := dash.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.EqualValues(t, 1, stats.OutOfStock)
	assert.True(t, decimal.NewFromInt(330).Equal(stats.TotalValuation), stats.TotalValuation.String())
	assert.EqualValues(t, 1, stats.Expired)
	assert.EqualValues(t, 1, stats.ExpiringSoon)
}

func TestDashboard_MovementViews(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	dash := NewDashboardService(f.repos.products, f.repos.movements, DefaultAlertWindows())
	ctx := context.Background()

	p := testutil.CreateProduct(t, f.db, "P-1", 0, 2)
	_, err := f.ledger.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.MovementIn, Quantity: 10})
	require.NoError(t, err)
	_, err = f.ledger.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.MovementOut, Quantity: 4, ReferenceNumber: "SO-1"})
	require.NoError(t, err)

	days, err := dash.GetStockMovement(ctx, 3)
	require.NoError(t, err)
	require.Len(t, days, 3)
	today := days[2]
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), today.Date)
	assert.Equal(t, 10, today.Inbound)
	assert.Equal(t, 4, today.Outbound)
	assert.Zero(t, days[0].Inbound)

	recent, err := dash.RecentMovements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, model.MovementOut, recent[0].MovementType)
	assert.Equal(t, -4, recent[0].Change)
	assert.Equal(t, "P-1", recent[0].SKU)
	assert.Equal(t, "SO-1", recent[0].ReferenceNumber)

	levels, err := dash.StockLevels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, 6, levels[0].StockQuantity)
	assert.Equal(t, "in_stock", levels[0].Status)
	assert.True(t, decimal.NewFromInt(60).Equal(levels[0].StockValue))
}
