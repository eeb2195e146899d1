package service

import (
	"context"
	"testing"

	"inventory-plus/internal/model"
	"inventory-plus/internal/testutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventory(f *ledgerFixture) InventoryService {
	return NewInventoryService(f.repos.products, f.ledger, f.hub, zerolog.Nop())
}

func TestCreateProduct_InitialStockGoesThroughLedger(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	inv := newInventory(f)
	ctx := context.Background()

	p, err := inv.CreateProduct(ctx, &CreateProductRequest{
		SKU:          " abc-1 ",
		Name:         "Canned Beans",
		UnitPrice:    decimal.RequireFromString("2.50"),
		InitialStock: 12,
		MinimumStock: 5,
		MaximumStock: 100,
		ReorderLevel: 8,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", p.SKU)
	assert.Equal(t, 12, p.StockQuantity)

	history, err := f.ledger.ProductHistory(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.MovementIn, history[0].MovementType)
	assert.Equal(t, 0, history[0].PreviousStock)
	assert.Equal(t, 12, history[0].NewStock)
	assert.Equal(t, "INITIAL-ABC-1", history[0].ReferenceNumber)

	actions := f.hub.Actions()
	require.NotEmpty(t, actions)
	assert.Equal(t, "product_created", actions[0])
}

func TestCreateProduct_Rejects(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	inv := newInventory(f)
	ctx := context.Background()
	testutil.CreateProduct(t, f.db, "ABC-1", 0, 5)

	_, err := inv.CreateProduct(ctx, &CreateProductRequest{SKU: "abc-1", Name: "Dup"}, nil)
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	_, err = inv.CreateProduct(ctx, &CreateProductRequest{SKU: "X-1", Name: "Neg", UnitPrice: decimal.NewFromInt(-1)}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = inv.CreateProduct(ctx, &CreateProductRequest{SKU: "X-2"}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.movementCount(t))
}

func TestUpdateProduct_LeavesStockAlone(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	inv := newInventory(f)
	ctx := context.Background()
	p := testutil.CreateProduct(t, f.db, "P-1", 40, 5)

	name := "Renamed"
	minimum := 50
	inactive := false
	updated, err := inv.UpdateProduct(ctx, p.ID, &UpdateProductRequest{Name: &name, MinimumStock: &minimum, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 50, updated.MinimumStock)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 40, f.stock(t, p.ID))
	assert.Zero(t, f.movementCount(t))

	_, err = inv.UpdateProduct(ctx, uuid.New(), &UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = inv.GetProductByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}
