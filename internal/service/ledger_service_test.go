package service

import (
	"context"
	"testing"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/testutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	db     *gorm.DB
	ledger LedgerService
	hub    *testutil.Broadcaster
	repos  struct {
		products      repository.ProductRepository
		movements     repository.MovementRepository
		notifications repository.NotificationRepository
	}
}

func newLedgerFixture(t *testing.T, policy OverdrawPolicy) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{db: testutil.NewDB(t), hub: &testutil.Broadcaster{}}
	f.repos.products = repository.NewProductRepo(f.db)
	f.repos.movements = repository.NewMovementRepo(f.db)
	f.repos.notifications = repository.NewNotificationRepo(f.db)
	f.ledger = NewLedgerService(f.db, f.repos.products, f.repos.movements, f.repos.notifications, f.hub, policy, zerolog.Nop())
	return f
}

func (f *ledgerFixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.repos.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func (f *ledgerFixture) movementCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.StockMovement{}).Count(&n).Error)
	return n
}

func TestNextStock(t *testing.T) {
	tests := []struct {
		name    string
		policy  OverdrawPolicy
		typ     model.MovementType
		prev, q int
		want    int
		wantErr error
	}{
		{"in adds", OverdrawClamp, model.MovementIn, 5, 3, 8, nil},
		{"returned adds", OverdrawClamp, model.MovementReturned, 0, 4, 4, nil},
		{"out subtracts", OverdrawClamp, model.MovementOut, 10, 7, 3, nil},
		{"out clamps at zero", OverdrawClamp, model.MovementOut, 3, 5, 0, nil},
		{"damaged clamps at zero", OverdrawClamp, model.MovementDamaged, 1, 9, 0, nil},
		{"out rejects overdraw", OverdrawReject, model.MovementOut, 3, 5, 0, ErrInsufficientStock},
		{"adjustment sets absolute", OverdrawClamp, model.MovementAdjustment, 40, 12, 12, nil},
		{"adjustment to zero", OverdrawClamp, model.MovementAdjustment, 40, 0, 0, nil},
		{"negative adjustment", OverdrawClamp, model.MovementAdjustment, 40, -1, 0, ErrInvalidQuantity},
		{"zero quantity", OverdrawClamp, model.MovementIn, 5, 0, 0, ErrInvalidQuantity},
		{"unknown type", OverdrawClamp, model.MovementType("gift"), 5, 1, 0, ErrInvalidMovementType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextStock(tt.policy, tt.typ, tt.prev, tt.q)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordMovement_OutboundDropsToLowStock(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	p := testutil.CreateProduct(t, f.db, "P-1", 10, 5)

	m, err := f.ledger.RecordMovement(context.Background(), MovementInput{
		ProductID: p.ID,
		Type:      model.MovementOut,
		Quantity:  7,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, m.PreviousStock)
	assert.Equal(t, 3, m.NewStock)
	assert.Equal(t, -7, m.QuantityChange())
	assert.Equal(t, 3, f.stock(t, p.ID))

	updated, err := f.repos.products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	alert := EvaluateStockLevel(updated)
	require.NotNil(t, alert)
	assert.Equal(t, model.NotifLowStock, alert.Type)
	assert.Equal(t, model.PriorityHigh, alert.Priority)
	assert.Contains(t, f.hub.Actions(), "movement_recorded")
}

func TestRecordMovement_ClampsOverdrawToZero(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	p := testutil.CreateProduct(t, f.db, "P-2", 3, 5)

	m, err := f.ledger.RecordMovement(context.Background(), MovementInput{
		ProductID: p.ID,
		Type:      model.MovementOut,
		Quantity:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, m.PreviousStock)
	assert.Equal(t, 0, m.NewStock)
	assert.Equal(t, 5, m.Quantity)
	assert.Equal(t, 0, f.stock(t, p.ID))

	updated, err := f.repos.products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	alert := EvaluateStockLevel(updated)
	require.NotNil(t, alert)
	assert.Equal(t, model.NotifOutOfStock, alert.Type)
	assert.Equal(t, model.PriorityUrgent, alert.Priority)
}

func TestRecordMovement_RejectPolicyLeavesStockUntouched(t *testing.T) {
	f := newLedgerFixture(t, OverdrawReject)
	p := testutil.CreateProduct(t, f.db, "P-3", 3, 1)

	_, err := f.ledger.RecordMovement(context.Background(), MovementInput{
		ProductID: p.ID,
		Type:      model.MovementOut,
		Quantity:  5,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "INSUFFICIENT_STOCK", ReasonCode(err))
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.Zero(t, f.movementCount(t))
}

func TestRecordMovement_ValidationFailuresWriteNothing(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	p := testutil.CreateProduct(t, f.db, "P-4", 10, 2)
	inactive := testutil.CreateProduct(t, f.db, "P-5", 10, 2, testutil.Inactive())

	tests := []struct {
		name string
		in   MovementInput
		want error
	}{
		{"unknown type", MovementInput{ProductID: p.ID, Type: "gift", Quantity: 1}, ErrInvalidMovementType},
		{"zero quantity", MovementInput{ProductID: p.ID, Type: model.MovementIn, Quantity: 0}, ErrInvalidQuantity},
		{"negative quantity", MovementInput{ProductID: p.ID, Type: model.MovementOut, Quantity: -2}, ErrInvalidQuantity},
		{"negative adjustment", MovementInput{ProductID: p.ID, Type: model.MovementAdjustment, Quantity: -1}, ErrInvalidQuantity},
		{"missing product", MovementInput{ProductID: uuid.New(), Type: model.MovementIn, Quantity: 1}, ErrProductNotFound},
		{"nil product", MovementInput{Type: model.MovementIn, Quantity: 1}, ErrProductNotFound},
		{"inactive product", MovementInput{ProductID: inactive.ID, Type: model.MovementIn, Quantity: 1}, ErrProductInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.RecordMovement(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, f.movementCount(t))
	assert.Equal(t, 10, f.stock(t, p.ID))
}

func TestRecordMovement_AdjustmentToZeroIsValid(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	p := testutil.CreateProduct(t, f.db, "P-6", 8, 2)

	m, err := f.ledger.RecordMovement(context.Background(), MovementInput{
		ProductID: p.ID,
		Type:      model.MovementAdjustment,
		Quantity:  0,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, m.PreviousStock)
	assert.Equal(t, 0, m.NewStock)
	assert.Equal(t, -8, m.QuantityChange())
}

func TestRecordMovement_LedgerStaysConsistent(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	p := testutil.CreateProduct(t, f.db, "P-7", 4, 0)
	ctx := context.Background()

	steps := []MovementInput{
		{Type: model.MovementOut, Quantity: 3},
		{Type: model.MovementOut, Quantity: 3},
		{Type: model.MovementIn, Quantity: 10},
		{Type: model.MovementDamaged, Quantity: 4},
		{Type: model.MovementAdjustment, Quantity: 2},
		{Type: model.MovementExpired, Quantity: 9},
		{Type: model.MovementReturned, Quantity: 1},
		{Type: model.MovementTransfer, Quantity: 7},
	}
	for _, in := range steps {
		in.ProductID = p.ID
		m, err := f.ledger.RecordMovement(ctx, in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m.NewStock, 0)
		assert.Equal(t, m.NewStock-m.PreviousStock, m.QuantityChange())
	}

	history, err := f.ledger.ProductHistory(ctx, p.ID, 100)
	require.NoError(t, err)
	require.Len(t, history, len(steps))

	// History is newest first; each entry starts where the older one ended.
	for i := 0; i < len(history)-1; i++ {
		assert.Equal(t, history[i+1].NewStock, history[i].PreviousStock)
	}
	assert.Equal(t, history[0].NewStock, f.stock(t, p.ID))
}

func TestRecordMovement_SignificantLossCreatesSystemNotification(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	p := testutil.CreateProduct(t, f.db, "P-8", 100, 10)
	ctx := context.Background()

	_, err := f.ledger.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.MovementOut, Quantity: 4})
	require.NoError(t, err)
	_, err = f.ledger.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.MovementIn, Quantity: 50})
	require.NoError(t, err)
	m, err := f.ledger.RecordMovement(ctx, MovementInput{ProductID: p.ID, Type: model.MovementDamaged, Quantity: 5})
	require.NoError(t, err)

	var notes []model.Notification
	require.NoError(t, f.db.Where("type = ?", model.NotifSystem).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, "Significant Stock Movement: Product P-8", notes[0].Title)
	assert.Equal(t, "Damaged of 5 units for Product P-8 (SKU: P-8)", notes[0].Message)
	require.NotNil(t, notes[0].Payload.Movement)
	assert.Equal(t, m.ID, notes[0].Payload.Movement.MovementID)
}

func TestGetMovement_NotFound(t *testing.T) {
	f := newLedgerFixture(t, OverdrawClamp)
	_, err := f.ledger.GetMovement(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrMovementNotFound)
}
