package service

import (
	"context"
	"regexp"
	"testing"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/testutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txnFixture struct {
	*ledgerFixture
	txns    TransactionService
	txnRepo repository.TransactionRepository
}

func newTxnFixture(t *testing.T) *txnFixture {
	t.Helper()
	lf := newLedgerFixture(t, OverdrawClamp)
	txnRepo := repository.NewTransactionRepo(lf.db)
	return &txnFixture{
		ledgerFixture: lf,
		txnRepo:       txnRepo,
		txns: NewTransactionService(lf.db, txnRepo, lf.repos.products, lf.repos.movements,
			lf.repos.notifications, lf.hub, OverdrawClamp, zerolog.Nop()),
	}
}

func TestCancelTransaction_RestoresStock(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()
	q := testutil.CreateProduct(t, f.db, "Q-1", 5, 2)

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxPurchase, ReferenceNumber: "PO-100"})
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusDraft, txn.Status)

	in, err := f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: q.ID, Type: model.MovementIn, Quantity: 20})
	require.NoError(t, err)
	assert.Equal(t, 5, in.PreviousStock)
	assert.Equal(t, 25, in.NewStock)
	assert.Equal(t, "PO-100", in.ReferenceNumber)
	require.NotNil(t, in.TransactionID)
	assert.Equal(t, txn.ID, *in.TransactionID)

	_, err = f.txns.CompleteTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)

	cancelled, err := f.txns.CancelTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, f.stock(t, q.ID))

	loaded, err := f.txns.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Movements, 2)
	rev := loaded.Movements[1]
	assert.Equal(t, model.MovementAdjustment, rev.MovementType)
	assert.Equal(t, 20, rev.Quantity)
	assert.Equal(t, 25, rev.PreviousStock)
	assert.Equal(t, 5, rev.NewStock)
	assert.Equal(t, "REVERSE-PO-100", rev.ReferenceNumber)
	assert.Equal(t, "Reversal of transaction PO-100", rev.Notes)
	require.NotNil(t, rev.ReversesID)
	assert.Equal(t, in.ID, *rev.ReversesID)

	assert.Contains(t, f.hub.Actions(), "transaction_cancelled")
}

func TestCancelTransaction_ReversesNewestFirst(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()
	a := testutil.CreateProduct(t, f.db, "A-1", 5, 0)

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxAdjustment})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: a.ID, Type: model.MovementIn, Quantity: 10})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: a.ID, Type: model.MovementOut, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 12, f.stock(t, a.ID))

	_, err = f.txns.CancelTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(t, a.ID))

	loaded, err := f.txns.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Movements, 4)
	assert.Equal(t, 12, loaded.Movements[2].PreviousStock)
	assert.Equal(t, 15, loaded.Movements[2].NewStock)
	assert.Equal(t, 15, loaded.Movements[3].PreviousStock)
	assert.Equal(t, 5, loaded.Movements[3].NewStock)
}

func TestCancelTransaction_DraftOnlyChangesStatus(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxSale})
	require.NoError(t, err)

	cancelled, err := f.txns.CancelTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusCancelled, cancelled.Status)
	assert.Zero(t, f.movementCount(t))

	_, err = f.txns.CancelTransaction(ctx, txn.ID, nil)
	assert.ErrorIs(t, err, ErrTransactionCancelled)

	_, err = f.txns.CompleteTransaction(ctx, txn.ID, nil)
	assert.ErrorIs(t, err, ErrTransactionCancelled)
}

func TestCancelTransaction_UnderflowRollsBack(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()
	q := testutil.CreateProduct(t, f.db, "Q-2", 5, 0)

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxPurchase, ReferenceNumber: "PO-200"})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: q.ID, Type: model.MovementIn, Quantity: 20})
	require.NoError(t, err)

	// Stock sold outside the transaction; undoing the +20 would go negative.
	_, err = f.ledger.RecordMovement(ctx, MovementInput{ProductID: q.ID, Type: model.MovementOut, Quantity: 22})
	require.NoError(t, err)
	before := f.movementCount(t)

	_, err = f.txns.CancelTransaction(ctx, txn.ID, nil)
	assert.ErrorIs(t, err, ErrReversalUnderflow)
	assert.Equal(t, 3, f.stock(t, q.ID))
	assert.Equal(t, before, f.movementCount(t))

	loaded, err := f.txns.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusPending, loaded.Status)
}

func TestCancelTransaction_DeletedProductRollsBack(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()
	a := testutil.CreateProduct(t, f.db, "D-1", 0, 0)
	b := testutil.CreateProduct(t, f.db, "D-2", 5, 0)

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxPurchase, ReferenceNumber: "PO-300"})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: a.ID, Type: model.MovementIn, Quantity: 20})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: b.ID, Type: model.MovementIn, Quantity: 10})
	require.NoError(t, err)
	_, err = f.txns.CompleteTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&model.Product{}, "id = ?", a.ID).Error)
	before := f.movementCount(t)

	_, err = f.txns.CancelTransaction(ctx, txn.ID, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 15, f.stock(t, b.ID))
	assert.Equal(t, before, f.movementCount(t))

	loaded, err := f.txns.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusCompleted, loaded.Status)
	assert.Nil(t, loaded.CancelledAt)
}

func TestCancelTransaction_SameTimestampKeepsInsertionOrder(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, f.db, "T-1", 0, 0)

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxAdjustment})
	require.NoError(t, err)
	in, err := f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: p.ID, Type: model.MovementIn, Quantity: 5})
	require.NoError(t, err)
	out, err := f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: p.ID, Type: model.MovementOut, Quantity: 5})
	require.NoError(t, err)
	assert.Less(t, in.ID.String(), out.ID.String())

	// Both entries land in the same clock tick.
	require.NoError(t, f.db.Model(&model.StockMovement{}).
		Where("transaction_id = ?", txn.ID).
		Update("created_at", in.CreatedAt).Error)

	_, err = f.txns.CancelTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, p.ID))

	loaded, err := f.txns.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Movements, 4)
	assert.Equal(t, in.ID, loaded.Movements[0].ID)
	assert.Equal(t, out.ID, loaded.Movements[1].ID)
}

func TestAddMovement_ClosedTransactions(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, f.db, "C-1", 5, 0)

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxSale})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: p.ID, Type: model.MovementOut, Quantity: 1})
	require.NoError(t, err)

	done, err := f.txns.CompleteTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusCompleted, done.Status)

	again, err := f.txns.CompleteTransaction(ctx, txn.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusCompleted, again.Status)

	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: p.ID, Type: model.MovementOut, Quantity: 1})
	assert.ErrorIs(t, err, ErrTransactionClosed)
	assert.Equal(t, 4, f.stock(t, p.ID))

	_, err = f.txns.AddMovement(ctx, uuid.New(), MovementInput{ProductID: p.ID, Type: model.MovementOut, Quantity: 1})
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestAddMovement_FailureLeavesTransactionUntouched(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxSale})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: uuid.New(), Type: model.MovementOut, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)

	loaded, err := f.txns.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusDraft, loaded.Status)
}

func TestAddMovement_RecomputesTotal(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()
	a := testutil.CreateProduct(t, f.db, "T-1", 0, 0)
	b := testutil.CreateProduct(t, f.db, "T-2", 0, 0)
	cost := decimal.RequireFromString("2.50")

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxPurchase})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: a.ID, Type: model.MovementIn, Quantity: 20})
	require.NoError(t, err)
	_, err = f.txns.AddMovement(ctx, txn.ID, MovementInput{ProductID: b.ID, Type: model.MovementIn, Quantity: 4, UnitCost: &cost})
	require.NoError(t, err)

	loaded, err := f.txns.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusPending, loaded.Status)
	// 20 × 10 (unit price) + 4 × 2.50 (unit cost)
	assert.True(t, decimal.NewFromInt(210).Equal(loaded.TotalAmount), "total = %s", loaded.TotalAmount)
}

func TestCreateTransaction_References(t *testing.T) {
	f := newTxnFixture(t)
	ctx := context.Background()

	txn, err := f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxSale})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^SALE-\d{8}-[0-9A-F]{6}$`), txn.ReferenceNumber)

	_, err = f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxPurchase, ReferenceNumber: "PO-1"})
	require.NoError(t, err)
	_, err = f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: model.TxPurchase, ReferenceNumber: "PO-1"})
	assert.ErrorIs(t, err, ErrDuplicateReference)

	_, err = f.txns.CreateTransaction(ctx, TransactionInput{TransactionType: "gift"})
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
}
