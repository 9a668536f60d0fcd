package donations

import (
	"context"
	"testing"

	"goodplay-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DonationTransaction{}))
	return &Service{DB: db}
}

func TestCreateTransaction_RoundsToCents(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	onlusID := uuid.New()
	resultID := uuid.New()

	txID, err := svc.CreateTransaction(ctx, "donor-a", onlusID, resultID, 99.999)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, txID)

	var txn models.DonationTransaction
	require.NoError(t, svc.DB.First(&txn, "transaction_id = ?", txID).Error)
	assert.InDelta(t, 100.0, txn.Amount, 1e-9)
	assert.Equal(t, models.TransactionStatusCreated, txn.Status)
	require.NotNil(t, txn.ResultID)
	assert.Equal(t, resultID, *txn.ResultID)
	assert.Nil(t, txn.CompletedAt)
}

func TestCreateTransaction_WithoutResult(t *testing.T) {
	svc := setupService(t)

	txID, err := svc.CreateTransaction(context.Background(), "donor-a", uuid.New(), uuid.Nil, 25)
	require.NoError(t, err)

	var txn models.DonationTransaction
	require.NoError(t, svc.DB.First(&txn, "transaction_id = ?", txID).Error)
	assert.Nil(t, txn.ResultID)
}

func TestCreateTransaction_Validation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, "", uuid.New(), uuid.Nil, 10)
	assert.ErrorIs(t, err, ErrDonorRequired)

	_, err = svc.CreateTransaction(ctx, "donor-a", uuid.New(), uuid.Nil, 0)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestMarkCompleted_SettlesOnce(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	txID, err := svc.CreateTransaction(ctx, "donor-a", uuid.New(), uuid.Nil, 50)
	require.NoError(t, err)

	require.NoError(t, svc.MarkCompleted(ctx, txID))

	var txn models.DonationTransaction
	require.NoError(t, svc.DB.First(&txn, "transaction_id = ?", txID).Error)
	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.NotNil(t, txn.CompletedAt)

	// Already settled: the conditional update matches nothing.
	err = svc.MarkCompleted(ctx, txID)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestMarkFailed_UnknownTransaction(t *testing.T) {
	svc := setupService(t)

	err := svc.MarkFailed(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestListForResult_ReturnsSettledOrder(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	resultID := uuid.New()

	first, err := svc.CreateTransaction(ctx, "donor-a", uuid.New(), resultID, 30)
	require.NoError(t, err)
	second, err := svc.CreateTransaction(ctx, "donor-b", uuid.New(), resultID, 70)
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, "donor-c", uuid.New(), uuid.Nil, 10)
	require.NoError(t, err)

	txns, err := svc.ListForResult(ctx, resultID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, first, txns[0].TransactionID)
	assert.Equal(t, second, txns[1].TransactionID)
}
