package donations

import (
	"context"
	"errors"
	"math"
	"time"

	"goodplay-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDonorRequired       = errors.New("Donor id is required")
	ErrTransactionNotFound = errors.New("Donation transaction not found")
)

// Service creates and settles the donor transactions backing allocation
// results.
type Service struct {
	DB *gorm.DB
}

// CreateTransaction records a donor payment routed to an ONLUS.
func (s *Service) CreateTransaction(ctx context.Context, donorID string, onlusID uuid.UUID, resultID uuid.UUID, amount float64) (uuid.UUID, error) {
	if donorID == "" {
		return uuid.Nil, ErrDonorRequired
	}
	amount = math.Round(amount*100) / 100
	if amount <= 0 {
		return uuid.Nil, models.ErrInvalidAmount
	}
	txn := models.DonationTransaction{
		DonorID: donorID,
		OnlusID: onlusID,
		Amount:  amount,
		Status:  models.TransactionStatusCreated,
	}
	if resultID != uuid.Nil {
		txn.ResultID = &resultID
	}
	if err := s.DB.WithContext(ctx).Create(&txn).Error; err != nil {
		return uuid.Nil, err
	}
	return txn.TransactionID, nil
}

// MarkCompleted settles a created transaction.
func (s *Service) MarkCompleted(ctx context.Context, transactionID uuid.UUID) error {
	now := time.Now().UTC()
	res := s.DB.WithContext(ctx).Model(&models.DonationTransaction{}).
		Where("transaction_id = ? AND status = ?", transactionID, models.TransactionStatusCreated).
		Updates(map[string]interface{}{
			"status":       models.TransactionStatusCompleted,
			"completed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// MarkFailed flags a transaction that could not settle.
func (s *Service) MarkFailed(ctx context.Context, transactionID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&models.DonationTransaction{}).
		Where("transaction_id = ?", transactionID).
		Update("status", models.TransactionStatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListForResult returns the transactions executed for one allocation result.
func (s *Service) ListForResult(ctx context.Context, resultID uuid.UUID) ([]models.DonationTransaction, error) {
	var txns []models.DonationTransaction
	if err := s.DB.WithContext(ctx).
		Where("result_id = ?", resultID).
		Order("created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
