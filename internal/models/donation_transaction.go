package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TransactionStatusCreated   = "created"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// DonationTransaction is one donor payment routed to an ONLUS as part of an
// allocation result.
type DonationTransaction struct {
	TransactionID uuid.UUID  `gorm:"column:transaction_id;type:uuid;primaryKey" json:"transaction_id"`
	DonorID       string     `gorm:"column:donor_id;not null;index" json:"donor_id"`
	OnlusID       uuid.UUID  `gorm:"column:onlus_id;type:uuid;not null;index" json:"onlus_id"`
	ResultID      *uuid.UUID `gorm:"column:result_id;type:uuid;index" json:"result_id"`
	Amount        float64    `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Status        string     `gorm:"column:status;not null;default:created" json:"status"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (DonationTransaction) TableName() string {
	return "donation_transactions"
}

func (t *DonationTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == uuid.Nil {
		t.TransactionID = uuid.New()
	}
	return nil
}
