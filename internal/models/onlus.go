package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OnlusStatusActive    = "active"
	OnlusStatusSuspended = "suspended"
)

// Onlus is a registered non-profit organization eligible for allocations.
type Onlus struct {
	OnlusID        uuid.UUID `gorm:"column:onlus_id;type:uuid;primaryKey" json:"onlus_id"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	Category       string    `gorm:"column:category" json:"category"`
	Region         string    `gorm:"column:region" json:"region"`
	ContactEmail   *string   `gorm:"column:contact_email" json:"contact_email"`
	AnnualBudget   *float64  `gorm:"column:annual_budget;type:decimal(18,2)" json:"annual_budget"`
	CurrentFunding float64   `gorm:"column:current_funding;type:decimal(18,2);not null;default:0" json:"current_funding"`
	Status         string    `gorm:"column:status;not null;default:active" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Onlus) TableName() string {
	return "onlus_organizations"
}

func (o *Onlus) BeforeCreate(tx *gorm.DB) error {
	if o.OnlusID == uuid.Nil {
		o.OnlusID = uuid.New()
	}
	return nil
}
