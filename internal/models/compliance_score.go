package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplianceScore is one stored compliance assessment for an ONLUS, 0-100.
// The latest by AssessedAt is the organization's current score.
type ComplianceScore struct {
	ScoreID    uuid.UUID `gorm:"column:score_id;type:uuid;primaryKey" json:"score_id"`
	OnlusID    uuid.UUID `gorm:"column:onlus_id;type:uuid;not null;index" json:"onlus_id"`
	Score      float64   `gorm:"column:score;not null" json:"score"`
	AssessedAt time.Time `gorm:"column:assessed_at;not null;index" json:"assessed_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (ComplianceScore) TableName() string {
	return "compliance_scores"
}

func (c *ComplianceScore) BeforeCreate(tx *gorm.DB) error {
	if c.ScoreID == uuid.Nil {
		c.ScoreID = uuid.New()
	}
	return nil
}
