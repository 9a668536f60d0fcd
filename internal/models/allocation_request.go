package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RequestStatusPending    = "pending"
	RequestStatusApproved   = "approved"
	RequestStatusProcessing = "processing"
	RequestStatusCompleted  = "completed"
	RequestStatusRejected   = "rejected"
	RequestStatusCancelled  = "cancelled"
)

// Priority runs 1 (low) to 5 (emergency).
const (
	PriorityLow       = 1
	PriorityEmergency = 5
)

// AllocationRequest is a funding request from an ONLUS, scored and routed to
// a funding pool by the allocation engine.
type AllocationRequest struct {
	RequestID          uuid.UUID                   `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	OnlusID            uuid.UUID                   `gorm:"column:onlus_id;type:uuid;not null;index" json:"onlus_id"`
	RequestedAmount    float64                     `gorm:"column:requested_amount;type:decimal(18,2);not null" json:"requested_amount"`
	ProjectTitle       string                      `gorm:"column:project_title;not null" json:"project_title"`
	ProjectDescription string                      `gorm:"column:project_description" json:"project_description"`
	UrgencyLevel       int                         `gorm:"column:urgency_level;not null;default:1" json:"urgency_level"`
	Priority           int                         `gorm:"column:priority;not null;default:1" json:"priority"`
	Category           string                      `gorm:"column:category" json:"category"`
	Deadline           *time.Time                  `gorm:"column:deadline" json:"deadline"`
	DonorPreferences   datatypes.JSONSlice[string] `gorm:"column:donor_preferences" json:"donor_preferences"`
	Status             string                      `gorm:"column:status;not null;default:pending;index" json:"status"`
	AllocationScore    float64                     `gorm:"column:allocation_score;not null;default:0" json:"allocation_score"`
	RejectionReason    *string                     `gorm:"column:rejection_reason" json:"rejection_reason"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func (AllocationRequest) TableName() string {
	return "allocation_requests"
}

func (r *AllocationRequest) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == uuid.Nil {
		r.RequestID = uuid.New()
	}
	return nil
}

// IsEmergency reports whether the request carries emergency priority.
func (r *AllocationRequest) IsEmergency() bool {
	return r.Priority == PriorityEmergency
}
