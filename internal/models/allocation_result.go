package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ResultStatusScheduled  = "scheduled"
	ResultStatusInProgress = "in_progress"
	ResultStatusCompleted  = "completed"
	ResultStatusFailed     = "failed"
	ResultStatusPartial    = "partial"
	ResultStatusCancelled  = "cancelled"
)

const (
	MethodAutomatic = "automatic"
	MethodManual    = "manual"
	MethodEmergency = "emergency"
	MethodBatch     = "batch"
	MethodMatching  = "matching"
)

// DonorContribution is one donor transaction accumulated during execution.
type DonorContribution struct {
	DonorID       string    `json:"donor_id"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// AllocationFactors records how the engine arrived at this result.
type AllocationFactors struct {
	Score                float64    `json:"score"`
	SelectedPoolID       string     `json:"selected_pool_id"`
	ReservationID        string     `json:"reservation_id,omitempty"`
	Forced               bool       `json:"forced,omitempty"`
	EmergencyProcessedAt *time.Time `json:"emergency_processed_at,omitempty"`
}

// AllocationResult records one allocation from a funding pool to an ONLUS,
// from the scheduled reservation through donor transaction execution.
// NetAmount is always AllocatedAmount minus FeesDeducted.
type AllocationResult struct {
	ResultID             uuid.UUID                              `gorm:"column:result_id;type:uuid;primaryKey" json:"result_id"`
	RequestID            uuid.UUID                              `gorm:"column:request_id;type:uuid;not null;uniqueIndex" json:"request_id"`
	OnlusID              uuid.UUID                              `gorm:"column:onlus_id;type:uuid;not null;index" json:"onlus_id"`
	DonorIDs             datatypes.JSONSlice[string]            `gorm:"column:donor_ids" json:"donor_ids"`
	AllocatedAmount      float64                                `gorm:"column:allocated_amount;type:decimal(18,2);not null;default:0" json:"allocated_amount"`
	TotalDonationsAmount float64                                `gorm:"column:total_donations_amount;type:decimal(18,2);not null;default:0" json:"total_donations_amount"`
	AllocationMethod     string                                 `gorm:"column:allocation_method;not null;default:automatic" json:"allocation_method"`
	Status               string                                 `gorm:"column:status;not null;default:scheduled;index" json:"status"`
	FeesDeducted         float64                                `gorm:"column:fees_deducted;type:decimal(18,2);not null;default:0" json:"fees_deducted"`
	NetAmount            float64                                `gorm:"column:net_amount;type:decimal(18,2);not null;default:0" json:"net_amount"`
	DonorBreakdown       datatypes.JSONSlice[DonorContribution] `gorm:"column:donor_breakdown" json:"donor_breakdown"`
	RetryCount           int                                    `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	TransactionIDs       datatypes.JSONSlice[string]            `gorm:"column:transaction_ids" json:"transaction_ids"`
	AllocationFactors    datatypes.JSONType[AllocationFactors]  `gorm:"column:allocation_factors" json:"allocation_factors"`
	ErrorMessage         *string                                `gorm:"column:error_message" json:"error_message"`
	ExecutedAt           *time.Time                             `gorm:"column:executed_at" json:"executed_at"`
	CompletedAt          *time.Time                             `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt            time.Time                              `json:"created_at"`
	UpdatedAt            time.Time                              `json:"updated_at"`
}

func (AllocationResult) TableName() string {
	return "allocation_results"
}

func (r *AllocationResult) BeforeCreate(tx *gorm.DB) error {
	if r.ResultID == uuid.Nil {
		r.ResultID = uuid.New()
	}
	return nil
}

// AddDonorContribution accumulates one executed donor transaction into the
// breakdown and keeps totals and net amount consistent.
func (r *AllocationResult) AddDonorContribution(donorID string, amount float64, transactionID string) {
	r.DonorBreakdown = append(r.DonorBreakdown, DonorContribution{
		DonorID:       donorID,
		Amount:        amount,
		TransactionID: transactionID,
		RecordedAt:    time.Now().UTC(),
	})
	if !containsString(r.DonorIDs, donorID) {
		r.DonorIDs = append(r.DonorIDs, donorID)
	}
	r.TransactionIDs = append(r.TransactionIDs, transactionID)
	r.TotalDonationsAmount += amount
	r.recalcNet()
}

// ApplyFees sets the deducted fees and recomputes the net amount.
func (r *AllocationResult) ApplyFees(fees float64) {
	r.FeesDeducted = fees
	r.recalcNet()
}

// MarkInProgress starts execution of a scheduled result.
func (r *AllocationResult) MarkInProgress() error {
	if r.Status != ResultStatusScheduled {
		return ErrInvalidTransition
	}
	r.Status = ResultStatusInProgress
	now := time.Now().UTC()
	r.ExecutedAt = &now
	return nil
}

// MarkCompleted finishes a fully executed result.
func (r *AllocationResult) MarkCompleted() error {
	if r.Status != ResultStatusScheduled && r.Status != ResultStatusInProgress {
		return ErrInvalidTransition
	}
	r.Status = ResultStatusCompleted
	now := time.Now().UTC()
	r.CompletedAt = &now
	r.recalcNet()
	return nil
}

// MarkPartial records an execution where only part of the target amount went
// through, with an explanatory note.
func (r *AllocationResult) MarkPartial(note string) error {
	if r.Status != ResultStatusScheduled && r.Status != ResultStatusInProgress {
		return ErrInvalidTransition
	}
	r.Status = ResultStatusPartial
	r.ErrorMessage = &note
	return nil
}

// MarkFailed records a failed execution with an explanatory note.
func (r *AllocationResult) MarkFailed(note string) error {
	if r.Status != ResultStatusScheduled && r.Status != ResultStatusInProgress {
		return ErrInvalidTransition
	}
	r.Status = ResultStatusFailed
	r.ErrorMessage = &note
	return nil
}

// PrepareRetry rewinds a failed result to scheduled for another attempt.
func (r *AllocationResult) PrepareRetry() error {
	if r.Status != ResultStatusFailed {
		return ErrInvalidTransition
	}
	r.Status = ResultStatusScheduled
	r.RetryCount++
	r.ErrorMessage = nil
	return nil
}

func (r *AllocationResult) recalcNet() {
	r.NetAmount = r.AllocatedAmount - r.FeesDeducted
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
