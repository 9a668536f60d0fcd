package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PoolTypeGeneral          = "general"
	PoolTypeEmergency        = "emergency"
	PoolTypeMatching         = "matching"
	PoolTypeCategorySpecific = "category_specific"
	PoolTypeProjectSpecific  = "project_specific"
	PoolTypeEndowment        = "endowment"
)

const (
	PoolStatusActive      = "active"
	PoolStatusPaused      = "paused"
	PoolStatusDepleted    = "depleted"
	PoolStatusClosed      = "closed"
	PoolStatusMaintenance = "maintenance"
)

// balanceTolerance absorbs float rounding drift in balance comparisons.
const balanceTolerance = 1e-6

// PoolReservation is a temporary hold on pool funds pending execution.
type PoolReservation struct {
	ReservationID string    `json:"reservation_id"`
	RequestID     string    `json:"request_id"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// AllocationRecord is one entry in a pool's append-only allocation history.
type AllocationRecord struct {
	AllocationID string    `json:"allocation_id"`
	OnlusID      string    `json:"onlus_id"`
	RequestID    string    `json:"request_id"`
	Amount       float64   `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
}

// FundingPool is a named bucket of donor money with balances, restrictions
// and an append-only allocation history.
// Invariant: TotalBalance == AvailableBalance + AllocatedBalance + ReservedBalance.
type FundingPool struct {
	PoolID                   uuid.UUID                             `gorm:"column:pool_id;type:uuid;primaryKey" json:"pool_id"`
	Name                     string                                `gorm:"column:name;not null" json:"name"`
	PoolType                 string                                `gorm:"column:pool_type;not null;default:general" json:"pool_type"`
	TotalBalance             float64                               `gorm:"column:total_balance;type:decimal(18,2);not null;default:0" json:"total_balance"`
	AvailableBalance         float64                               `gorm:"column:available_balance;type:decimal(18,2);not null;default:0" json:"available_balance"`
	AllocatedBalance         float64                               `gorm:"column:allocated_balance;type:decimal(18,2);not null;default:0" json:"allocated_balance"`
	ReservedBalance          float64                               `gorm:"column:reserved_balance;type:decimal(18,2);not null;default:0" json:"reserved_balance"`
	CategoryRestrictions     datatypes.JSONSlice[string]           `gorm:"column:category_restrictions" json:"category_restrictions"`
	GeographicalRestrictions datatypes.JSONSlice[string]           `gorm:"column:geographical_restrictions" json:"geographical_restrictions"`
	MinimumAllocation        float64                               `gorm:"column:minimum_allocation;type:decimal(18,2);not null;default:0" json:"minimum_allocation"`
	MaximumAllocation        *float64                              `gorm:"column:maximum_allocation;type:decimal(18,2)" json:"maximum_allocation"`
	// No gorm default on purpose: a default-tagged bool never writes false.
	AutoAllocationEnabled    bool                                  `gorm:"column:auto_allocation_enabled;not null" json:"auto_allocation_enabled"`
	PriorityWeight           float64                               `gorm:"column:priority_weight;not null;default:1" json:"priority_weight"`
	ExpiryDate               *time.Time                            `gorm:"column:expiry_date" json:"expiry_date"`
	Status                   string                                `gorm:"column:status;not null;default:active" json:"status"`
	Reservations             datatypes.JSONSlice[PoolReservation]  `gorm:"column:reservations" json:"reservations"`
	AllocationHistory        datatypes.JSONSlice[AllocationRecord] `gorm:"column:allocation_history" json:"allocation_history"`
	Version                  uint                                  `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt                time.Time                             `json:"created_at"`
	UpdatedAt                time.Time                             `json:"updated_at"`
}

func (FundingPool) TableName() string {
	return "funding_pools"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (p *FundingPool) BeforeCreate(tx *gorm.DB) error {
	if p.PoolID == uuid.Nil {
		p.PoolID = uuid.New()
	}
	return nil
}

// AddFunds credits the pool. A depleted pool becomes active again.
func (p *FundingPool) AddFunds(amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Status == PoolStatusClosed {
		return ErrPoolClosed
	}
	p.TotalBalance += amount
	p.AvailableBalance += amount
	if p.Status == PoolStatusDepleted {
		p.Status = PoolStatusActive
	}
	return nil
}

// ReserveFunds moves amount from available to reserved and records the hold.
// The whole amount must fit in the available balance: no partial reservation.
func (p *FundingPool) ReserveFunds(requestID string, amount float64) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if p.Status != PoolStatusActive {
		return "", ErrPoolNotActive
	}
	if amount > p.AvailableBalance {
		return "", ErrInsufficientFunds
	}
	reservationID := uuid.NewString()
	p.AvailableBalance -= amount
	p.ReservedBalance += amount
	p.Reservations = append(p.Reservations, PoolReservation{
		ReservationID: reservationID,
		RequestID:     requestID,
		Amount:        amount,
		CreatedAt:     time.Now().UTC(),
	})
	return reservationID, nil
}

// AllocateFunds deducts amount for a final allocation, drawing from available
// first and the remainder from reserved, and appends a history record.
func (p *FundingPool) AllocateFunds(amount float64, allocationID, onlusID, requestID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Status == PoolStatusClosed {
		return ErrPoolClosed
	}
	if amount > p.AvailableBalance+p.ReservedBalance+balanceTolerance {
		return ErrInsufficientFunds
	}
	fromAvailable := amount
	if fromAvailable > p.AvailableBalance {
		fromAvailable = p.AvailableBalance
	}
	p.AvailableBalance = nonNegative(p.AvailableBalance - fromAvailable)
	p.ReservedBalance = nonNegative(p.ReservedBalance - (amount - fromAvailable))
	p.AllocatedBalance += amount
	p.AllocationHistory = append(p.AllocationHistory, AllocationRecord{
		AllocationID: allocationID,
		OnlusID:      onlusID,
		RequestID:    requestID,
		Amount:       amount,
		Timestamp:    time.Now().UTC(),
	})
	p.markDepletedIfDrained()
	return nil
}

// AllocateReservation converts a held reservation into a final allocation:
// reserved funds become allocated, the hold is removed and history appended.
func (p *FundingPool) AllocateReservation(reservationID, allocationID, onlusID string) error {
	idx := p.reservationIndex(reservationID)
	if idx < 0 {
		return ErrUnknownReservation
	}
	res := p.Reservations[idx]
	p.ReservedBalance = nonNegative(p.ReservedBalance - res.Amount)
	p.AllocatedBalance += res.Amount
	p.AllocationHistory = append(p.AllocationHistory, AllocationRecord{
		AllocationID: allocationID,
		OnlusID:      onlusID,
		RequestID:    res.RequestID,
		Amount:       res.Amount,
		Timestamp:    time.Now().UTC(),
	})
	p.Reservations = append(p.Reservations[:idx], p.Reservations[idx+1:]...)
	p.markDepletedIfDrained()
	return nil
}

// ReleaseReservation returns a held amount to the available balance and
// removes the hold. Fails if the reservation id is unknown.
func (p *FundingPool) ReleaseReservation(reservationID string) error {
	idx := p.reservationIndex(reservationID)
	if idx < 0 {
		return ErrUnknownReservation
	}
	res := p.Reservations[idx]
	p.ReservedBalance = nonNegative(p.ReservedBalance - res.Amount)
	p.AvailableBalance += res.Amount
	p.Reservations = append(p.Reservations[:idx], p.Reservations[idx+1:]...)
	return nil
}

// CanAllocate reports whether the pool may serve an allocation of amount for
// the given category and geography at the given time. Empty restriction
// lists mean unrestricted.
func (p *FundingPool) CanAllocate(amount float64, category, geography string, now time.Time) bool {
	if p.Status != PoolStatusActive {
		return false
	}
	if amount < p.MinimumAllocation {
		return false
	}
	if p.MaximumAllocation != nil && amount > *p.MaximumAllocation {
		return false
	}
	if amount > p.AvailableBalance+p.ReservedBalance+balanceTolerance {
		return false
	}
	if !restrictionAllows(p.CategoryRestrictions, category) {
		return false
	}
	if !restrictionAllows(p.GeographicalRestrictions, geography) {
		return false
	}
	if p.ExpiryDate != nil && !now.Before(*p.ExpiryDate) {
		return false
	}
	return true
}

// MatchesCategory reports whether the pool is unrestricted or restricted to
// a set containing category.
func (p *FundingPool) MatchesCategory(category string) bool {
	return restrictionAllows(p.CategoryRestrictions, category)
}

// AvailabilityRate is the fraction of the pool still freely available.
func (p *FundingPool) AvailabilityRate() float64 {
	if p.TotalBalance <= 0 {
		return 0
	}
	return p.AvailableBalance / p.TotalBalance
}

// FindReservation returns the reservation with the given id, if held.
func (p *FundingPool) FindReservation(reservationID string) (PoolReservation, bool) {
	idx := p.reservationIndex(reservationID)
	if idx < 0 {
		return PoolReservation{}, false
	}
	return p.Reservations[idx], true
}

// Pause suspends an active pool.
func (p *FundingPool) Pause() error {
	if p.Status != PoolStatusActive {
		return ErrInvalidTransition
	}
	p.Status = PoolStatusPaused
	return nil
}

// Reactivate resumes a paused pool or one back from maintenance. Depleted
// pools reactivate through AddFunds instead.
func (p *FundingPool) Reactivate() error {
	if p.Status != PoolStatusPaused && p.Status != PoolStatusMaintenance {
		return ErrInvalidTransition
	}
	p.Status = PoolStatusActive
	return nil
}

// Close freezes the pool permanently. Outstanding reservations must be
// released or allocated first.
func (p *FundingPool) Close() error {
	if p.Status == PoolStatusClosed {
		return ErrInvalidTransition
	}
	if len(p.Reservations) > 0 {
		return ErrOutstandingReservations
	}
	p.Status = PoolStatusClosed
	return nil
}

func (p *FundingPool) reservationIndex(reservationID string) int {
	for i, r := range p.Reservations {
		if r.ReservationID == reservationID {
			return i
		}
	}
	return -1
}

func (p *FundingPool) markDepletedIfDrained() {
	if p.Status == PoolStatusActive && p.AvailableBalance+p.ReservedBalance <= balanceTolerance {
		p.Status = PoolStatusDepleted
	}
}

func restrictionAllows(restrictions datatypes.JSONSlice[string], value string) bool {
	if len(restrictions) == 0 {
		return true
	}
	for _, r := range restrictions {
		if r == value {
			return true
		}
	}
	return false
}

func nonNegative(x float64) float64 {
	if x < 0 && x > -balanceTolerance {
		return 0
	}
	return x
}
