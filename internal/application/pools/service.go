package pools

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
	ErrPoolNotFound     = errors.New("Funding pool not found")
	ErrPoolNameRequired = errors.New("Pool name is required")
	ErrPoolNotEmpty     = errors.New("Pool still holds funds")
	ErrConcurrentUpdate = errors.New("Pool was modified concurrently")
)

// saveAttempts bounds optimistic-lock retries per operation.
const saveAttempts = 2

// Service persists funding pools. Every balance mutation goes through a
// version-guarded conditional update so concurrent writers can never
// double-spend the available balance.
type Service struct {
	DB *gorm.DB
}

// CreatePoolParams carries the admin-supplied pool attributes.
type CreatePoolParams struct {
	Name                     string
	PoolType                 string
	InitialBalance           float64
	CategoryRestrictions     []string
	GeographicalRestrictions []string
	MinimumAllocation        float64
	MaximumAllocation        *float64
	AutoAllocationEnabled    *bool
	PriorityWeight           float64
	ExpiryDate               *time.Time
}

// CreatePool registers a new active pool with an optional initial balance.
func (s *Service) CreatePool(ctx context.Context, params CreatePoolParams) (*models.FundingPool, error) {
	if params.Name == "" {
		return nil, ErrPoolNameRequired
	}
	if params.InitialBalance < 0 || params.MinimumAllocation < 0 {
		return nil, models.ErrInvalidAmount
	}
	poolType := params.PoolType
	if poolType == "" {
		poolType = models.PoolTypeGeneral
	}
	priority := params.PriorityWeight
	if priority <= 0 {
		priority = 1
	}
	autoEnabled := true
	if params.AutoAllocationEnabled != nil {
		autoEnabled = *params.AutoAllocationEnabled
	}
	initial := roundCents(params.InitialBalance)

	pool := models.FundingPool{
		Name:                     params.Name,
		PoolType:                 poolType,
		TotalBalance:             initial,
		AvailableBalance:         initial,
		CategoryRestrictions:     params.CategoryRestrictions,
		GeographicalRestrictions: params.GeographicalRestrictions,
		MinimumAllocation:        roundCents(params.MinimumAllocation),
		MaximumAllocation:        params.MaximumAllocation,
		AutoAllocationEnabled:    autoEnabled,
		PriorityWeight:           priority,
		ExpiryDate:               params.ExpiryDate,
		Status:                   models.PoolStatusActive,
	}
	if err := s.DB.WithContext(ctx).Create(&pool).Error; err != nil {
		return nil, err
	}
	return &pool, nil
}

// Get loads one pool by id.
func (s *Service) Get(ctx context.Context, poolID uuid.UUID) (*models.FundingPool, error) {
	var pool models.FundingPool
	if err := s.DB.WithContext(ctx).Where("pool_id = ?", poolID).First(&pool).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return &pool, nil
}

// List returns pools, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]models.FundingPool, error) {
	q := s.DB.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var pools []models.FundingPool
	if err := q.Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

// ListEligible returns active auto-allocation pools that can cover amount
// across available and reserved balances. Fine-grained eligibility
// (restrictions, expiry, min/max) stays with CanAllocate.
func (s *Service) ListEligible(ctx context.Context, amount float64) ([]models.FundingPool, error) {
	var pools []models.FundingPool
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND auto_allocation_enabled = ?", models.PoolStatusActive, true).
		Where("available_balance + reserved_balance >= ?", amount).
		Order("created_at ASC").
		Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

// AddFunds credits a pool.
func (s *Service) AddFunds(ctx context.Context, poolID uuid.UUID, amount float64) (*models.FundingPool, error) {
	amount = roundCents(amount)
	return s.withPool(ctx, poolID, func(p *models.FundingPool) error {
		return p.AddFunds(amount)
	})
}

// Reserve places a hold for a request and returns the reservation id.
func (s *Service) Reserve(ctx context.Context, poolID uuid.UUID, requestID string, amount float64) (string, error) {
	amount = roundCents(amount)
	var reservationID string
	_, err := s.withPool(ctx, poolID, func(p *models.FundingPool) error {
		id, err := p.ReserveFunds(requestID, amount)
		if err != nil {
			return err
		}
		reservationID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return reservationID, nil
}

// Release returns a held reservation to the available balance.
func (s *Service) Release(ctx context.Context, poolID uuid.UUID, reservationID string) (*models.FundingPool, error) {
	return s.withPool(ctx, poolID, func(p *models.FundingPool) error {
		return p.ReleaseReservation(reservationID)
	})
}

// Allocate deducts funds directly, without a prior reservation.
func (s *Service) Allocate(ctx context.Context, poolID uuid.UUID, amount float64, allocationID, onlusID, requestID string) (*models.FundingPool, error) {
	amount = roundCents(amount)
	return s.withPool(ctx, poolID, func(p *models.FundingPool) error {
		return p.AllocateFunds(amount, allocationID, onlusID, requestID)
	})
}

// AllocateReservation finalizes a held reservation into an allocation.
func (s *Service) AllocateReservation(ctx context.Context, poolID uuid.UUID, reservationID, allocationID, onlusID string) (*models.FundingPool, error) {
	return s.withPool(ctx, poolID, func(p *models.FundingPool) error {
		return p.AllocateReservation(reservationID, allocationID, onlusID)
	})
}

// Pause suspends an active pool.
func (s *Service) Pause(ctx context.Context, poolID uuid.UUID) (*models.FundingPool, error) {
	return s.withPool(ctx, poolID, func(p *models.FundingPool) error { return p.Pause() })
}

// Reactivate resumes a paused pool.
func (s *Service) Reactivate(ctx context.Context, poolID uuid.UUID) (*models.FundingPool, error) {
	return s.withPool(ctx, poolID, func(p *models.FundingPool) error { return p.Reactivate() })
}

// Close freezes a pool permanently.
func (s *Service) Close(ctx context.Context, poolID uuid.UUID) (*models.FundingPool, error) {
	return s.withPool(ctx, poolID, func(p *models.FundingPool) error { return p.Close() })
}

// Delete removes a pool physically. Only allowed at zero total balance.
func (s *Service) Delete(ctx context.Context, poolID uuid.UUID) error {
	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return err
	}
	if pool.TotalBalance != 0 {
		return ErrPoolNotEmpty
	}
	return s.DB.WithContext(ctx).Delete(&models.FundingPool{}, "pool_id = ?", pool.PoolID).Error
}

// Statistics summarizes one pool's utilization.
type Statistics struct {
	PoolID           string  `json:"pool_id"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	TotalBalance     float64 `json:"total_balance"`
	AvailableBalance float64 `json:"available_balance"`
	ReservedBalance  float64 `json:"reserved_balance"`
	AllocatedBalance float64 `json:"allocated_balance"`
	AvailabilityRate float64 `json:"availability_rate"`
	UtilizationRate  float64 `json:"utilization_rate"`
	ReservationCount int     `json:"reservation_count"`
	AllocationCount  int     `json:"allocation_count"`
}

func (s *Service) Statistics(ctx context.Context, poolID uuid.UUID) (*Statistics, error) {
	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}
	stats := &Statistics{
		PoolID:           pool.PoolID.String(),
		Name:             pool.Name,
		Status:           pool.Status,
		TotalBalance:     pool.TotalBalance,
		AvailableBalance: pool.AvailableBalance,
		ReservedBalance:  pool.ReservedBalance,
		AllocatedBalance: pool.AllocatedBalance,
		AvailabilityRate: pool.AvailabilityRate(),
		ReservationCount: len(pool.Reservations),
		AllocationCount:  len(pool.AllocationHistory),
	}
	if pool.TotalBalance > 0 {
		stats.UtilizationRate = pool.AllocatedBalance / pool.TotalBalance
	}
	return stats, nil
}

// withPool loads the pool, applies op and saves under the version guard,
// retrying once on a fresh copy when a concurrent writer wins the race.
func (s *Service) withPool(ctx context.Context, poolID uuid.UUID, op func(*models.FundingPool) error) (*models.FundingPool, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		pool, err := s.Get(ctx, poolID)
		if err != nil {
			return nil, err
		}
		if err := op(pool); err != nil {
			return nil, err
		}
		err = s.optimisticSave(ctx, pool)
		if err == nil {
			return pool, nil
		}
		if !errors.Is(err, ErrConcurrentUpdate) {
			return nil, err
		}
	}
	return nil, ErrConcurrentUpdate
}

// optimisticSave writes the mutated pool guarded by its version column.
// Zero affected rows means another writer committed first.
func (s *Service) optimisticSave(ctx context.Context, pool *models.FundingPool) error {
	res := s.DB.WithContext(ctx).Model(&models.FundingPool{}).
		Where("pool_id = ? AND version = ?", pool.PoolID, pool.Version).
		Updates(map[string]interface{}{
			"total_balance":      pool.TotalBalance,
			"available_balance":  pool.AvailableBalance,
			"allocated_balance":  pool.AllocatedBalance,
			"reserved_balance":   pool.ReservedBalance,
			"status":             pool.Status,
			"reservations":       pool.Reservations,
			"allocation_history": pool.AllocationHistory,
			"version":            pool.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	pool.Version++
	return nil
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}
