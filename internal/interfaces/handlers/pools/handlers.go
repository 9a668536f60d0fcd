package pools

import (
	"context"
	"time"

	poolsvc "goodplay-backend/internal/application/pools"
	"goodplay-backend/internal/models"
	"goodplay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *poolsvc.Service
}

// poolStatusMap translates pool service errors into HTTP status codes.
var poolStatusMap = map[string]int{
	poolsvc.ErrPoolNotFound.Error():           404,
	poolsvc.ErrPoolNameRequired.Error():       400,
	poolsvc.ErrPoolNotEmpty.Error():           409,
	poolsvc.ErrConcurrentUpdate.Error():       409,
	models.ErrInvalidAmount.Error():           400,
	models.ErrInsufficientFunds.Error():       400,
	models.ErrUnknownReservation.Error():      404,
	models.ErrPoolNotActive.Error():           409,
	models.ErrPoolClosed.Error():              409,
	models.ErrOutstandingReservations.Error(): 409,
	models.ErrInvalidTransition.Error():       409,
}

func respondPoolError(c *fiber.Ctx, err error) error {
	if code, ok := poolStatusMap[err.Error()]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", 500, nil)
}

// CreatePool POST /api/v1/pools/create-pool
func (h *Handlers) CreatePool(c *fiber.Ctx) error {
	var body struct {
		Name                     string   `json:"name"`
		PoolType                 string   `json:"pool_type"`
		InitialBalance           float64  `json:"initial_balance"`
		CategoryRestrictions     []string `json:"category_restrictions"`
		GeographicalRestrictions []string `json:"geographical_restrictions"`
		MinimumAllocation        float64  `json:"minimum_allocation"`
		MaximumAllocation        *float64 `json:"maximum_allocation"`
		AutoAllocationEnabled    *bool    `json:"auto_allocation_enabled"`
		PriorityWeight           float64  `json:"priority_weight"`
		ExpiryDate               *string  `json:"expiry_date"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Name == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}

	var expiry *time.Time
	if body.ExpiryDate != nil && *body.ExpiryDate != "" {
		parsed, err := time.Parse(time.RFC3339, *body.ExpiryDate)
		if err != nil {
			return response.Error(c, "Invalid expiry_date, expected RFC3339", 400, nil)
		}
		expiry = &parsed
	}

	pool, err := h.Service.CreatePool(c.Context(), poolsvc.CreatePoolParams{
		Name:                     body.Name,
		PoolType:                 body.PoolType,
		InitialBalance:           body.InitialBalance,
		CategoryRestrictions:     body.CategoryRestrictions,
		GeographicalRestrictions: body.GeographicalRestrictions,
		MinimumAllocation:        body.MinimumAllocation,
		MaximumAllocation:        body.MaximumAllocation,
		AutoAllocationEnabled:    body.AutoAllocationEnabled,
		PriorityWeight:           body.PriorityWeight,
		ExpiryDate:               expiry,
	})
	if err != nil {
		return respondPoolError(c, err)
	}
	return response.SuccessCreated(c, "Pool created successfully", pool, nil)
}

// ViewPools GET /api/v1/pools/view-pools?status=active
func (h *Handlers) ViewPools(c *fiber.Ctx) error {
	pools, err := h.Service.List(c.Context(), c.Query("status"))
	if err != nil {
		return respondPoolError(c, err)
	}
	return response.Success(c, "Pools fetched successfully", pools, nil)
}

// ViewPool GET /api/v1/pools/view-pool/:pool_id
func (h *Handlers) ViewPool(c *fiber.Ctx) error {
	poolID, err := uuid.Parse(c.Params("pool_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for pool_id", 400, nil)
	}
	pool, err := h.Service.Get(c.Context(), poolID)
	if err != nil {
		return respondPoolError(c, err)
	}
	return response.Success(c, "Pool fetched successfully", pool, nil)
}

// PoolStatistics GET /api/v1/pools/pool-statistics/:pool_id
func (h *Handlers) PoolStatistics(c *fiber.Ctx) error {
	poolID, err := uuid.Parse(c.Params("pool_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for pool_id", 400, nil)
	}
	stats, err := h.Service.Statistics(c.Context(), poolID)
	if err != nil {
		return respondPoolError(c, err)
	}
	return response.Success(c, "Pool statistics fetched successfully", stats, nil)
}

// AddFunds POST /api/v1/pools/add-funds
func (h *Handlers) AddFunds(c *fiber.Ctx) error {
	var body struct {
		PoolID string  `json:"pool_id"`
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.PoolID == "" || body.Amount == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	poolID, err := uuid.Parse(body.PoolID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for pool_id", 400, nil)
	}
	if body.Amount <= 0 {
		return response.Error(c, "Amount must be a positive number", 400, nil)
	}

	pool, err := h.Service.AddFunds(c.Context(), poolID, body.Amount)
	if err != nil {
		return respondPoolError(c, err)
	}
	return response.Success(c, "Funds added successfully", pool, nil)
}

// ReleaseReservation POST /api/v1/pools/release-reservation
func (h *Handlers) ReleaseReservation(c *fiber.Ctx) error {
	var body struct {
		PoolID        string `json:"pool_id"`
		ReservationID string `json:"reservation_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.PoolID == "" || body.ReservationID == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	poolID, err := uuid.Parse(body.PoolID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for pool_id", 400, nil)
	}

	pool, err := h.Service.Release(c.Context(), poolID, body.ReservationID)
	if err != nil {
		return respondPoolError(c, err)
	}
	return response.Success(c, "Reservation released successfully", pool, nil)
}

// PausePool POST /api/v1/pools/pause-pool
func (h *Handlers) PausePool(c *fiber.Ctx) error {
	return h.transition(c, h.Service.Pause, "Pool paused successfully")
}

// ReactivatePool POST /api/v1/pools/reactivate-pool
func (h *Handlers) ReactivatePool(c *fiber.Ctx) error {
	return h.transition(c, h.Service.Reactivate, "Pool reactivated successfully")
}

// ClosePool POST /api/v1/pools/close-pool
func (h *Handlers) ClosePool(c *fiber.Ctx) error {
	return h.transition(c, h.Service.Close, "Pool closed successfully")
}

// DeletePool DELETE /api/v1/pools/delete-pool/:pool_id
func (h *Handlers) DeletePool(c *fiber.Ctx) error {
	poolID, err := uuid.Parse(c.Params("pool_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for pool_id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), poolID); err != nil {
		return respondPoolError(c, err)
	}
	return response.Success(c, "Pool deleted successfully", fiber.Map{"pool_id": poolID}, nil)
}

func (h *Handlers) transition(c *fiber.Ctx, op func(context.Context, uuid.UUID) (*models.FundingPool, error), msg string) error {
	var body struct {
		PoolID string `json:"pool_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	poolID, err := uuid.Parse(body.PoolID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for pool_id", 400, nil)
	}
	pool, err := op(c.Context(), poolID)
	if err != nil {
		return respondPoolError(c, err)
	}
	return response.Success(c, msg, pool, nil)
}
