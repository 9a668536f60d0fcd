package allocation

import (
	"errors"

	allocsvc "goodplay-backend/internal/application/allocation"
	donsvc "goodplay-backend/internal/application/donations"
	"goodplay-backend/internal/models"
	"goodplay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handlers struct {
	Engine    *allocsvc.Engine
	Donations *donsvc.Service
}

// reasonStatus maps failed outcome reasons to HTTP status codes.
var reasonStatus = map[string]int{
	allocsvc.ReasonOnlusNotFound:       404,
	allocsvc.ReasonRequestNotFound:     404,
	allocsvc.ReasonResultNotFound:      404,
	allocsvc.ReasonRequestNotPending:   409,
	allocsvc.ReasonInvalidStatus:       409,
	allocsvc.ReasonNotEmergency:        409,
	allocsvc.ReasonReservationConflict: 409,
	allocsvc.ReasonValidationError:     400,
}

var reasonMessage = map[string]string{
	allocsvc.ReasonOnlusNotFound:       "ONLUS not found",
	allocsvc.ReasonRequestNotFound:     "Allocation request not found",
	allocsvc.ReasonResultNotFound:      "Allocation result not found",
	allocsvc.ReasonRequestNotPending:   "Request has already been processed",
	allocsvc.ReasonValidationError:     "Validation failed",
	allocsvc.ReasonBelowThreshold:      "Allocation score below threshold",
	allocsvc.ReasonNoSuitablePool:      "No suitable funding pool available",
	allocsvc.ReasonInsufficientFunds:   "Insufficient funds in selected pool",
	allocsvc.ReasonReservationConflict: "Pool reservation conflict",
	allocsvc.ReasonPartialExecution:    "Allocation partially executed",
	allocsvc.ReasonExecutionFailed:     "Allocation execution failed",
	allocsvc.ReasonInvalidStatus:       "Result cannot be executed in its current status",
	allocsvc.ReasonNotEmergency:        "Request does not carry emergency priority",
	allocsvc.ReasonProcessingError:     "Processing error",
}

// outcomePayload flattens an outcome into one response payload carrying the
// reason code alongside the operation data.
func outcomePayload(o allocsvc.Outcome) fiber.Map {
	payload := fiber.Map{"reason": o.Reason}
	for k, v := range o.Data {
		payload[k] = v
	}
	return payload
}

func respondOutcome(c *fiber.Ctx, o allocsvc.Outcome, successMsg string) error {
	if o.Success {
		return response.Success(c, successMsg, outcomePayload(o), nil)
	}
	code, ok := reasonStatus[o.Reason]
	if !ok {
		code = 400
	}
	msg, ok := reasonMessage[o.Reason]
	if !ok {
		msg = "Allocation operation failed"
	}
	return response.Error(c, msg, code, outcomePayload(o))
}

// Process POST /api/v1/allocations/process
func (h *Handlers) Process(c *fiber.Ctx) error {
	var body struct {
		RequestID        string   `json:"request_id"`
		DonorPreferences []string `json:"donor_preferences"`
		Force            bool     `json:"force"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.RequestID == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	requestID, err := uuid.Parse(body.RequestID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for request_id", 400, nil)
	}

	outcome, err := h.Engine.Process(c.Context(), requestID, body.DonorPreferences, body.Force)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return respondOutcome(c, outcome, "Allocation processed successfully")
}

// Execute POST /api/v1/allocations/execute
func (h *Handlers) Execute(c *fiber.Ctx) error {
	var body struct {
		ResultID          string                      `json:"result_id"`
		DonorTransactions []allocsvc.DonorTransaction `json:"donor_transactions"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.ResultID == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	resultID, err := uuid.Parse(body.ResultID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for result_id", 400, nil)
	}

	outcome, err := h.Engine.Execute(c.Context(), resultID, body.DonorTransactions)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return respondOutcome(c, outcome, "Allocation executed successfully")
}

// ProcessBatch POST /api/v1/allocations/process-batch
func (h *Handlers) ProcessBatch(c *fiber.Ctx) error {
	var body struct {
		MaxRequests int     `json:"max_requests"`
		MinScore    float64 `json:"min_score"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.MaxRequests < 0 || body.MinScore < 0 || body.MinScore > 100 {
		return response.Error(c, "Invalid batch parameters", 400, nil)
	}

	report, err := h.Engine.ProcessBatch(c.Context(), body.MaxRequests, body.MinScore)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Batch processing completed", report, nil)
}

// Emergency POST /api/v1/allocations/emergency
func (h *Handlers) Emergency(c *fiber.Ctx) error {
	var body struct {
		RequestID string `json:"request_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	requestID, err := uuid.Parse(body.RequestID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for request_id", 400, nil)
	}

	outcome, err := h.Engine.HandleEmergency(c.Context(), requestID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return respondOutcome(c, outcome, "Emergency request processed successfully")
}

// RetryResult POST /api/v1/allocations/retry-result
func (h *Handlers) RetryResult(c *fiber.Ctx) error {
	var body struct {
		ResultID string `json:"result_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	resultID, err := uuid.Parse(body.ResultID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for result_id", 400, nil)
	}

	outcome, err := h.Engine.RetryResult(c.Context(), resultID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return respondOutcome(c, outcome, "Retry scheduled successfully")
}

// ViewResult GET /api/v1/allocations/view-result/:result_id
func (h *Handlers) ViewResult(c *fiber.Ctx) error {
	resultID, err := uuid.Parse(c.Params("result_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for result_id", 400, nil)
	}
	var result models.AllocationResult
	if err := h.Engine.DB.WithContext(c.Context()).
		Where("result_id = ?", resultID).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, "Allocation result not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Allocation result fetched successfully", result, nil)
}

// ViewResultTransactions GET /api/v1/allocations/view-result-transactions/:result_id
func (h *Handlers) ViewResultTransactions(c *fiber.Ctx) error {
	resultID, err := uuid.Parse(c.Params("result_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for result_id", 400, nil)
	}
	txns, err := h.Donations.ListForResult(c.Context(), resultID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Donation transactions fetched successfully", txns, nil)
}

// RankPools GET /api/v1/allocations/rank-pools/:request_id previews the
// pool selection a process call would make, without reserving anything.
func (h *Handlers) RankPools(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("request_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for request_id", 400, nil)
	}

	var req models.AllocationRequest
	if err := h.Engine.DB.WithContext(c.Context()).
		Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, "Allocation request not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	var profile models.Onlus
	if err := h.Engine.DB.WithContext(c.Context()).
		Where("onlus_id = ?", req.OnlusID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, "ONLUS not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	candidates, err := h.Engine.Pools.ListEligible(c.Context(), req.RequestedAmount)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	ranked := allocsvc.RankPools(candidates, &req, profile.Region, h.Engine.Now())
	return response.Success(c, "Pool ranking computed successfully", fiber.Map{
		"request_id": req.RequestID,
		"candidates": ranked,
	}, nil)
}
