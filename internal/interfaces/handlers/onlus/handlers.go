package onlus

import (
	"time"

	compliancesvc "goodplay-backend/internal/application/compliance"
	onlussvc "goodplay-backend/internal/application/onlus"
	"goodplay-backend/internal/models"
	"goodplay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service    *onlussvc.Service
	Compliance *compliancesvc.Provider
}

var onlusStatusMap = map[string]int{
	onlussvc.ErrNotFound.Error():             404,
	onlussvc.ErrNameRequired.Error():         400,
	onlussvc.ErrInvalidEmail.Error():         400,
	onlussvc.ErrInvalidBudget.Error():        400,
	onlussvc.ErrNoFields.Error():             400,
	compliancesvc.ErrScoreOutOfRange.Error(): 400,
	models.ErrInvalidAmount.Error():          400,
	models.ErrInvalidTransition.Error():      409,
}

func respondOnlusError(c *fiber.Ctx, err error) error {
	if code, ok := onlusStatusMap[err.Error()]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", 500, nil)
}

// RegisterOnlus POST /api/v1/onlus/register-onlus
func (h *Handlers) RegisterOnlus(c *fiber.Ctx) error {
	var body onlussvc.RegisterInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	org, err := h.Service.Register(c.Context(), body)
	if err != nil {
		return respondOnlusError(c, err)
	}
	return response.SuccessCreated(c, "Organization registered successfully", org, nil)
}

// ViewOnlus GET /api/v1/onlus/view-onlus/:onlus_id
func (h *Handlers) ViewOnlus(c *fiber.Ctx) error {
	onlusID, err := uuid.Parse(c.Params("onlus_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for onlus_id", 400, nil)
	}
	org, err := h.Service.Get(c.Context(), onlusID)
	if err != nil {
		return respondOnlusError(c, err)
	}
	return response.Success(c, "Organization fetched successfully", org, nil)
}

// ViewAllOnlus GET /api/v1/onlus/view-all-onlus?category=health&status=active
func (h *Handlers) ViewAllOnlus(c *fiber.Ctx) error {
	orgs, err := h.Service.List(c.Context(), c.Query("category"), c.Query("status"))
	if err != nil {
		return respondOnlusError(c, err)
	}
	return response.Success(c, "Organizations fetched successfully", orgs, nil)
}

// UpdateOnlus PATCH /api/v1/onlus/update-onlus
func (h *Handlers) UpdateOnlus(c *fiber.Ctx) error {
	var body struct {
		OnlusID string                 `json:"onlus_id"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	onlusID, err := uuid.Parse(body.OnlusID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for onlus_id", 400, nil)
	}
	org, err := h.Service.Update(c.Context(), onlusID, body.Fields)
	if err != nil {
		return respondOnlusError(c, err)
	}
	return response.Success(c, "Organization updated successfully", org, nil)
}

// RecordFunding POST /api/v1/onlus/record-funding
//
// Out-of-band contributions only; allocation execution updates funding
// inside its own transaction.
func (h *Handlers) RecordFunding(c *fiber.Ctx) error {
	var body struct {
		OnlusID string  `json:"onlus_id"`
		Amount  float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	onlusID, err := uuid.Parse(body.OnlusID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for onlus_id", 400, nil)
	}
	if err := h.Service.RecordFunding(c.Context(), onlusID, body.Amount); err != nil {
		return respondOnlusError(c, err)
	}
	org, err := h.Service.Get(c.Context(), onlusID)
	if err != nil {
		return respondOnlusError(c, err)
	}
	return response.Success(c, "Funding recorded successfully", org, nil)
}

// RecordComplianceScore POST /api/v1/onlus/record-compliance-score
func (h *Handlers) RecordComplianceScore(c *fiber.Ctx) error {
	var body struct {
		OnlusID    string  `json:"onlus_id"`
		Score      float64 `json:"score"`
		AssessedAt *string `json:"assessed_at"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	onlusID, err := uuid.Parse(body.OnlusID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for onlus_id", 400, nil)
	}
	if _, err := h.Service.Get(c.Context(), onlusID); err != nil {
		return respondOnlusError(c, err)
	}

	var assessedAt time.Time
	if body.AssessedAt != nil && *body.AssessedAt != "" {
		parsed, err := time.Parse(time.RFC3339, *body.AssessedAt)
		if err != nil {
			return response.Error(c, "Invalid assessed_at, expected RFC3339", 400, nil)
		}
		assessedAt = parsed
	}

	record, err := h.Compliance.RecordScore(c.Context(), onlusID, body.Score, assessedAt)
	if err != nil {
		return respondOnlusError(c, err)
	}
	return response.SuccessCreated(c, "Compliance score recorded successfully", record, nil)
}

// ViewComplianceScore GET /api/v1/onlus/view-compliance-score/:onlus_id
func (h *Handlers) ViewComplianceScore(c *fiber.Ctx) error {
	onlusID, err := uuid.Parse(c.Params("onlus_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for onlus_id", 400, nil)
	}
	score, err := h.Compliance.CurrentScore(c.Context(), onlusID)
	if err != nil {
		return respondOnlusError(c, err)
	}
	if score == nil {
		return response.Error(c, "No compliance score recorded", 404, nil)
	}
	return response.Success(c, "Compliance score fetched successfully", fiber.Map{
		"onlus_id": onlusID,
		"score":    *score,
	}, nil)
}
