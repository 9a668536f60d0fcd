package requests

import (
	"strconv"
	"time"

	reqsvc "goodplay-backend/internal/application/requests"
	"goodplay-backend/internal/models"
	"goodplay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *reqsvc.Service
}

var requestStatusMap = map[string]int{
	reqsvc.ErrRequestNotFound.Error():    404,
	reqsvc.ErrOnlusNotRegistered.Error(): 404,
	reqsvc.ErrTitleRequired.Error():      400,
	reqsvc.ErrInvalidUrgency.Error():     400,
	reqsvc.ErrInvalidPriority.Error():    400,
	reqsvc.ErrRequestNotPending.Error():  409,
	models.ErrInvalidAmount.Error():      400,
}

func respondRequestError(c *fiber.Ctx, err error) error {
	if code, ok := requestStatusMap[err.Error()]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", 500, nil)
}

// CreateRequest POST /api/v1/requests/create-request
func (h *Handlers) CreateRequest(c *fiber.Ctx) error {
	var body struct {
		OnlusID            string   `json:"onlus_id"`
		RequestedAmount    float64  `json:"requested_amount"`
		ProjectTitle       string   `json:"project_title"`
		ProjectDescription string   `json:"project_description"`
		UrgencyLevel       int      `json:"urgency_level"`
		Priority           int      `json:"priority"`
		Category           string   `json:"category"`
		Deadline           *string  `json:"deadline"`
		DonorPreferences   []string `json:"donor_preferences"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.OnlusID == "" || body.ProjectTitle == "" || body.RequestedAmount == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	onlusID, err := uuid.Parse(body.OnlusID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for onlus_id", 400, nil)
	}

	var deadline *time.Time
	if body.Deadline != nil && *body.Deadline != "" {
		parsed, err := time.Parse(time.RFC3339, *body.Deadline)
		if err != nil {
			return response.Error(c, "Invalid deadline, expected RFC3339", 400, nil)
		}
		deadline = &parsed
	}

	req, err := h.Service.CreateRequest(c.Context(), reqsvc.CreateRequestParams{
		OnlusID:            onlusID,
		RequestedAmount:    body.RequestedAmount,
		ProjectTitle:       body.ProjectTitle,
		ProjectDescription: body.ProjectDescription,
		UrgencyLevel:       body.UrgencyLevel,
		Priority:           body.Priority,
		Category:           body.Category,
		Deadline:           deadline,
		DonorPreferences:   body.DonorPreferences,
	})
	if err != nil {
		return respondRequestError(c, err)
	}
	return response.SuccessCreated(c, "Allocation request created successfully", req, nil)
}

// ViewRequest GET /api/v1/requests/view-request/:request_id
func (h *Handlers) ViewRequest(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("request_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for request_id", 400, nil)
	}
	req, err := h.Service.Get(c.Context(), requestID)
	if err != nil {
		return respondRequestError(c, err)
	}
	return response.Success(c, "Allocation request fetched successfully", req, nil)
}

// ViewPending GET /api/v1/requests/view-pending?limit=50
func (h *Handlers) ViewPending(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return response.Error(c, "Invalid limit", 400, nil)
		}
		limit = parsed
	}
	reqs, err := h.Service.ListPending(c.Context(), limit)
	if err != nil {
		return respondRequestError(c, err)
	}
	return response.Success(c, "Pending requests fetched successfully", reqs, nil)
}

// CancelRequest POST /api/v1/requests/cancel-request
func (h *Handlers) CancelRequest(c *fiber.Ctx) error {
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
	req, err := h.Service.Cancel(c.Context(), requestID)
	if err != nil {
		return respondRequestError(c, err)
	}
	return response.Success(c, "Allocation request cancelled successfully", req, nil)
}
