package requests

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
	ErrRequestNotFound    = errors.New("Allocation request not found")
	ErrTitleRequired      = errors.New("Project title is required")
	ErrInvalidUrgency     = errors.New("Urgency level must be between 1 and 5")
	ErrInvalidPriority    = errors.New("Priority must be between 1 and 5")
	ErrRequestNotPending  = errors.New("Only pending requests can be cancelled")
	ErrOnlusNotRegistered = errors.New("ONLUS not found")
)

// Service handles allocation request intake for the engine.
type Service struct {
	DB *gorm.DB
}

// CreateRequestParams carries the intake attributes of a funding request.
type CreateRequestParams struct {
	OnlusID            uuid.UUID
	RequestedAmount    float64
	ProjectTitle       string
	ProjectDescription string
	UrgencyLevel       int
	Priority           int
	Category           string
	Deadline           *time.Time
	DonorPreferences   []string
}

// CreateRequest validates and stores a new pending request.
func (s *Service) CreateRequest(ctx context.Context, params CreateRequestParams) (*models.AllocationRequest, error) {
	if params.ProjectTitle == "" {
		return nil, ErrTitleRequired
	}
	amount := math.Round(params.RequestedAmount*100) / 100
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	urgency := params.UrgencyLevel
	if urgency == 0 {
		urgency = 1
	}
	if urgency < 1 || urgency > 5 {
		return nil, ErrInvalidUrgency
	}
	priority := params.Priority
	if priority == 0 {
		priority = models.PriorityLow
	}
	if priority < 1 || priority > 5 {
		return nil, ErrInvalidPriority
	}

	var onlus models.Onlus
	if err := s.DB.WithContext(ctx).Where("onlus_id = ?", params.OnlusID).First(&onlus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOnlusNotRegistered
		}
		return nil, err
	}

	req := models.AllocationRequest{
		OnlusID:            params.OnlusID,
		RequestedAmount:    amount,
		ProjectTitle:       params.ProjectTitle,
		ProjectDescription: params.ProjectDescription,
		UrgencyLevel:       urgency,
		Priority:           priority,
		Category:           params.Category,
		Deadline:           params.Deadline,
		DonorPreferences:   params.DonorPreferences,
		Status:             models.RequestStatusPending,
	}
	if err := s.DB.WithContext(ctx).Create(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Get loads one request by id.
func (s *Service) Get(ctx context.Context, requestID uuid.UUID) (*models.AllocationRequest, error) {
	var req models.AllocationRequest
	if err := s.DB.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListPending returns pending requests in processing order: best score
// first, then highest priority.
func (s *Service) ListPending(ctx context.Context, limit int) ([]models.AllocationRequest, error) {
	q := s.DB.WithContext(ctx).
		Where("status = ?", models.RequestStatusPending).
		Order("allocation_score DESC").Order("priority DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var reqs []models.AllocationRequest
	if err := q.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Cancel withdraws a pending request.
func (s *Service) Cancel(ctx context.Context, requestID uuid.UUID) (*models.AllocationRequest, error) {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrRequestNotPending
	}
	if err := s.DB.WithContext(ctx).Model(req).
		Update("status", models.RequestStatusCancelled).Error; err != nil {
		return nil, err
	}
	req.Status = models.RequestStatusCancelled
	return req, nil
}
