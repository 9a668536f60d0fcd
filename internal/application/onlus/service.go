package onlus

import (
	"context"
	"errors"
	"math"
	"strings"

	"goodplay-backend/internal/models"
	"goodplay-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameRequired  = errors.New("Organization name is required")
	ErrInvalidEmail  = errors.New("Invalid contact email")
	ErrInvalidBudget = errors.New("Annual budget must be a positive number")
	ErrNotFound      = errors.New("ONLUS not found")
	ErrNoFields      = errors.New("No valid fields to update")
)

// Service encapsulates the ONLUS registry: the organizations allocation
// requests are filed for and scored against.
type Service struct {
	DB *gorm.DB
}

// RegisterInput carries the registration payload for a new organization.
type RegisterInput struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Region       string   `json:"region"`
	ContactEmail *string  `json:"contact_email"`
	AnnualBudget *float64 `json:"annual_budget"`
}

// Register creates an active organization record.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Onlus, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if in.ContactEmail != nil && !validation.IsValidEmail(*in.ContactEmail) {
		return nil, ErrInvalidEmail
	}
	if in.AnnualBudget != nil && *in.AnnualBudget <= 0 {
		return nil, ErrInvalidBudget
	}

	org := &models.Onlus{
		Name:         name,
		Category:     strings.ToLower(strings.TrimSpace(in.Category)),
		Region:       strings.TrimSpace(in.Region),
		ContactEmail: in.ContactEmail,
		AnnualBudget: in.AnnualBudget,
		Status:       models.OnlusStatusActive,
	}
	if err := s.DB.WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// Get loads one organization by id.
func (s *Service) Get(ctx context.Context, onlusID uuid.UUID) (*models.Onlus, error) {
	var org models.Onlus
	if err := s.DB.WithContext(ctx).Where("onlus_id = ?", onlusID).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// List returns organizations, optionally narrowed by category and status.
func (s *Service) List(ctx context.Context, category, status string) ([]models.Onlus, error) {
	q := s.DB.WithContext(ctx).Order("created_at ASC")
	if category != "" {
		q = q.Where("category = ?", strings.ToLower(category))
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orgs []models.Onlus
	if err := q.Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// Update applies allowed profile fields to an organization.
func (s *Service) Update(ctx context.Context, onlusID uuid.UUID, fields map[string]interface{}) (*models.Onlus, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	allowed := map[string]bool{
		"name":          true,
		"category":      true,
		"region":        true,
		"contact_email": true,
		"annual_budget": true,
		"status":        true,
	}
	valid := make(map[string]interface{})
	for k, v := range fields {
		if allowed[k] {
			valid[k] = v
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoFields
	}
	if email, ok := valid["contact_email"].(string); ok && !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if status, ok := valid["status"].(string); ok {
		if status != models.OnlusStatusActive && status != models.OnlusStatusSuspended {
			return nil, models.ErrInvalidTransition
		}
	}

	result := s.DB.WithContext(ctx).Model(&models.Onlus{}).
		Where("onlus_id = ?", onlusID).
		Updates(valid)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, onlusID)
}

// RecordFunding adds settled donation money to the organization's running
// funding total. The scorer reads this for the funding-gap factor.
func (s *Service) RecordFunding(ctx context.Context, onlusID uuid.UUID, amount float64) error {
	amount = math.Round(amount*100) / 100
	if amount <= 0 {
		return models.ErrInvalidAmount
	}
	result := s.DB.WithContext(ctx).Model(&models.Onlus{}).
		Where("onlus_id = ?", onlusID).
		Update("current_funding", gorm.Expr("current_funding + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
