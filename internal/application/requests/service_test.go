package requests

import (
	"context"
	"testing"

	"goodplay-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *models.Onlus) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Onlus{}, &models.AllocationRequest{}))

	org := &models.Onlus{Name: "Cibo per Tutti", Category: "food_security", Status: models.OnlusStatusActive}
	require.NoError(t, db.Create(org).Error)
	return &Service{DB: db}, org
}

func TestCreateRequest_DefaultsAndRounding(t *testing.T) {
	svc, org := setupService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, CreateRequestParams{
		OnlusID:         org.OnlusID,
		RequestedAmount: 1500.756,
		ProjectTitle:    "Mensa invernale",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, req.RequestID)
	assert.InDelta(t, 1500.76, req.RequestedAmount, 1e-9)
	assert.Equal(t, 1, req.UrgencyLevel)
	assert.Equal(t, models.PriorityLow, req.Priority)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.InDelta(t, 0.0, req.AllocationScore, 1e-9)
}

func TestCreateRequest_Validation(t *testing.T) {
	svc, org := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, CreateRequestParams{OnlusID: org.OnlusID, RequestedAmount: 100})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.CreateRequest(ctx, CreateRequestParams{OnlusID: org.OnlusID, RequestedAmount: 0, ProjectTitle: "Doposcuola"})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = svc.CreateRequest(ctx, CreateRequestParams{OnlusID: org.OnlusID, RequestedAmount: 100, ProjectTitle: "Doposcuola", UrgencyLevel: 6})
	assert.ErrorIs(t, err, ErrInvalidUrgency)

	_, err = svc.CreateRequest(ctx, CreateRequestParams{OnlusID: org.OnlusID, RequestedAmount: 100, ProjectTitle: "Doposcuola", Priority: 9})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = svc.CreateRequest(ctx, CreateRequestParams{OnlusID: uuid.New(), RequestedAmount: 100, ProjectTitle: "Doposcuola"})
	assert.ErrorIs(t, err, ErrOnlusNotRegistered)
}

func TestListPending_OrderAndLimit(t *testing.T) {
	svc, org := setupService(t)
	ctx := context.Background()

	mid := seedRequest(t, svc.DB, org.OnlusID, 60.0, 3, models.RequestStatusPending)
	top := seedRequest(t, svc.DB, org.OnlusID, 90.0, 1, models.RequestStatusPending)
	tieBreak := seedRequest(t, svc.DB, org.OnlusID, 60.0, 5, models.RequestStatusPending)
	seedRequest(t, svc.DB, org.OnlusID, 99.0, 5, models.RequestStatusApproved)

	all, err := svc.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, top.RequestID, all[0].RequestID)
	assert.Equal(t, tieBreak.RequestID, all[1].RequestID)
	assert.Equal(t, mid.RequestID, all[2].RequestID)

	limited, err := svc.ListPending(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCancel_PendingOnly(t *testing.T) {
	svc, org := setupService(t)
	ctx := context.Background()

	req := seedRequest(t, svc.DB, org.OnlusID, 50.0, 3, models.RequestStatusPending)

	cancelled, err := svc.Cancel(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, req.RequestID)
	assert.ErrorIs(t, err, ErrRequestNotPending)

	_, err = svc.Cancel(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func seedRequest(t *testing.T, db *gorm.DB, onlusID uuid.UUID, score float64, priority int, status string) *models.AllocationRequest {
	t.Helper()
	req := &models.AllocationRequest{
		OnlusID:         onlusID,
		RequestedAmount: 100,
		ProjectTitle:    "Progetto",
		UrgencyLevel:    3,
		Priority:        priority,
		Status:          status,
		AllocationScore: score,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}
