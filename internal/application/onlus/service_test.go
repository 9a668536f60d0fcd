package onlus

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

func setupService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Onlus{}))
	return &Service{DB: db}
}

func TestRegister_CreatesActiveOrganization(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	email := "info@aiutiamo.org"
	budget := 250000.0

	org, err := svc.Register(ctx, RegisterInput{
		Name:         "  Aiutiamo Insieme  ",
		Category:     "Education",
		Region:       "south",
		ContactEmail: &email,
		AnnualBudget: &budget,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, org.OnlusID)
	assert.Equal(t, "Aiutiamo Insieme", org.Name)
	assert.Equal(t, "education", org.Category)
	assert.Equal(t, models.OnlusStatusActive, org.Status)
	require.NotNil(t, org.AnnualBudget)
	assert.InDelta(t, 250000.0, *org.AnnualBudget, 1e-9)
	assert.InDelta(t, 0.0, org.CurrentFunding, 1e-9)
}

func TestRegister_Validation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	badEmail := "not-an-email"
	badBudget := -5.0

	_, err := svc.Register(ctx, RegisterInput{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ok", ContactEmail: &badEmail})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ok", AnnualBudget: &badBudget})
	assert.ErrorIs(t, err, ErrInvalidBudget)
}

func TestGet_NotFound(t *testing.T) {
	svc := setupService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_FiltersByCategoryAndStatus(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "Scuola Aperta", Category: "education"})
	require.NoError(t, err)
	health, err := svc.Register(ctx, RegisterInput{Name: "Cura e Salute", Category: "healthcare"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, health.OnlusID, map[string]interface{}{"status": models.OnlusStatusSuspended})
	require.NoError(t, err)

	all, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	edu, err := svc.List(ctx, "Education", "")
	require.NoError(t, err)
	require.Len(t, edu, 1)
	assert.Equal(t, "Scuola Aperta", edu[0].Name)

	active, err := svc.List(ctx, "", models.OnlusStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Scuola Aperta", active[0].Name)
}

func TestUpdate_AllowsProfileFieldsOnly(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	org, err := svc.Register(ctx, RegisterInput{Name: "Mani Tese", Category: "environment"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, org.OnlusID, map[string]interface{}{
		"region":          "centre",
		"current_funding": 999999.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "centre", updated.Region)
	assert.InDelta(t, 0.0, updated.CurrentFunding, 1e-9)

	_, err = svc.Update(ctx, org.OnlusID, map[string]interface{}{"current_funding": 1.0})
	assert.ErrorIs(t, err, ErrNoFields)

	_, err = svc.Update(ctx, org.OnlusID, map[string]interface{}{"status": "dissolved"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.Update(ctx, uuid.New(), map[string]interface{}{"region": "north"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordFunding_AccumulatesAndRounds(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	org, err := svc.Register(ctx, RegisterInput{Name: "Ponte Solidale"})
	require.NoError(t, err)

	require.NoError(t, svc.RecordFunding(ctx, org.OnlusID, 100.254))
	require.NoError(t, svc.RecordFunding(ctx, org.OnlusID, 49.75))

	fresh, err := svc.Get(ctx, org.OnlusID)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, fresh.CurrentFunding, 1e-6)

	err = svc.RecordFunding(ctx, org.OnlusID, -1)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	err = svc.RecordFunding(ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
