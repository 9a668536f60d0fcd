package allocation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	allocsvc "goodplay-backend/internal/application/allocation"
	donsvc "goodplay-backend/internal/application/donations"
	poolsvc "goodplay-backend/internal/application/pools"
	"goodplay-backend/internal/audit"
	"goodplay-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedScore struct {
	score float64
}

func (f *fixedScore) CurrentScore(ctx context.Context, onlusID uuid.UUID) (*float64, error) {
	s := f.score
	return &s, nil
}

func setupAllocationTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Onlus{},
		&models.FundingPool{},
		&models.AllocationRequest{},
		&models.AllocationResult{},
		&models.DonationTransaction{},
	))
	donations := &donsvc.Service{DB: db}
	engine := allocsvc.NewEngine(db, &poolsvc.Service{DB: db}, &fixedScore{score: 90}, donations, audit.NopSink{}, allocsvc.Config{})
	engine.Now = func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	return &Handlers{Engine: engine, Donations: donations}, db
}

func seedScenario(t *testing.T, db *gorm.DB, urgency, priority int) (*models.Onlus, *models.AllocationRequest, *models.FundingPool) {
	t.Helper()
	budget := 100000.0
	org := &models.Onlus{
		Name:         "Acqua Pulita",
		Category:     "health",
		Region:       "north",
		AnnualBudget: &budget,
		Status:       models.OnlusStatusActive,
	}
	require.NoError(t, db.Create(org).Error)
	req := &models.AllocationRequest{
		OnlusID:         org.OnlusID,
		RequestedAmount: 1000,
		ProjectTitle:    "Pozzi nel Sahel",
		UrgencyLevel:    urgency,
		Priority:        priority,
		Category:        "health",
		Status:          models.RequestStatusPending,
	}
	require.NoError(t, db.Create(req).Error)
	pool := &models.FundingPool{
		Name:                  "General Fund",
		PoolType:              models.PoolTypeGeneral,
		Status:                models.PoolStatusActive,
		TotalBalance:          10000,
		AvailableBalance:      10000,
		AutoAllocationEnabled: true,
		PriorityWeight:        1,
	}
	require.NoError(t, db.Create(pool).Error)
	return org, req, pool
}

func postAlloc(t *testing.T, app *fiber.App, path string, payload interface{}) (map[string]interface{}, int) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out, resp.StatusCode
}

func TestProcess_Success(t *testing.T) {
	h, db := setupAllocationTest(t)
	_, req, _ := seedScenario(t, db, 4, 3)
	app := fiber.New()
	app.Post("/process", h.Process)

	out, code := postAlloc(t, app, "/process", map[string]interface{}{
		"request_id": req.RequestID.String(),
	})

	assert.Equal(t, 200, code)
	assert.Equal(t, "success", out["status"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, allocsvc.ReasonAllocationApproved, data["reason"])
	assert.NotEmpty(t, data["result_id"])
	assert.NotEmpty(t, data["pool_id"])
}

func TestProcess_RequestNotFound(t *testing.T) {
	h, _ := setupAllocationTest(t)
	app := fiber.New()
	app.Post("/process", h.Process)

	out, code := postAlloc(t, app, "/process", map[string]interface{}{
		"request_id": uuid.New().String(),
	})

	assert.Equal(t, 404, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Allocation request not found", errObj["message"])
	details := errObj["details"].(map[string]interface{})
	assert.Equal(t, allocsvc.ReasonRequestNotFound, details["reason"])
}

func TestProcess_InvalidUUID(t *testing.T) {
	h, _ := setupAllocationTest(t)
	app := fiber.New()
	app.Post("/process", h.Process)

	_, code := postAlloc(t, app, "/process", map[string]interface{}{"request_id": "xyz"})
	assert.Equal(t, 400, code)
}

func TestProcess_BelowThresholdMapsTo400(t *testing.T) {
	h, db := setupAllocationTest(t)
	h.Engine.Compliance = &fixedScore{score: 10}
	org := &models.Onlus{Name: "Nuova", Category: "other", Status: models.OnlusStatusActive}
	require.NoError(t, db.Create(org).Error)
	req := &models.AllocationRequest{
		OnlusID:         org.OnlusID,
		RequestedAmount: 1000,
		ProjectTitle:    "Progetto pilota",
		UrgencyLevel:    1,
		Priority:        2,
		Status:          models.RequestStatusPending,
	}
	require.NoError(t, db.Create(req).Error)
	app := fiber.New()
	app.Post("/process", h.Process)

	out, code := postAlloc(t, app, "/process", map[string]interface{}{
		"request_id": req.RequestID.String(),
	})

	assert.Equal(t, 400, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Allocation score below threshold", errObj["message"])
	details := errObj["details"].(map[string]interface{})
	assert.Equal(t, allocsvc.ReasonBelowThreshold, details["reason"])
	assert.Greater(t, details["threshold"].(float64), details["score"].(float64))
}

func TestExecute_CompletesAllocation(t *testing.T) {
	h, db := setupAllocationTest(t)
	_, req, _ := seedScenario(t, db, 4, 3)
	app := fiber.New()
	app.Post("/process", h.Process)
	app.Post("/execute", h.Execute)

	processed, code := postAlloc(t, app, "/process", map[string]interface{}{
		"request_id": req.RequestID.String(),
	})
	require.Equal(t, 200, code)
	resultID := processed["data"].(map[string]interface{})["result_id"].(string)

	out, code := postAlloc(t, app, "/execute", map[string]interface{}{
		"result_id": resultID,
		"donor_transactions": []map[string]interface{}{
			{"donor_id": "donor-a", "amount": 600},
			{"donor_id": "donor-b", "amount": 400},
		},
	})

	assert.Equal(t, 200, code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, allocsvc.ReasonExecutionCompleted, data["reason"])
	assert.Equal(t, float64(2), data["transaction_count"])
}

func TestExecute_EmptyTransactions(t *testing.T) {
	h, db := setupAllocationTest(t)
	_, req, _ := seedScenario(t, db, 4, 3)
	app := fiber.New()
	app.Post("/process", h.Process)
	app.Post("/execute", h.Execute)

	processed, code := postAlloc(t, app, "/process", map[string]interface{}{
		"request_id": req.RequestID.String(),
	})
	require.Equal(t, 200, code)
	resultID := processed["data"].(map[string]interface{})["result_id"].(string)

	out, code := postAlloc(t, app, "/execute", map[string]interface{}{
		"result_id":          resultID,
		"donor_transactions": []map[string]interface{}{},
	})

	assert.Equal(t, 400, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Validation failed", errObj["message"])
}

func TestProcessBatch_ReturnsReport(t *testing.T) {
	h, db := setupAllocationTest(t)
	seedScenario(t, db, 4, 3)
	app := fiber.New()
	app.Post("/process-batch", h.ProcessBatch)

	out, code := postAlloc(t, app, "/process-batch", map[string]interface{}{
		"max_requests": 10,
	})

	assert.Equal(t, 200, code)
	assert.Equal(t, "Batch processing completed", out["message"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["processed_count"])
	assert.Equal(t, float64(1), data["succeeded_count"])
}

func TestEmergency_RejectsNonEmergency(t *testing.T) {
	h, db := setupAllocationTest(t)
	_, req, _ := seedScenario(t, db, 4, 3)
	app := fiber.New()
	app.Post("/emergency", h.Emergency)

	out, code := postAlloc(t, app, "/emergency", map[string]interface{}{
		"request_id": req.RequestID.String(),
	})

	assert.Equal(t, 409, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Request does not carry emergency priority", errObj["message"])
}

func TestViewResult_NotFound(t *testing.T) {
	h, _ := setupAllocationTest(t)
	app := fiber.New()
	app.Get("/view-result/:result_id", h.ViewResult)

	resp, err := app.Test(httptest.NewRequest("GET", "/view-result/"+uuid.New().String(), nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestRankPools_PreviewsCandidates(t *testing.T) {
	h, db := setupAllocationTest(t)
	_, req, pool := seedScenario(t, db, 4, 3)
	app := fiber.New()
	app.Get("/rank-pools/:request_id", h.RankPools)

	resp, err := app.Test(httptest.NewRequest("GET", "/rank-pools/"+req.RequestID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	data := out["data"].(map[string]interface{})
	candidates := data["candidates"].([]interface{})
	require.Len(t, candidates, 1)
	first := candidates[0].(map[string]interface{})
	// priority 1*40 + availability 1.0*30 + general type bonus 5
	assert.InDelta(t, 75.0, first["score"].(float64), 1e-9)
	assert.Equal(t, pool.PoolID.String(), first["pool"].(map[string]interface{})["pool_id"])

	// Request stays untouched by the preview.
	var fresh models.AllocationRequest
	require.NoError(t, db.First(&fresh, "request_id = ?", req.RequestID).Error)
	assert.Equal(t, models.RequestStatusPending, fresh.Status)
}

func TestViewResultTransactions_ListsSettledDonations(t *testing.T) {
	h, db := setupAllocationTest(t)
	_, req, _ := seedScenario(t, db, 4, 3)
	app := fiber.New()
	app.Post("/process", h.Process)
	app.Post("/execute", h.Execute)
	app.Get("/view-result-transactions/:result_id", h.ViewResultTransactions)

	processed, _ := postAlloc(t, app, "/process", map[string]interface{}{
		"request_id": req.RequestID.String(),
	})
	resultID := processed["data"].(map[string]interface{})["result_id"].(string)
	_, code := postAlloc(t, app, "/execute", map[string]interface{}{
		"result_id": resultID,
		"donor_transactions": []map[string]interface{}{
			{"donor_id": "donor-a", "amount": 1000},
		},
	})
	require.Equal(t, 200, code)

	resp, err := app.Test(httptest.NewRequest("GET", "/view-result-transactions/"+resultID, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	txns := out["data"].([]interface{})
	require.Len(t, txns, 1)
	assert.Equal(t, "completed", txns[0].(map[string]interface{})["status"])
}
