package requests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	reqsvc "goodplay-backend/internal/application/requests"
	"goodplay-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRequestsTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Onlus{}, &models.AllocationRequest{}))
	h := &Handlers{Service: &reqsvc.Service{DB: db}}
	return h, db
}

func seedTestOnlus(t *testing.T, db *gorm.DB) *models.Onlus {
	t.Helper()
	org := &models.Onlus{Name: "Cibo per Tutti", Category: "food_security", Status: models.OnlusStatusActive}
	require.NoError(t, db.Create(org).Error)
	return org
}

func post(t *testing.T, app *fiber.App, path string, payload interface{}) (map[string]interface{}, int) {
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

func TestCreateRequest_Success(t *testing.T) {
	h, db := setupRequestsTest(t)
	org := seedTestOnlus(t, db)
	app := fiber.New()
	app.Post("/create-request", h.CreateRequest)

	out, code := post(t, app, "/create-request", map[string]interface{}{
		"onlus_id":         org.OnlusID.String(),
		"requested_amount": 1500.75,
		"project_title":    "Mensa invernale",
		"urgency_level":    4,
		"priority":         3,
		"category":         "food_security",
	})

	assert.Equal(t, 201, code)
	assert.Equal(t, "success", out["status"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.InDelta(t, 1500.75, data["requested_amount"].(float64), 1e-9)
}

func TestCreateRequest_MissingFields(t *testing.T) {
	h, _ := setupRequestsTest(t)
	app := fiber.New()
	app.Post("/create-request", h.CreateRequest)

	out, code := post(t, app, "/create-request", map[string]interface{}{
		"requested_amount": 100,
	})

	assert.Equal(t, 400, code)
	assert.Equal(t, "error", out["status"])
}

func TestCreateRequest_UnknownOnlus(t *testing.T) {
	h, _ := setupRequestsTest(t)
	app := fiber.New()
	app.Post("/create-request", h.CreateRequest)

	out, code := post(t, app, "/create-request", map[string]interface{}{
		"onlus_id":         uuid.New().String(),
		"requested_amount": 100,
		"project_title":    "Doposcuola",
	})

	assert.Equal(t, 404, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "ONLUS not found", errObj["message"])
}

func TestCreateRequest_InvalidUrgency(t *testing.T) {
	h, db := setupRequestsTest(t)
	org := seedTestOnlus(t, db)
	app := fiber.New()
	app.Post("/create-request", h.CreateRequest)

	out, code := post(t, app, "/create-request", map[string]interface{}{
		"onlus_id":         org.OnlusID.String(),
		"requested_amount": 100,
		"project_title":    "Doposcuola",
		"urgency_level":    9,
	})

	assert.Equal(t, 400, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Urgency level must be between 1 and 5", errObj["message"])
}

func TestViewPending_OrdersByScoreThenPriority(t *testing.T) {
	h, db := setupRequestsTest(t)
	org := seedTestOnlus(t, db)
	low := seedPendingRequest(t, db, org.OnlusID, 40.0, 2)
	high := seedPendingRequest(t, db, org.OnlusID, 80.0, 1)
	app := fiber.New()
	app.Get("/view-pending", h.ViewPending)

	resp, err := app.Test(httptest.NewRequest("GET", "/view-pending", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	data := out["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, high.RequestID.String(), data[0].(map[string]interface{})["request_id"])
	assert.Equal(t, low.RequestID.String(), data[1].(map[string]interface{})["request_id"])
}

func TestCancelRequest_OnlyPending(t *testing.T) {
	h, db := setupRequestsTest(t)
	org := seedTestOnlus(t, db)
	req := seedPendingRequest(t, db, org.OnlusID, 50.0, 3)
	require.NoError(t, db.Model(req).Update("status", models.RequestStatusApproved).Error)
	app := fiber.New()
	app.Post("/cancel-request", h.CancelRequest)

	out, code := post(t, app, "/cancel-request", map[string]interface{}{"request_id": req.RequestID.String()})

	assert.Equal(t, 409, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Only pending requests can be cancelled", errObj["message"])
}

func TestViewRequest_InvalidUUID(t *testing.T) {
	h, _ := setupRequestsTest(t)
	app := fiber.New()
	app.Get("/view-request/:request_id", h.ViewRequest)

	resp, err := app.Test(httptest.NewRequest("GET", "/view-request/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func seedPendingRequest(t *testing.T, db *gorm.DB, onlusID uuid.UUID, score float64, priority int) *models.AllocationRequest {
	t.Helper()
	req := &models.AllocationRequest{
		OnlusID:         onlusID,
		RequestedAmount: 100,
		ProjectTitle:    "Progetto",
		UrgencyLevel:    3,
		Priority:        priority,
		Status:          models.RequestStatusPending,
		AllocationScore: score,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}
