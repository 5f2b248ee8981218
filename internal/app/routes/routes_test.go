package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/domain/services/container"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/database"
)

type cannedLLM struct{}

func (cannedLLM) AnalyzeMaintenance(context.Context, string) (*services.TriageSuggestion, error) {
	category, priority, cost := "Plumbing", "high", 150.0
	return &services.TriageSuggestion{Category: &category, Priority: &priority, EstimatedCost: &cost}, nil
}

func (cannedLLM) Ask(context.Context, string, string) (string, error) {
	return "Rent is due on the first of the month.", nil
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	tokens map[string]string
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecretKey:     "test-secret",
		JWTIssuer:        "propertypro",
		TokenLifetime:    time.Hour,
		TriageTimeout:    time.Second,
		AssistantTimeout: time.Second,
		UploadMaxBytes:   1 << 20,
		BlobDriver:       "memory",
	}
	c := container.NewServiceContainer(container.Dependencies{
		DB:     database.NewTestPool(t).GetDB(),
		Config: cfg,
		LLM:    cannedLLM{},
	})

	jwtService := c.GetService("jwt").(services.InterfaceJWTService)
	tokens := map[string]string{}
	for _, user := range []string{"user-a", "user-b"} {
		token, _, err := jwtService.GenerateToken(user, user+"@example.com", "")
		require.NoError(t, err)
		tokens[user] = token
	}
	return &apiClient{t: t, router: SetupRouter(c), tokens: tokens}
}

func (a *apiClient) do(user, method, path string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+a.tokens[user])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

// create 发起创建请求并返回新实体ID
func (a *apiClient) create(user, path string, body interface{}) string {
	a.t.Helper()
	status, env := a.do(user, http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, status, env.Message)

	var entity struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &entity))
	require.NotEmpty(a.t, entity.ID)
	return entity.ID
}

func TestPortfolioFlow(t *testing.T) {
	api := newAPI(t)

	companyID := api.create("user-a", "/api/companies", map[string]interface{}{"name": "Marina Holdings"})
	propertyID := api.create("user-a", "/api/properties", map[string]interface{}{
		"name": "Marina Heights", "address": "Dubai Marina", "company_id": companyID,
	})
	unitID := api.create("user-a", "/api/units", map[string]interface{}{
		"unit_number": "1204", "rent": 8500, "property_id": propertyID,
	})
	tenantID := api.create("user-a", "/api/tenants", map[string]interface{}{
		"first_name": "Omar", "last_name": "Khalil", "company_id": companyID,
	})

	// 尚无有效租约
	status, env := api.do("user-a", http.MethodGet, "/api/tenancies/unit/"+unitID+"/active", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", string(env.Data))

	tenancyID := api.create("user-a", "/api/tenancies", map[string]interface{}{
		"unit_id": unitID, "tenant_id": tenantID, "lease_start": "2025-01-01", "lease_end": "2025-12-31", "monthly_rent": 8500,
	})

	status, env = api.do("user-a", http.MethodGet, "/api/tenancies/unit/"+unitID+"/active", nil)
	require.Equal(t, http.StatusOK, status)
	var active struct {
		ID       string `json:"id"`
		IsActive bool   `json:"is_active"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &active))
	assert.Equal(t, tenancyID, active.ID)
	assert.True(t, active.IsActive)

	status, _ = api.do("user-a", http.MethodPost, "/api/tenancies", map[string]interface{}{
		"unit_id": unitID, "tenant_id": tenantID, "lease_start": "2025-02-01", "monthly_rent": 9000,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = api.do("user-a", http.MethodGet, "/api/units/"+unitID, nil)
	require.Equal(t, http.StatusOK, status)
	var unit struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &unit))
	assert.Equal(t, "occupied", unit.Status)

	status, env = api.do("user-a", http.MethodGet, "/api/calendar-events/company/"+companyID, nil)
	require.Equal(t, http.StatusOK, status)
	var events []struct {
		EventType string `json:"event_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "lease_end", events[0].EventType)

	maintenanceID := api.create("user-a", "/api/maintenance-requests", map[string]interface{}{
		"title": "Leaking tap", "description": "Kitchen tap drips", "unit_id": unitID,
	})
	status, env = api.do("user-a", http.MethodGet, "/api/maintenance-requests/"+maintenanceID, nil)
	require.Equal(t, http.StatusOK, status)
	var request struct {
		Category string `json:"category"`
		Priority string `json:"priority"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &request))
	assert.Equal(t, "Plumbing", request.Category)
	assert.Equal(t, "high", request.Priority)
}

func TestOtherUsersSeeNotFound(t *testing.T) {
	api := newAPI(t)

	companyID := api.create("user-a", "/api/companies", map[string]interface{}{"name": "Marina Holdings"})
	propertyID := api.create("user-a", "/api/properties", map[string]interface{}{
		"name": "Marina Heights", "address": "Dubai Marina", "company_id": companyID,
	})

	for _, path := range []string{
		"/api/companies/" + companyID,
		"/api/properties/" + propertyID,
		"/api/properties/company/" + companyID,
	} {
		status, env := api.do("user-b", http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.NotContains(t, env.Message, "scope", path)
	}

	status, _ := api.do("user-b", http.MethodDelete, "/api/properties/"+propertyID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do("user-a", http.MethodGet, "/api/properties/"+propertyID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := api.do("user-b", http.MethodGet, "/api/companies", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(env.Data))
}

func TestAuthenticationRequired(t *testing.T) {
	api := newAPI(t)

	status, _ := api.do("", http.MethodGet, "/api/companies", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do("", http.MethodGet, "/api/ping", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := api.do("user-a", http.MethodGet, "/api/auth/user", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"id":"user-a"`)
}

func TestAssistantEndpoint(t *testing.T) {
	api := newAPI(t)

	status, env := api.do("user-a", http.MethodPost, "/api/assistant", map[string]interface{}{"question": "When is rent due?"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "first of the month")

	status, env = api.do("user-a", http.MethodGet, "/api/assistant/logs", nil)
	require.Equal(t, http.StatusOK, status)
	var logs []struct {
		Query string `json:"query"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "When is rent due?", logs[0].Query)
}
