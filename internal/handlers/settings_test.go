package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// Uses MockMonitoringService from health_test.go and the shared auth helpers
// from documents_test.go.

// MockSettingsService is a mock implementation of services.SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (*models.ReaderSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReaderSettings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, input *services.SettingsUpdate, actorID string) (*models.ReaderSettings, error) {
	args := m.Called(ctx, input, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReaderSettings), args.Error(1)
}

func setupSettingsHandler() (*mux.Router, *MockSettingsService, *MockMonitoringService, *MockAuthenticationService) {
	settingsSvc := &MockSettingsService{}
	monitoringSvc := &MockMonitoringService{}
	authSvc := &MockAuthenticationService{}
	authMw := middleware.NewAuthenticationMiddleware(createTestLogger(), authSvc)

	router := mux.NewRouter()
	NewSettingsHandler(createTestLogger(), settingsSvc, monitoringSvc, authMw).RegisterRoutes(router)
	return router, settingsSvc, monitoringSvc, authSvc
}

func TestGetSettings(t *testing.T) {
	t.Run("returns settings without secrets", func(t *testing.T) {
		router, settingsSvc, _, authSvc := setupSettingsHandler()
		grantAccess(authSvc, createTestAdmin())

		settings := &models.ReaderSettings{
			ID:            "settings-1",
			ClaudeAPIKey:  "sk-ant-secret",
			ClaudeModel:   "claude-3-5-sonnet-20241022",
			MaxPages:      5,
			SaibaEnabled:  true,
			SaibaBaseURL:  "https://saiba.example.com",
			SaibaUsername: "salasar",
			SaibaPassword: "saiba-secret",
		}
		settingsSvc.On("Get", mock.Anything).Return(settings, nil)

		req := newAuthedRequest(http.MethodGet, "/api/v1/settings", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "claude-3-5-sonnet-20241022", got["claude_model"])
		assert.Equal(t, true, got["saiba_enabled"])

		// Credentials are stripped by the model's JSON tags
		assert.NotContains(t, rr.Body.String(), "sk-ant-secret")
		assert.NotContains(t, rr.Body.String(), "saiba-secret")
	})

	t.Run("is forbidden for operators", func(t *testing.T) {
		router, settingsSvc, _, authSvc := setupSettingsHandler()
		grantAccess(authSvc, createTestOperator())

		req := newAuthedRequest(http.MethodGet, "/api/v1/settings", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		settingsSvc.AssertNotCalled(t, "Get")
	})
}

func TestUpdateSettings(t *testing.T) {
	t.Run("applies a partial update as admin", func(t *testing.T) {
		router, settingsSvc, _, authSvc := setupSettingsHandler()
		grantAccess(authSvc, createTestAdmin())

		updated := &models.ReaderSettings{
			ID:            "settings-1",
			SaibaEnabled:  true,
			SaibaUsername: "salasar",
		}
		settingsSvc.On("Update", mock.Anything, mock.MatchedBy(func(input *services.SettingsUpdate) bool {
			return input.SaibaEnabled != nil && *input.SaibaEnabled &&
				input.SaibaUsername != nil && *input.SaibaUsername == "salasar" &&
				input.ClaudeAPIKey == nil
		}), "admin-1").Return(updated, nil)

		body := strings.NewReader(`{"saiba_enabled": true, "saiba_username": "salasar"}`)
		req := newAuthedRequest(http.MethodPut, "/api/v1/settings", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		settingsSvc.AssertExpectations(t)
	})

	t.Run("rejects values outside the allowed ranges", func(t *testing.T) {
		router, settingsSvc, _, authSvc := setupSettingsHandler()
		grantAccess(authSvc, createTestAdmin())

		settingsSvc.On("Update", mock.Anything, mock.Anything, "admin-1").Return(nil, services.ErrInvalidSettings)

		body := strings.NewReader(`{"max_pages": 50}`)
		req := newAuthedRequest(http.MethodPut, "/api/v1/settings", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid settings")
	})

	t.Run("is forbidden for operators", func(t *testing.T) {
		router, settingsSvc, _, authSvc := setupSettingsHandler()
		grantAccess(authSvc, createTestOperator())

		body := strings.NewReader(`{"saiba_enabled": true}`)
		req := newAuthedRequest(http.MethodPut, "/api/v1/settings", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		settingsSvc.AssertNotCalled(t, "Update")
	})
}

func TestDashboardStats(t *testing.T) {
	t.Run("returns stats to any authenticated user", func(t *testing.T) {
		router, _, monitoringSvc, authSvc := setupSettingsHandler()
		grantAccess(authSvc, createTestOperator())

		stats := map[string]interface{}{
			"documents": map[string]interface{}{
				"total":     int64(16),
				"by_status": map[string]int64{models.DocumentStatusCompleted: 12},
			},
			"motor_policies": map[string]interface{}{
				"total": int64(10),
			},
			"timestamp": time.Now().UTC(),
		}
		monitoringSvc.On("GetDashboardStats", mock.Anything).Return(stats, nil)

		req := newAuthedRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Contains(t, response, "documents")
		assert.Contains(t, response, "motor_policies")
	})

	t.Run("maps collection failures to 500", func(t *testing.T) {
		router, _, monitoringSvc, authSvc := setupSettingsHandler()
		grantAccess(authSvc, createTestOperator())

		monitoringSvc.On("GetDashboardStats", mock.Anything).Return(nil, assert.AnError)

		req := newAuthedRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "Failed to load dashboard stats")
	})
}
