package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// MockMonitoringService is a mock implementation of services.MonitoringService
type MockMonitoringService struct {
	mock.Mock
}

func (m *MockMonitoringService) RegisterHealthCheck(component string, checkFunc func(ctx context.Context) error) {
	m.Called(component, checkFunc)
}

func (m *MockMonitoringService) PerformHealthCheck(ctx context.Context, component string) *services.ComponentHealth {
	args := m.Called(ctx, component)
	return args.Get(0).(*services.ComponentHealth)
}

func (m *MockMonitoringService) GetSystemHealth(ctx context.Context) map[string]interface{} {
	args := m.Called(ctx)
	return args.Get(0).(map[string]interface{})
}

func (m *MockMonitoringService) GetDashboardStats(ctx context.Context) (map[string]interface{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func healthyComponent(name string) *services.ComponentHealth {
	return &services.ComponentHealth{
		Component: name,
		Status:    services.HealthStatusHealthy,
		Duration:  3,
		Timestamp: time.Now(),
	}
}

func unhealthyComponent(name, message string) *services.ComponentHealth {
	return &services.ComponentHealth{
		Component: name,
		Status:    services.HealthStatusUnhealthy,
		Message:   message,
		Duration:  120,
		Timestamp: time.Now(),
	}
}

func TestHealthHandler_HandleHealthCheck(t *testing.T) {
	t.Run("reports a healthy system with 200", func(t *testing.T) {
		mockService := &MockMonitoringService{}
		handler := NewHealthHandler(mockService)

		mockService.On("GetSystemHealth", mock.Anything).Return(map[string]interface{}{
			"overall_status": services.HealthStatusHealthy,
			"healthy_checks": 2,
			"total_checks":   2,
			"components": map[string]*services.ComponentHealth{
				"database": healthyComponent("database"),
				"redis":    healthyComponent("redis"),
			},
		})

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		handler.HandleHealthCheck(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response["overall_status"])
		assert.Equal(t, float64(2), response["healthy_checks"])

		mockService.AssertExpectations(t)
	})

	t.Run("reports a degraded system with 503", func(t *testing.T) {
		mockService := &MockMonitoringService{}
		handler := NewHealthHandler(mockService)

		mockService.On("GetSystemHealth", mock.Anything).Return(map[string]interface{}{
			"overall_status": "degraded",
			"healthy_checks": 1,
			"total_checks":   2,
			"components": map[string]*services.ComponentHealth{
				"database": healthyComponent("database"),
				"redis":    unhealthyComponent("redis", "connection refused"),
			},
		})

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		handler.HandleHealthCheck(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "degraded", response["overall_status"])
	})
}

func TestHealthHandler_HandleLivenessProbe(t *testing.T) {
	handler := NewHealthHandler(&MockMonitoringService{})

	req := httptest.NewRequest("GET", "/health/live", nil)
	w := httptest.NewRecorder()
	handler.HandleLivenessProbe(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestHealthHandler_HandleReadinessProbe(t *testing.T) {
	t.Run("ready when database and redis respond", func(t *testing.T) {
		mockService := &MockMonitoringService{}
		handler := NewHealthHandler(mockService)

		mockService.On("PerformHealthCheck", mock.Anything, "database").Return(healthyComponent("database"))
		mockService.On("PerformHealthCheck", mock.Anything, "redis").Return(healthyComponent("redis"))

		req := httptest.NewRequest("GET", "/health/ready", nil)
		w := httptest.NewRecorder()
		handler.HandleReadinessProbe(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Ready", w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("not ready when the database is down", func(t *testing.T) {
		mockService := &MockMonitoringService{}
		handler := NewHealthHandler(mockService)

		// The probe stops at the first unhealthy component
		mockService.On("PerformHealthCheck", mock.Anything, "database").
			Return(unhealthyComponent("database", "dial tcp: connection refused"))

		req := httptest.NewRequest("GET", "/health/ready", nil)
		w := httptest.NewRecorder()
		handler.HandleReadinessProbe(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "Service Unavailable", w.Body.String())
		mockService.AssertNotCalled(t, "PerformHealthCheck", mock.Anything, "redis")
	})
}

func TestHealthHandler_HandleComponentHealth(t *testing.T) {
	t.Run("returns the check for a named component", func(t *testing.T) {
		mockService := &MockMonitoringService{}
		handler := NewHealthHandler(mockService)

		mockService.On("PerformHealthCheck", mock.Anything, "saiba").Return(healthyComponent("saiba"))

		req := httptest.NewRequest("GET", "/health/component?component=saiba", nil)
		w := httptest.NewRecorder()
		handler.HandleComponentHealth(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var check services.ComponentHealth
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &check))
		assert.Equal(t, "saiba", check.Component)
		assert.Equal(t, services.HealthStatusHealthy, check.Status)
	})

	t.Run("returns 503 for an unhealthy component", func(t *testing.T) {
		mockService := &MockMonitoringService{}
		handler := NewHealthHandler(mockService)

		mockService.On("PerformHealthCheck", mock.Anything, "saiba").
			Return(unhealthyComponent("saiba", "token request failed"))

		req := httptest.NewRequest("GET", "/health/component?component=saiba", nil)
		w := httptest.NewRecorder()
		handler.HandleComponentHealth(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var check services.ComponentHealth
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &check))
		assert.Equal(t, services.HealthStatusUnhealthy, check.Status)
		assert.Contains(t, check.Message, "token request failed")
	})

	t.Run("requires a component parameter", func(t *testing.T) {
		handler := NewHealthHandler(&MockMonitoringService{})

		req := httptest.NewRequest("GET", "/health/component", nil)
		w := httptest.NewRecorder()
		handler.HandleComponentHealth(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Component parameter is required")
	})
}
