package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// Uses the shared auth helpers from documents_test.go.

// MockAliasRegistryService is a mock implementation of services.AliasRegistryService
type MockAliasRegistryService struct {
	mock.Mock
}

func (m *MockAliasRegistryService) GetAliasMap(ctx context.Context, policyType string) (models.AliasMap, error) {
	args := m.Called(ctx, policyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.AliasMap), args.Error(1)
}

func (m *MockAliasRegistryService) Resolve(ctx context.Context, policyType, rawKey string) (string, bool, error) {
	args := m.Called(ctx, policyType, rawKey)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockAliasRegistryService) CanonicalFields(ctx context.Context, policyType string) ([]string, error) {
	args := m.Called(ctx, policyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAliasRegistryService) AddAlias(ctx context.Context, policyType, alias, canonical string) error {
	args := m.Called(ctx, policyType, alias, canonical)
	return args.Error(0)
}

func (m *MockAliasRegistryService) BulkAddAliases(ctx context.Context, policyType string, payload map[string]interface{}) (int, error) {
	args := m.Called(ctx, policyType, payload)
	return args.Int(0), args.Error(1)
}

func (m *MockAliasRegistryService) ListAliases(ctx context.Context, policyType string) (map[string][]string, error) {
	args := m.Called(ctx, policyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockAliasRegistryService) RebuildDefaults(ctx context.Context, policyType string) (models.AliasMap, error) {
	args := m.Called(ctx, policyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.AliasMap), args.Error(1)
}

func (m *MockAliasRegistryService) InvalidateCache(ctx context.Context, policyType string) error {
	args := m.Called(ctx, policyType)
	return args.Error(0)
}

// MockPromptBuilderService is a mock implementation of services.PromptBuilderService
type MockPromptBuilderService struct {
	mock.Mock
}

func (m *MockPromptBuilderService) BuildExtractionPrompt(ctx context.Context, policyType, text string) string {
	args := m.Called(ctx, policyType, text)
	return args.String(0)
}

func (m *MockPromptBuilderService) BuildVisionPrompt(ctx context.Context, policyType string) string {
	args := m.Called(ctx, policyType)
	return args.String(0)
}

func setupAliasHandler() (*mux.Router, *MockAliasRegistryService, *MockPromptBuilderService, *MockAuthenticationService) {
	registry := &MockAliasRegistryService{}
	promptSvc := &MockPromptBuilderService{}
	authSvc := &MockAuthenticationService{}
	authMw := middleware.NewAuthenticationMiddleware(createTestLogger(), authSvc)

	router := mux.NewRouter()
	NewAliasHandler(createTestLogger(), registry, promptSvc, authMw).RegisterRoutes(router)
	return router, registry, promptSvc, authSvc
}

func TestListAliases(t *testing.T) {
	router, registry, _, authSvc := setupAliasHandler()
	grantAccess(authSvc, createTestOperator())

	aliases := map[string][]string{
		"policy_no":  {"policy number", "policy no."},
		"vehicle_no": {"registration number"},
	}
	registry.On("ListAliases", mock.Anything, "Motor").Return(aliases, nil)

	req := newAuthedRequest(http.MethodGet, "/api/v1/aliases/Motor", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])

	got, ok := response["aliases"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, got["policy_no"], 2)
}

func TestAddAlias(t *testing.T) {
	t.Run("registers a new alias", func(t *testing.T) {
		router, registry, _, authSvc := setupAliasHandler()
		grantAccess(authSvc, createTestOperator())

		registry.On("AddAlias", mock.Anything, "Motor", "regn no", "vehicle_no").Return(nil)

		body := strings.NewReader(`{"alias": "regn no", "canonical": "vehicle_no"}`)
		req := newAuthedRequest(http.MethodPost, "/api/v1/aliases/Motor", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"regn no"`)
		registry.AssertExpectations(t)
	})

	t.Run("requires both alias and canonical field", func(t *testing.T) {
		router, registry, _, authSvc := setupAliasHandler()
		grantAccess(authSvc, createTestOperator())

		body := strings.NewReader(`{"alias": "regn no"}`)
		req := newAuthedRequest(http.MethodPost, "/api/v1/aliases/Motor", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Alias and canonical field are required")
		registry.AssertNotCalled(t, "AddAlias")
	})

	t.Run("rejects an unknown canonical field", func(t *testing.T) {
		router, registry, _, authSvc := setupAliasHandler()
		grantAccess(authSvc, createTestOperator())

		registry.On("AddAlias", mock.Anything, "Motor", "warp drive", "warp_drive").Return(services.ErrUnknownCanonicalField)

		body := strings.NewReader(`{"alias": "warp drive", "canonical": "warp_drive"}`)
		req := newAuthedRequest(http.MethodPost, "/api/v1/aliases/Motor", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Unknown canonical field")
	})
}

func TestBulkAddAliases(t *testing.T) {
	t.Run("accepts an alias payload and reports the count", func(t *testing.T) {
		router, registry, _, authSvc := setupAliasHandler()
		grantAccess(authSvc, createTestOperator())

		payload := map[string]interface{}{
			"policy number": "policy_no",
			"regn no":       "vehicle_no",
		}
		registry.On("BulkAddAliases", mock.Anything, "Motor", payload).Return(2, nil)

		body := strings.NewReader(`{"policy number": "policy_no", "regn no": "vehicle_no"}`)
		req := newAuthedRequest(http.MethodPost, "/api/v1/aliases/Motor/bulk", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, float64(2), response["added"])
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		router, registry, _, authSvc := setupAliasHandler()
		grantAccess(authSvc, createTestOperator())

		registry.On("BulkAddAliases", mock.Anything, "Motor", mock.Anything).Return(0, services.ErrMalformedAliasPayload)

		body := strings.NewReader(`{"policy_no": 42}`)
		req := newAuthedRequest(http.MethodPost, "/api/v1/aliases/Motor/bulk", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Malformed alias payload")
	})
}

func TestListCanonicalFields(t *testing.T) {
	router, registry, _, authSvc := setupAliasHandler()
	grantAccess(authSvc, createTestOperator())

	fields := []string{"policy_no", "vehicle_no", "sum_insured"}
	registry.On("CanonicalFields", mock.Anything, "Motor").Return(fields, nil)

	req := newAuthedRequest(http.MethodGet, "/api/v1/fields/Motor", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, float64(3), response["count"])
	assert.Len(t, response["fields"], 3)
}

func TestPreviewPrompt(t *testing.T) {
	router, _, promptSvc, authSvc := setupAliasHandler()
	grantAccess(authSvc, createTestOperator())

	promptSvc.On("BuildExtractionPrompt", mock.Anything, "Motor", "").
		Return("Extract the following fields from this motor insurance policy")

	req := newAuthedRequest(http.MethodGet, "/api/v1/prompt/Motor", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "Motor", response["policy_type"])
	assert.Contains(t, response["prompt"], "motor insurance policy")
	promptSvc.AssertExpectations(t)
}

func TestRebuildDefaultAliases(t *testing.T) {
	t.Run("rebuilds the default map as admin", func(t *testing.T) {
		router, registry, _, authSvc := setupAliasHandler()
		grantAccess(authSvc, createTestAdmin())

		rebuilt := models.AliasMap{
			"policy number": "policy_no",
			"policy no.":    "policy_no",
			"regn no":       "vehicle_no",
		}
		registry.On("RebuildDefaults", mock.Anything, "Motor").Return(rebuilt, nil)

		req := newAuthedRequest(http.MethodPost, "/api/v1/aliases/Motor/rebuild", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "rebuilt", response["status"])
		assert.Equal(t, float64(3), response["aliases"])
	})

	t.Run("is forbidden for operators", func(t *testing.T) {
		router, registry, _, authSvc := setupAliasHandler()
		grantAccess(authSvc, createTestOperator())

		req := newAuthedRequest(http.MethodPost, "/api/v1/aliases/Motor/rebuild", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		registry.AssertNotCalled(t, "RebuildDefaults")
	})
}
