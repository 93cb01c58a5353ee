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

// Uses createTestLogger, grantAccess and newAuthedRequest from documents_test.go.

// MockPolicyService is a mock implementation of services.PolicyService
type MockPolicyService struct {
	mock.Mock
}

func (m *MockPolicyService) CreateFromDocument(ctx context.Context, documentID, actorID, actorUsername string) (*services.PolicyCreationResult, error) {
	args := m.Called(ctx, documentID, actorID, actorUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PolicyCreationResult), args.Error(1)
}

func (m *MockPolicyService) GetMotorPolicy(ctx context.Context, id string) (*models.MotorPolicy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MotorPolicy), args.Error(1)
}

func (m *MockPolicyService) ListMotorPolicies(ctx context.Context, syncStatus string, limit, offset int) ([]*models.MotorPolicy, error) {
	args := m.Called(ctx, syncStatus, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MotorPolicy), args.Error(1)
}

func (m *MockPolicyService) UpdateMotorPolicy(ctx context.Context, id string, fields map[string]interface{}, actorID string) (*models.MotorPolicy, error) {
	args := m.Called(ctx, id, fields, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MotorPolicy), args.Error(1)
}

func (m *MockPolicyService) GetHealthPolicy(ctx context.Context, id string) (*models.HealthPolicy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HealthPolicy), args.Error(1)
}

func (m *MockPolicyService) ListHealthPolicies(ctx context.Context, syncStatus string, limit, offset int) ([]*models.HealthPolicy, error) {
	args := m.Called(ctx, syncStatus, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HealthPolicy), args.Error(1)
}

func (m *MockPolicyService) UpdateHealthPolicy(ctx context.Context, id string, fields map[string]interface{}, actorID string) (*models.HealthPolicy, error) {
	args := m.Called(ctx, id, fields, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HealthPolicy), args.Error(1)
}

func setupPolicyHandler() (*mux.Router, *MockPolicyService, *MockAuthenticationService) {
	policySvc := &MockPolicyService{}
	authSvc := &MockAuthenticationService{}
	authMw := middleware.NewAuthenticationMiddleware(createTestLogger(), authSvc)

	router := mux.NewRouter()
	NewPolicyHandler(createTestLogger(), policySvc, authMw).RegisterRoutes(router)
	return router, policySvc, authSvc
}

func TestCreatePolicy(t *testing.T) {
	t.Run("creates a motor policy from a completed document", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		result := &services.PolicyCreationResult{
			PolicyType:     models.PolicyTypeMotor,
			PolicyID:       "pol-1",
			MappedCount:    28,
			UnmappedFields: []string{"agent commission"},
			Suggestions:    map[string][]string{"agent commission": {"prem_rate"}},
		}
		policySvc.On("CreateFromDocument", mock.Anything, "doc-1", "user-1", "ops").Return(result, nil)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/policy", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var got services.PolicyCreationResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "pol-1", got.PolicyID)
		assert.Equal(t, 28, got.MappedCount)
		assert.Equal(t, []string{"agent commission"}, got.UnmappedFields)
		policySvc.AssertExpectations(t)
	})

	t.Run("rejects a document without extracted fields", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("CreateFromDocument", mock.Anything, "doc-1", "user-1", "ops").Return(nil, services.ErrNoExtractedFields)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/policy", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Document has no extracted fields")
	})

	t.Run("rejects a document without a policy type", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("CreateFromDocument", mock.Anything, "doc-1", "user-1", "ops").Return(nil, services.ErrPolicyTypeNotSet)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/policy", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Policy type is not set on the document")
	})

	t.Run("rejects a second policy for the same document", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("CreateFromDocument", mock.Anything, "doc-1", "user-1", "ops").Return(nil, services.ErrPolicyExists)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/policy", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "A policy already exists for this document")
	})

	t.Run("returns 422 when nothing could be mapped", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("CreateFromDocument", mock.Anything, "doc-1", "user-1", "ops").Return(nil, services.ErrEmptyMapping)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/policy", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "No extracted fields could be mapped")
	})

	t.Run("returns 422 when the assembled policy fails validation", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("CreateFromDocument", mock.Anything, "doc-1", "user-1", "ops").Return(nil, models.ErrPolicyDateOrder)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/policy", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "Policy failed validation")
		assert.Contains(t, rr.Body.String(), "start date must be before expiry date")
	})
}

func TestListMotorPolicies(t *testing.T) {
	router, policySvc, authSvc := setupPolicyHandler()
	grantAccess(authSvc, createTestOperator())

	policies := []*models.MotorPolicy{
		{ID: "pol-1", PolicyNo: "MOT/2024/001", SaibaSyncStatus: models.SyncStatusNotSynced},
		{ID: "pol-2", PolicyNo: "MOT/2024/002", SaibaSyncStatus: models.SyncStatusNotSynced},
	}
	policySvc.On("ListMotorPolicies", mock.Anything, models.SyncStatusNotSynced, 50, 0).Return(policies, nil)

	req := newAuthedRequest(http.MethodGet, "/api/v1/policies/motor?sync_status=Not+Synced", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])
	assert.Len(t, response["policies"], 2)
	policySvc.AssertExpectations(t)
}

func TestGetMotorPolicy(t *testing.T) {
	t.Run("returns the policy", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policy := &models.MotorPolicy{
			ID:              "pol-1",
			PolicyNo:        "MOT/2024/001",
			VehicleNo:       "MH12AB1234",
			SaibaSyncStatus: models.SyncStatusSynced,
		}
		policySvc.On("GetMotorPolicy", mock.Anything, "pol-1").Return(policy, nil)

		req := newAuthedRequest(http.MethodGet, "/api/v1/policies/motor/pol-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.MotorPolicy
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "MOT/2024/001", got.PolicyNo)
		assert.Equal(t, "MH12AB1234", got.VehicleNo)
	})

	t.Run("returns 404 for an unknown policy", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("GetMotorPolicy", mock.Anything, "missing").Return(nil, assert.AnError)

		req := newAuthedRequest(http.MethodGet, "/api/v1/policies/motor/missing", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Motor policy not found")
	})
}

func TestUpdateMotorPolicy(t *testing.T) {
	t.Run("applies field updates with the actor recorded", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		updated := &models.MotorPolicy{ID: "pol-1", PolicyNo: "MOT/2024/099", NCB: 20}
		policySvc.On("UpdateMotorPolicy", mock.Anything, "pol-1", map[string]interface{}{
			"policy_no": "MOT/2024/099",
			"ncb":       float64(20),
		}, "user-1").Return(updated, nil)

		body := strings.NewReader(`{"policy_no": "MOT/2024/099", "ncb": 20}`)
		req := newAuthedRequest(http.MethodPatch, "/api/v1/policies/motor/pol-1", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		policySvc.AssertExpectations(t)
	})

	t.Run("rejects an unknown field", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("UpdateMotorPolicy", mock.Anything, "pol-1", mock.Anything, "user-1").Return(nil, models.ErrUnknownField)

		body := strings.NewReader(`{"spaceship_no": "X-1"}`)
		req := newAuthedRequest(http.MethodPatch, "/api/v1/policies/motor/pol-1", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Unknown policy field")
	})

	t.Run("rejects a value of the wrong type", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("UpdateMotorPolicy", mock.Anything, "pol-1", mock.Anything, "user-1").Return(nil, models.ErrFieldTypeValue)

		body := strings.NewReader(`{"sum_insured": "plenty"}`)
		req := newAuthedRequest(http.MethodPatch, "/api/v1/policies/motor/pol-1", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Field value does not match its type")
	})

	t.Run("rejects an update that breaks date ordering", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("UpdateMotorPolicy", mock.Anything, "pol-1", mock.Anything, "user-1").Return(nil, models.ErrPolicyDateOrder)

		body := strings.NewReader(`{"policy_expiry_date": "2023-01-01"}`)
		req := newAuthedRequest(http.MethodPatch, "/api/v1/policies/motor/pol-1", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "Policy failed validation")
	})
}

func TestHealthPolicyEndpoints(t *testing.T) {
	t.Run("lists health policies", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policies := []*models.HealthPolicy{
			{ID: "pol-9", PolicyNo: "HLT/2024/001"},
		}
		policySvc.On("ListHealthPolicies", mock.Anything, "", 50, 0).Return(policies, nil)

		req := newAuthedRequest(http.MethodGet, "/api/v1/policies/health", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, float64(1), response["count"])
	})

	t.Run("updates a health policy", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		updated := &models.HealthPolicy{ID: "pol-9", PolicyNo: "HLT/2024/002"}
		policySvc.On("UpdateHealthPolicy", mock.Anything, "pol-9", map[string]interface{}{
			"policy_no": "HLT/2024/002",
		}, "user-1").Return(updated, nil)

		body := strings.NewReader(`{"policy_no": "HLT/2024/002"}`)
		req := newAuthedRequest(http.MethodPatch, "/api/v1/policies/health/pol-9", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		policySvc.AssertExpectations(t)
	})

	t.Run("returns 404 for an unknown health policy", func(t *testing.T) {
		router, policySvc, authSvc := setupPolicyHandler()
		grantAccess(authSvc, createTestOperator())

		policySvc.On("GetHealthPolicy", mock.Anything, "missing").Return(nil, assert.AnError)

		req := newAuthedRequest(http.MethodGet, "/api/v1/policies/health/missing", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Health policy not found")
	})
}
