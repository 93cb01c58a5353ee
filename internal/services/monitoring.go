package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// Health check status values
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
	HealthStatusUnknown   = "unknown"
)

// ComponentHealth is the result of a single component health check
type ComponentHealth struct {
	Component string    `json:"component"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Duration  int64     `json:"duration_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// monitoringService implements MonitoringService interface
type monitoringService struct {
	logger       *logger.Logger
	documentRepo repositories.PolicyDocumentRepository
	motorRepo    repositories.MotorPolicyRepository
	healthRepo   repositories.HealthPolicyRepository
	cache        *CacheService
	errorHandler *ErrorHandler

	// Health check functions registry
	healthChecks map[string]func(ctx context.Context) error
	healthMutex  sync.RWMutex
}

// NewMonitoringService creates a new monitoring service
func NewMonitoringService(
	logger *logger.Logger,
	documentRepo repositories.PolicyDocumentRepository,
	motorRepo repositories.MotorPolicyRepository,
	healthRepo repositories.HealthPolicyRepository,
	cache *CacheService,
	errorHandler *ErrorHandler,
) MonitoringService {
	return &monitoringService{
		logger:       logger,
		documentRepo: documentRepo,
		motorRepo:    motorRepo,
		healthRepo:   healthRepo,
		cache:        cache,
		errorHandler: errorHandler,
		healthChecks: make(map[string]func(ctx context.Context) error),
	}
}

// RegisterHealthCheck registers a health check function for a component
func (s *monitoringService) RegisterHealthCheck(component string, checkFunc func(ctx context.Context) error) {
	s.healthMutex.Lock()
	defer s.healthMutex.Unlock()
	s.healthChecks[component] = checkFunc
}

// PerformHealthCheck performs a health check for a specific component
func (s *monitoringService) PerformHealthCheck(ctx context.Context, component string) *ComponentHealth {
	s.healthMutex.RLock()
	checkFunc, exists := s.healthChecks[component]
	s.healthMutex.RUnlock()

	if !exists {
		return &ComponentHealth{
			Component: component,
			Status:    HealthStatusUnknown,
			Message:   "No health check registered for component",
			Timestamp: time.Now(),
		}
	}

	startTime := time.Now()
	err := checkFunc(ctx)
	duration := time.Since(startTime).Milliseconds()

	check := &ComponentHealth{
		Component: component,
		Status:    HealthStatusHealthy,
		Duration:  duration,
		Timestamp: time.Now(),
	}
	if err != nil {
		check.Status = HealthStatusUnhealthy
		check.Message = fmt.Sprintf("Health check failed: %v", err)
	}
	return check
}

// GetSystemHealth runs all registered health checks and reports overall status
func (s *monitoringService) GetSystemHealth(ctx context.Context) map[string]interface{} {
	s.healthMutex.RLock()
	components := make([]string, 0, len(s.healthChecks))
	for component := range s.healthChecks {
		components = append(components, component)
	}
	s.healthMutex.RUnlock()

	checks := make(map[string]*ComponentHealth, len(components))
	healthyChecks := 0
	for _, component := range components {
		check := s.PerformHealthCheck(ctx, component)
		checks[component] = check
		if check.Status == HealthStatusHealthy {
			healthyChecks++
		}
	}

	overallStatus := HealthStatusHealthy
	if healthyChecks < len(checks) {
		if healthyChecks == 0 {
			overallStatus = HealthStatusUnhealthy
		} else {
			overallStatus = "degraded"
		}
	}

	return map[string]interface{}{
		"overall_status": overallStatus,
		"healthy_checks": healthyChecks,
		"total_checks":   len(checks),
		"components":     checks,
		"timestamp":      time.Now(),
	}
}

// GetDashboardStats aggregates document and sync counts for the dashboard
func (s *monitoringService) GetDashboardStats(ctx context.Context) (map[string]interface{}, error) {
	documentCounts, err := s.documentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	motorCounts, err := s.motorRepo.CountBySyncStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count motor policies: %w", err)
	}

	healthCounts, err := s.healthRepo.CountBySyncStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count health policies: %w", err)
	}

	var totalDocuments int64
	for _, count := range documentCounts {
		totalDocuments += count
	}
	var totalMotor, totalHealth int64
	for _, count := range motorCounts {
		totalMotor += count
	}
	for _, count := range healthCounts {
		totalHealth += count
	}

	stats := map[string]interface{}{
		"documents": map[string]interface{}{
			"total":     totalDocuments,
			"by_status": documentCounts,
		},
		"motor_policies": map[string]interface{}{
			"total":          totalMotor,
			"by_sync_status": motorCounts,
		},
		"health_policies": map[string]interface{}{
			"total":          totalHealth,
			"by_sync_status": healthCounts,
		},
		"circuit_breakers": s.errorHandler.GetCircuitBreakerStatus(),
		"timestamp":        time.Now(),
	}

	// Cache stats are best effort
	if s.cache != nil {
		if cacheStats, err := s.cache.GetStats(ctx); err == nil {
			stats["cache"] = cacheStats
		} else {
			s.logger.WithError(err).Debug("Failed to collect cache stats")
		}
	}

	return stats, nil
}
