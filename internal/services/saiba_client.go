package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// SAIBA API paths
const (
	saibaTokenPath       = "/GetToken"
	saibaMotorEntryPath  = "/api/MotorPolicyEntryS"
	saibaHealthEntryPath = "/api/HealthPolicyEntryS"

	// SAIBA bearer tokens live 24 hours; treat them as expired after 23 so a
	// sync never runs into the cutoff mid-request
	saibaTokenValidity = 23 * time.Hour
)

// SAIBA client errors
var (
	ErrSaibaDisabled      = fmt.Errorf("saiba sync is disabled")
	ErrSaibaNotConfigured = fmt.Errorf("saiba connection is not configured")
)

// HTTPClientPool manages a pool of HTTP clients with connection pooling,
// keyed by caller-chosen name so callers with different timeout needs get
// separate clients
type HTTPClientPool struct {
	clients map[string]*http.Client
	mutex   sync.RWMutex
}

// NewHTTPClientPool creates a new HTTP client pool
func NewHTTPClientPool() *HTTPClientPool {
	return &HTTPClientPool{
		clients: make(map[string]*http.Client),
	}
}

// GetClient returns the pooled HTTP client for a name, creating it with the
// given timeout on first use
func (p *HTTPClientPool) GetClient(name string, timeout time.Duration) *http.Client {
	p.mutex.RLock()
	client, exists := p.clients[name]
	p.mutex.RUnlock()

	if exists {
		return client
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Double-check after acquiring write lock
	if client, exists := p.clients[name]; exists {
		return client
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Create new client with connection pooling
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}

	p.clients[name] = client
	return client
}

// SaibaResponse carries one SAIBA API response: the HTTP status, the decoded
// JSON body when the payload parses, and the raw body either way
type SaibaResponse struct {
	StatusCode int                    `json:"status_code"`
	Body       map[string]interface{} `json:"body,omitempty"`
	Raw        string                 `json:"raw,omitempty"`
}

// saibaTokenEntry is the cached token representation stored in Redis
type saibaTokenEntry struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}

type saibaClientService struct {
	settingsRepo repositories.SettingsRepository
	cache        *CacheService
	clientPool   *HTTPClientPool
	errorHandler *ErrorHandler
	logger       *logger.Logger
	saibaCfg     config.SaibaConfig
	authTimeout  time.Duration
	syncTimeout  time.Duration

	// Serializes token refreshes so concurrent syncs do not hammer /GetToken
	refreshMutex sync.Mutex
}

// NewSaibaClientService creates a new SAIBA API client
func NewSaibaClientService(settingsRepo repositories.SettingsRepository, cache *CacheService, errorHandler *ErrorHandler, log *logger.Logger, cfg *config.Config) SaibaClientService {
	authTimeout := time.Duration(cfg.Saiba.Timeout) * time.Second
	if authTimeout <= 0 {
		authTimeout = 30 * time.Second
	}
	syncTimeout := time.Duration(cfg.Saiba.SyncTimeout) * time.Second
	if syncTimeout <= 0 {
		syncTimeout = 60 * time.Second
	}

	return &saibaClientService{
		settingsRepo: settingsRepo,
		cache:        cache,
		clientPool:   NewHTTPClientPool(),
		errorHandler: errorHandler,
		logger:       log,
		saibaCfg:     cfg.Saiba,
		authTimeout:  authTimeout,
		syncTimeout:  syncTimeout,
	}
}

// GetToken returns a valid SAIBA bearer token, refreshing through /GetToken
// when the cached one is missing or about to expire
func (s *saibaClientService) GetToken(ctx context.Context) (string, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load reader settings: %w", err)
	}
	if !settings.SaibaEnabled {
		return "", ErrSaibaDisabled
	}
	if s.baseURL(settings) == "" {
		return "", ErrSaibaNotConfigured
	}

	now := time.Now()
	if s.cache != nil {
		var entry saibaTokenEntry
		if err := s.cache.Get(ctx, BuildSaibaTokenKey(), &entry); err == nil {
			if entry.Token != "" && entry.Expiry.After(now.Add(5*time.Minute)) {
				return entry.Token, nil
			}
		}
	}
	if settings.TokenIsValid(now) {
		s.cacheToken(ctx, settings.SaibaToken, *settings.SaibaTokenExpiry)
		return settings.SaibaToken, nil
	}

	return s.refreshToken(ctx)
}

// refreshToken authenticates against /GetToken and persists the new token
// with its expiry
func (s *saibaClientService) refreshToken(ctx context.Context) (string, error) {
	s.refreshMutex.Lock()
	defer s.refreshMutex.Unlock()

	// Another sync may have refreshed while this one waited on the lock
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load reader settings: %w", err)
	}
	if settings.TokenIsValid(time.Now()) {
		return settings.SaibaToken, nil
	}

	endpoint, err := s.buildURL(s.baseURL(settings), saibaTokenPath)
	if err != nil {
		return "", fmt.Errorf("invalid saiba base url: %w", err)
	}
	payload := map[string]string{
		"userName": s.username(settings),
		"password": s.password(settings),
	}

	var resp *SaibaResponse
	operation := func() error {
		r, err := s.execute(ctx, "saiba_auth", s.authTimeout, http.MethodPost, endpoint, "", payload)
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			return s.errorHandler.ClassifyError(
				fmt.Errorf("saiba token endpoint returned HTTP %d", r.StatusCode),
				map[string]interface{}{"status_code": r.StatusCode})
		}
		resp = r
		return nil
	}
	if err := s.errorHandler.ExecuteWithFullProtection(ctx, operation, "saiba_auth"); err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("saiba authentication failed: HTTP %d", resp.StatusCode)
	}
	token := extractSaibaToken(resp.Body)
	if token == "" {
		return "", fmt.Errorf("saiba authentication response did not include a token")
	}

	expiry := time.Now().Add(saibaTokenValidity)
	if err := s.settingsRepo.UpdateToken(ctx, token, &expiry); err != nil {
		s.logger.WithError(err).Warn("Failed to persist SAIBA token")
	}
	s.cacheToken(ctx, token, expiry)

	s.logger.WithField("expiry", expiry.Format(time.RFC3339)).Info("SAIBA token refreshed")
	return token, nil
}

// PostPolicy sends a policy payload to a SAIBA entry endpoint. A 401 or 403
// response invalidates the stored token, refreshes it and retries the post
// once.
func (s *saibaClientService) PostPolicy(ctx context.Context, path string, payload map[string]interface{}) (*SaibaResponse, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.postOnce(ctx, path, token, payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		s.logger.WithField("status", resp.StatusCode).Info("SAIBA rejected token, refreshing and retrying once")
		if err := s.InvalidateToken(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate SAIBA token")
		}
		token, err = s.GetToken(ctx)
		if err != nil {
			return nil, err
		}
		return s.postOnce(ctx, path, token, payload)
	}
	return resp, nil
}

func (s *saibaClientService) postOnce(ctx context.Context, path, token string, payload map[string]interface{}) (*SaibaResponse, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reader settings: %w", err)
	}
	endpoint, err := s.buildURL(s.baseURL(settings), path)
	if err != nil {
		return nil, fmt.Errorf("invalid saiba base url: %w", err)
	}

	var resp *SaibaResponse
	operation := func() error {
		r, err := s.execute(ctx, "saiba_sync", s.syncTimeout, http.MethodPost, endpoint, token, payload)
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			return s.errorHandler.ClassifyError(
				fmt.Errorf("saiba entry endpoint returned HTTP %d", r.StatusCode),
				map[string]interface{}{"status_code": r.StatusCode})
		}
		resp = r
		return nil
	}
	if err := s.errorHandler.ExecuteWithFullProtection(ctx, operation, "saiba_sync"); err != nil {
		return nil, err
	}
	return resp, nil
}

// TestConnection verifies the SAIBA connection by acquiring a token
func (s *saibaClientService) TestConnection(ctx context.Context) error {
	if _, err := s.GetToken(ctx); err != nil {
		return err
	}
	return nil
}

// InvalidateToken clears the stored token so the next call authenticates
// from scratch
func (s *saibaClientService) InvalidateToken(ctx context.Context) error {
	if err := s.settingsRepo.UpdateToken(ctx, "", nil); err != nil {
		return fmt.Errorf("failed to clear SAIBA token: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateByTag(ctx, TagSaiba); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate SAIBA cache entries")
		}
	}
	return nil
}

// execute performs one HTTP round trip and decodes the response body
func (s *saibaClientService) execute(ctx context.Context, clientName string, timeout time.Duration, method, endpoint, token string, payload interface{}) (*SaibaResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := s.clientPool.GetClient(clientName, timeout)
	httpResp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("saiba request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read saiba response: %w", err)
	}

	resp := &SaibaResponse{
		StatusCode: httpResp.StatusCode,
		Raw:        string(raw),
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		resp.Body = decoded
	}
	return resp, nil
}

func (s *saibaClientService) cacheToken(ctx context.Context, token string, expiry time.Time) {
	if s.cache == nil {
		return
	}
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return
	}
	entry := saibaTokenEntry{Token: token, Expiry: expiry}
	if err := s.cache.SetWithTags(ctx, BuildSaibaTokenKey(), entry, ttl, []string{TagSaiba}); err != nil {
		s.logger.WithError(err).Warn("Failed to cache SAIBA token")
	}
}

func (s *saibaClientService) buildURL(base, path string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// Connection parameters come from the settings row, falling back to the
// bootstrap configuration

func (s *saibaClientService) baseURL(settings *models.ReaderSettings) string {
	if settings.SaibaBaseURL != "" {
		return settings.SaibaBaseURL
	}
	return s.saibaCfg.BaseURL
}

func (s *saibaClientService) username(settings *models.ReaderSettings) string {
	if settings.SaibaUsername != "" {
		return settings.SaibaUsername
	}
	return s.saibaCfg.Username
}

func (s *saibaClientService) password(settings *models.ReaderSettings) string {
	if settings.SaibaPassword != "" {
		return settings.SaibaPassword
	}
	return s.saibaCfg.Password
}

// extractSaibaToken pulls the bearer token out of a /GetToken response body.
// Different SAIBA deployments use different key spellings.
func extractSaibaToken(body map[string]interface{}) string {
	for _, key := range []string{"token", "access_token", "Token"} {
		if v, ok := body[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
