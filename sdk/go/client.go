// Package salasar provides a Go client SDK for the Salasar policy reader API
package salasar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client represents the policy reader API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	version    string
}

// ClientOption represents a client configuration option
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithToken sets the authentication token
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithVersion sets the API version
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.version = version
	}
}

// NewClient creates a new policy reader client
func NewClient(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		version: "v1",
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// User represents a system user
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse carries the JWT and the authenticated user
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Document represents an uploaded policy PDF and its extraction state
type Document struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	PolicyFile      string                 `json:"policy_file"`
	PolicyType      string                 `json:"policy_type,omitempty"`
	Status          string                 `json:"status"`
	ExtractedFields map[string]interface{} `json:"extracted_fields,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
	ProcessingTime  float64                `json:"processing_time,omitempty"`
	TokensUsed      int                    `json:"tokens_used,omitempty"`
	RetryCount      int                    `json:"retry_count"`

	CustomerCode           int    `json:"customer_code,omitempty"`
	CustomerName           string `json:"customer_name,omitempty"`
	CustomerGroupName      string `json:"customer_group_name,omitempty"`
	InsuranceCompanyBranch string `json:"insurance_company_branch,omitempty"`
	InsurerName            string `json:"insurer_name,omitempty"`
	InsurerCity            string `json:"insurer_city,omitempty"`
	InsurerBranch          string `json:"insurer_branch,omitempty"`
	InsurerBranchCode      int    `json:"insurer_branch_code,omitempty"`

	MotorPolicyID  *string   `json:"motor_policy_id,omitempty"`
	HealthPolicyID *string   `json:"health_policy_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DocumentUpload represents a policy PDF upload with its operator-entered
// customer and insurer details
type DocumentUpload struct {
	Title    string
	FileName string
	File     io.Reader

	PolicyType             string
	CustomerCode           int
	CustomerName           string
	CustomerGroupName      string
	InsuranceCompanyBranch string
	InsurerName            string
	InsurerCity            string
	InsurerBranch          string
	InsurerBranchCode      int
}

// DocumentStatus represents the extraction progress of a document
type DocumentStatus struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	RetryCount     int     `json:"retry_count"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
	TokensUsed     int     `json:"tokens_used,omitempty"`
	FieldCount     int     `json:"field_count"`
	HasPolicy      bool    `json:"has_policy"`
}

// PolicyCreationResult reports the outcome of creating a policy from a document
type PolicyCreationResult struct {
	PolicyType       string              `json:"policy_type"`
	PolicyID         string              `json:"policy_id"`
	MappedCount      int                 `json:"mapped_count"`
	UnmappedFields   []string            `json:"unmapped_fields,omitempty"`
	Suggestions      map[string][]string `json:"suggestions,omitempty"`
	ProtectedSkipped []string            `json:"protected_skipped,omitempty"`
}

// SyncResult reports the outcome of a SAIBA sync attempt
type SyncResult struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	ControlNumber string `json:"control_number,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

// FieldValidation represents one evaluated field in a validation report
type FieldValidation struct {
	SaibaField     string `json:"saiba_field"`
	PolicyField    string `json:"policy_field"`
	Label          string `json:"label"`
	ValidationType string `json:"validation_type"`
	Value          string `json:"value"`
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason,omitempty"`
}

// CategoryReport groups evaluated fields under a display category
type CategoryReport struct {
	Category string            `json:"category"`
	Fields   []FieldValidation `json:"fields"`
}

// ValidationSummary totals a validation report
type ValidationSummary struct {
	TotalRequired int  `json:"total_required"`
	Valid         int  `json:"valid"`
	Invalid       int  `json:"invalid"`
	ReadyToSync   bool `json:"ready_to_sync"`
}

// ValidationReport is the SAIBA readiness report for one policy
type ValidationReport struct {
	PolicyType string            `json:"policy_type"`
	PolicyID   string            `json:"policy_id"`
	Categories []CategoryReport  `json:"categories"`
	Summary    ValidationSummary `json:"summary"`
}

// ValidationRule represents a readiness rule for one SAIBA field
type ValidationRule struct {
	ID             string    `json:"id"`
	PolicyType     string    `json:"policy_type"`
	SaibaField     string    `json:"saiba_field"`
	PolicyField    string    `json:"policy_field"`
	Label          string    `json:"label"`
	Category       string    `json:"category"`
	ValidationType string    `json:"validation_type"`
	IsRequired     bool      `json:"is_required"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Error represents an API error response
type Error struct {
	Message   string    `json:"error"`
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// Authentication Methods

// Login authenticates a user and stores the returned token on the client
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	payload := map[string]string{"username": username, "password": password}

	var result LoginResponse
	if err := c.makeRequest(ctx, "POST", "/auth/login", payload, &result); err != nil {
		return nil, err
	}

	c.token = result.Token
	return &result, nil
}

// Me retrieves the authenticated user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var result User
	err := c.makeRequest(ctx, "GET", "/auth/me", nil, &result)
	return &result, err
}

// Document Methods

// UploadDocument uploads a policy PDF together with its customer details
func (c *Client) UploadDocument(ctx context.Context, upload *DocumentUpload) (*Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", upload.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, upload.File); err != nil {
		return nil, fmt.Errorf("failed to copy file contents: %w", err)
	}

	writer.WriteField("title", upload.Title)
	writer.WriteField("policy_type", upload.PolicyType)
	if upload.CustomerCode != 0 {
		writer.WriteField("customer_code", strconv.Itoa(upload.CustomerCode))
	}
	writer.WriteField("customer_name", upload.CustomerName)
	writer.WriteField("customer_group_name", upload.CustomerGroupName)
	writer.WriteField("insurance_company_branch", upload.InsuranceCompanyBranch)
	writer.WriteField("insurer_name", upload.InsurerName)
	writer.WriteField("insurer_city", upload.InsurerCity)
	writer.WriteField("insurer_branch", upload.InsurerBranch)
	if upload.InsurerBranchCode != 0 {
		writer.WriteField("insurer_branch_code", strconv.Itoa(upload.InsurerBranchCode))
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/%s/documents", c.baseURL, c.version)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result Document
	if err := c.doRequest(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDocuments retrieves uploaded documents with pagination
func (c *Client) GetDocuments(ctx context.Context, opts *ListOptions) ([]*Document, error) {
	var result struct {
		Documents []*Document `json:"documents"`
	}

	path := "/documents" + listQuery(opts)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result.Documents, err
}

// GetDocument retrieves a specific document
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var result Document
	path := fmt.Sprintf("/documents/%s", id)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return &result, err
}

// GetDocumentStatus retrieves the extraction progress of a document
func (c *Client) GetDocumentStatus(ctx context.Context, id string) (*DocumentStatus, error) {
	var result DocumentStatus
	path := fmt.Sprintf("/documents/%s/status", id)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return &result, err
}

// QueueDocument queues a document for AI extraction
func (c *Client) QueueDocument(ctx context.Context, id string) error {
	path := fmt.Sprintf("/documents/%s/queue", id)
	return c.makeRequest(ctx, "POST", path, nil, nil)
}

// RetryDocument re-queues a failed document for another extraction attempt
func (c *Client) RetryDocument(ctx context.Context, id string) error {
	path := fmt.Sprintf("/documents/%s/retry", id)
	return c.makeRequest(ctx, "POST", path, nil, nil)
}

// DeleteDocument deletes a document
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	path := fmt.Sprintf("/documents/%s", id)
	return c.makeRequest(ctx, "DELETE", path, nil, nil)
}

// Policy Methods

// CreatePolicy creates a policy from a completed document's extracted fields
func (c *Client) CreatePolicy(ctx context.Context, documentID string) (*PolicyCreationResult, error) {
	var result PolicyCreationResult
	path := fmt.Sprintf("/documents/%s/policy", documentID)
	err := c.makeRequest(ctx, "POST", path, nil, &result)
	return &result, err
}

// GetMotorPolicy retrieves a motor policy
func (c *Client) GetMotorPolicy(ctx context.Context, id string) (map[string]interface{}, error) {
	var result map[string]interface{}
	path := fmt.Sprintf("/policies/motor/%s", id)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result, err
}

// GetHealthPolicy retrieves a health policy
func (c *Client) GetHealthPolicy(ctx context.Context, id string) (map[string]interface{}, error) {
	var result map[string]interface{}
	path := fmt.Sprintf("/policies/health/%s", id)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result, err
}

// UpdateMotorPolicy applies field edits to a motor policy
func (c *Client) UpdateMotorPolicy(ctx context.Context, id string, fields map[string]interface{}) (map[string]interface{}, error) {
	var result map[string]interface{}
	path := fmt.Sprintf("/policies/motor/%s", id)
	err := c.makeRequest(ctx, "PATCH", path, fields, &result)
	return result, err
}

// UpdateHealthPolicy applies field edits to a health policy
func (c *Client) UpdateHealthPolicy(ctx context.Context, id string, fields map[string]interface{}) (map[string]interface{}, error) {
	var result map[string]interface{}
	path := fmt.Sprintf("/policies/health/%s", id)
	err := c.makeRequest(ctx, "PATCH", path, fields, &result)
	return result, err
}

// Sync Methods

// SyncPolicy pushes a policy to SAIBA. A rejected push is reported through
// the result's Success flag rather than an error.
func (c *Client) SyncPolicy(ctx context.Context, policyType, policyID string) (*SyncResult, error) {
	path := fmt.Sprintf("/sync/%s/%s", policyType, policyID)
	endpoint := fmt.Sprintf("%s/api/%s%s", c.baseURL, c.version, path)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// A failed sync comes back as 502 with the outcome report in the body
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusBadGateway {
		var result SyncResult
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return &result, nil
	}

	var apiErr Error
	if err := json.Unmarshal(respBody, &apiErr); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return nil, &apiErr
}

// TestSaibaConnection verifies the configured SAIBA credentials
func (c *Client) TestSaibaConnection(ctx context.Context) (map[string]interface{}, error) {
	var result map[string]interface{}
	err := c.makeRequest(ctx, "POST", "/sync/test", nil, &result)
	return result, err
}

// RetryFailedSyncs re-queues failed policies for background sync
func (c *Client) RetryFailedSyncs(ctx context.Context, policyType string) (map[string]interface{}, error) {
	path := "/sync/retry-failed"
	if policyType != "" {
		path += "?policy_type=" + url.QueryEscape(policyType)
	}

	var result map[string]interface{}
	err := c.makeRequest(ctx, "POST", path, nil, &result)
	return result, err
}

// Validation Methods

// ValidatePolicy retrieves the SAIBA readiness report for a policy
func (c *Client) ValidatePolicy(ctx context.Context, policyType, policyID string) (*ValidationReport, error) {
	var result ValidationReport
	path := fmt.Sprintf("/validation/%s/%s", policyType, policyID)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return &result, err
}

// GetValidationRules retrieves the validation rules for a policy type
func (c *Client) GetValidationRules(ctx context.Context, policyType string) ([]*ValidationRule, error) {
	var result struct {
		Rules []*ValidationRule `json:"rules"`
	}

	path := fmt.Sprintf("/validation-rules/%s", policyType)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result.Rules, err
}

// Alias Methods

// GetAliases retrieves the alias map for a policy type
func (c *Client) GetAliases(ctx context.Context, policyType string) (map[string]string, error) {
	var result struct {
		Aliases map[string]string `json:"aliases"`
	}

	path := fmt.Sprintf("/aliases/%s", policyType)
	err := c.makeRequest(ctx, "GET", path, nil, &result)
	return result.Aliases, err
}

// AddAlias registers an extraction alias for a canonical field
func (c *Client) AddAlias(ctx context.Context, policyType, alias, canonical string) error {
	payload := map[string]string{"alias": alias, "canonical": canonical}
	path := fmt.Sprintf("/aliases/%s", policyType)
	return c.makeRequest(ctx, "POST", path, payload, nil)
}

// Pagination support

// ListOptions represents options for list operations
type ListOptions struct {
	Limit  int
	Offset int
}

func listQuery(opts *ListOptions) string {
	if opts == nil {
		return ""
	}

	params := url.Values{}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// Private helper methods

func (c *Client) makeRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	endpoint := fmt.Sprintf("%s/api/%s%s", c.baseURL, c.version, path)

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req, result)
}

func (c *Client) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr Error
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Message == "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		return &apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
