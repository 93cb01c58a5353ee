package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// ErrClaudeNotConfigured is returned when no API key is available from
// settings or config
var ErrClaudeNotConfigured = fmt.Errorf("claude api key is not configured")

// Recovery patterns for model responses that wrap the JSON payload in
// markdown fences or prose
var (
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	braceJSONPattern  = regexp.MustCompile(`(?s)(\{.*\})`)
)

// ExtractionResult carries the outcome of one extraction call
type ExtractionResult struct {
	Fields     map[string]interface{} `json:"fields"`
	TokensUsed int                    `json:"tokens_used"`
	Model      string                 `json:"model"`
}

// Anthropic Messages API shapes
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string        `json:"role"`
	Content []claudeBlock `json:"content"`
}

type claudeBlock struct {
	Type   string            `json:"type"`
	Text   string            `json:"text,omitempty"`
	Source *claudeFileSource `json:"source,omitempty"`
}

type claudeFileSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
}

type claudeExtractionService struct {
	settingsRepo  repositories.SettingsRepository
	promptBuilder PromptBuilderService
	clientPool    *HTTPClientPool
	errorHandler  *ErrorHandler
	logger        *logger.Logger
	claudeCfg     config.ClaudeConfig
}

// NewClaudeExtractionService creates an extraction service backed by the
// Anthropic Messages API
func NewClaudeExtractionService(settingsRepo repositories.SettingsRepository, promptBuilder PromptBuilderService, errorHandler *ErrorHandler, log *logger.Logger, cfg *config.Config) ExtractionService {
	return &claudeExtractionService{
		settingsRepo:  settingsRepo,
		promptBuilder: promptBuilder,
		clientPool:    NewHTTPClientPool(),
		errorHandler:  errorHandler,
		logger:        log,
		claudeCfg:     cfg.Claude,
	}
}

// ExtractFields sends the PDF to the model as a base64 document block and
// parses the flat JSON field map out of its reply. Settings-level API key,
// model, and timeout override the config values when present.
func (s *claudeExtractionService) ExtractFields(ctx context.Context, pdfPath, policyType string) (*ExtractionResult, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	apiKey := settings.ClaudeAPIKey
	if apiKey == "" {
		apiKey = s.claudeCfg.APIKey
	}
	if apiKey == "" {
		return nil, ErrClaudeNotConfigured
	}

	model := settings.ClaudeModel
	if model == "" {
		model = s.claudeCfg.Model
	}

	timeoutSecs := settings.ExtractionTimeout
	if timeoutSecs <= 0 {
		timeoutSecs = s.claudeCfg.Timeout
	}

	maxTokens := s.claudeCfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy document: %w", err)
	}

	prompt := s.promptBuilder.BuildVisionPrompt(ctx, policyType)

	body, err := json.Marshal(claudeRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []claudeMessage{
			{
				Role: "user",
				Content: []claudeBlock{
					{
						Type: "document",
						Source: &claudeFileSource{
							Type:      "base64",
							MediaType: "application/pdf",
							Data:      base64.StdEncoding.EncodeToString(pdfData),
						},
					},
					{Type: "text", Text: prompt},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claude request: %w", err)
	}

	client := s.clientPool.GetClient("claude", time.Duration(timeoutSecs)*time.Second)

	var apiResp claudeResponse
	start := time.Now()

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.claudeCfg.BaseURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build claude request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", apiKey)
		req.Header.Set("anthropic-version", s.claudeCfg.Version)

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("claude request failed: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read claude response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return s.errorHandler.ClassifyError(
				fmt.Errorf("claude API returned HTTP %d: %s", resp.StatusCode, responseSnippet(raw)),
				map[string]interface{}{
					"status_code": resp.StatusCode,
					"operation":   "claude_extraction",
				},
			)
		}

		if err := json.Unmarshal(raw, &apiResp); err != nil {
			return fmt.Errorf("failed to decode claude response: %w", err)
		}
		return nil
	}

	if err := s.errorHandler.ExecuteWithFullProtection(ctx, operation, "claude_extraction"); err != nil {
		return nil, err
	}

	var text string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	result := &ExtractionResult{
		Fields:     parseExtractedJSON(text),
		TokensUsed: apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
		Model:      apiResp.Model,
	}
	if result.Model == "" {
		result.Model = model
	}

	s.logger.WithPolicyType(policyType).
		WithField("fields", len(result.Fields)).
		WithField("tokens_used", result.TokensUsed).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Extraction completed")

	return result, nil
}

// parseExtractedJSON recovers the field map from a model reply. The prompt
// asks for bare JSON but replies sometimes arrive fenced or wrapped in
// prose, so recovery runs in three stages: direct parse, fenced block,
// first brace to last brace. A reply with no recoverable JSON yields an
// empty map, not an error.
func parseExtractedJSON(text string) map[string]interface{} {
	trimmed := strings.TrimSpace(text)

	fields := make(map[string]interface{})
	if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
		return fields
	}

	if match := fencedJSONPattern.FindStringSubmatch(trimmed); match != nil {
		fields = make(map[string]interface{})
		if err := json.Unmarshal([]byte(match[1]), &fields); err == nil {
			return fields
		}
	}

	if match := braceJSONPattern.FindStringSubmatch(trimmed); match != nil {
		fields = make(map[string]interface{})
		if err := json.Unmarshal([]byte(match[1]), &fields); err == nil {
			return fields
		}
	}

	return map[string]interface{}{}
}

// responseSnippet bounds an upstream body for error messages
func responseSnippet(raw []byte) string {
	const limit = 500
	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
