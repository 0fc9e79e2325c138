package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"postauto/internal/entity"
)

const (
	defaultBaseURL = "https://api.deepseek.com"
	temperature    = 0.7
	maxTokens      = 4000
)

// CredentialsSource yields the provider configuration, or nil when the
// keys are not set yet.
type CredentialsSource interface {
	GetDeepSeekConfig() (*entity.DeepSeekConfig, error)
}

// RateLimiter gates and records provider consumption.
type RateLimiter interface {
	CheckRequestLimit() error
	CheckTokenLimit(tokens int) error
	RecordUsage(usageType entity.UsageType, count int, metadata map[string]interface{})
}

// Service drives article drafting through the DeepSeek chat completions API.
type Service struct {
	creds      CredentialsSource
	limiter    RateLimiter
	httpClient *http.Client
	baseURL    string
}

func NewService(creds CredentialsSource, limiter RateLimiter, timeout time.Duration) *Service {
	return &Service{
		creds:      creds,
		limiter:    limiter,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = "You are an editorial writing assistant. " +
	"Follow the requested output format exactly, including all section markers."

// GenerateContent drafts an article for the given prompt. The request limit
// is checked before the call; the token limit can only be checked after,
// with the actual count the provider reports, so a single draft may overrun
// the token window before the limiter closes it.
func (s *Service) GenerateContent(ctx context.Context, prompt string) (*GeneratedContent, error) {
	cfg, err := s.creds.GetDeepSeekConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &entity.NotConfiguredError{Service: "DeepSeek"}
	}

	if err := s.limiter.CheckRequestLimit(); err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, cfg, prompt, maxTokens)
	if err != nil {
		return nil, err
	}

	tokens := resp.Usage.TotalTokens
	tokenErr := s.limiter.CheckTokenLimit(tokens)

	s.limiter.RecordUsage(entity.UsageAIRequest, 1, map[string]interface{}{"model": cfg.Model})
	if tokens > 0 {
		s.limiter.RecordUsage(entity.UsageAITokens, tokens, map[string]interface{}{"model": cfg.Model})
	}

	if tokenErr != nil {
		return nil, tokenErr
	}

	if len(resp.Choices) == 0 {
		return nil, &entity.ProviderError{Provider: "DeepSeek", Message: "empty completion response"}
	}

	content := Parse(resp.Choices[0].Message.Content)
	content.TokensUsed = tokens
	return content, nil
}

// TestConnection issues a minimal completion to verify the stored key.
func (s *Service) TestConnection(ctx context.Context) error {
	cfg, err := s.creds.GetDeepSeekConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		return &entity.NotConfiguredError{Service: "DeepSeek"}
	}
	_, err = s.complete(ctx, cfg, "Reply with the single word: ok", 5)
	return err
}

func (s *Service) complete(ctx context.Context, cfg *entity.DeepSeekConfig, prompt string, maxCompletionTokens int) (*chatResponse, error) {
	body, err := json.Marshal(chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxCompletionTokens,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	httpResp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &entity.ProviderError{Provider: "DeepSeek", Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &entity.ProviderError{Provider: "DeepSeek", Err: err}
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &entity.ProviderError{
			Provider: "DeepSeek",
			Message:  fmt.Sprintf("unexpected response (status %d)", httpResp.StatusCode),
			Err:      err,
		}
	}

	if httpResp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("request failed with status %d", httpResp.StatusCode)
		if resp.Error != nil && resp.Error.Message != "" {
			message = resp.Error.Message
		}
		return nil, &entity.ProviderError{Provider: "DeepSeek", Message: message}
	}

	return &resp, nil
}
