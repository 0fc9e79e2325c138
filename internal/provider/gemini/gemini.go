package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"postauto/internal/entity"
	"postauto/pkg/artifacts"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	imageModel     = "gemini-2.0-flash-preview-image-generation"
)

type CredentialsSource interface {
	GetGeminiConfig() (*entity.GeminiConfig, error)
}

type RateLimiter interface {
	CheckImageLimit(images int) error
	RecordUsage(usageType entity.UsageType, count int, metadata map[string]interface{})
}

// Service renders image prompts through the Gemini image generation API
// and stores the resulting PNGs in the artifact store.
type Service struct {
	creds      CredentialsSource
	limiter    RateLimiter
	store      artifacts.Store
	httpClient *http.Client
	baseURL    string
	delay      time.Duration
}

// NewService builds the image provider. delay spaces consecutive generation
// calls to stay under the provider's burst limits.
func NewService(creds CredentialsSource, limiter RateLimiter, store artifacts.Store, timeout, delay time.Duration) *Service {
	return &Service{
		creds:      creds,
		limiter:    limiter,
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		delay:      delay,
	}
}

// GeneratedImage is one stored rendering.
type GeneratedImage struct {
	Ref      string
	Filename string
	Prompt   string
}

type contentPart struct {
	Text string `json:"text"`
}

type requestContent struct {
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateImages renders every prompt in order, pacing calls with the
// configured delay. The image limit covers the whole batch and is checked
// before the first call, so a batch either fits the remaining window or
// costs nothing. Any mid-batch failure aborts the batch; only completed
// renderings are recorded as usage.
func (s *Service) GenerateImages(ctx context.Context, prompts []string) ([]GeneratedImage, error) {
	cfg, err := s.creds.GetGeminiConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &entity.NotConfiguredError{Service: "Gemini"}
	}

	if err := s.limiter.CheckImageLimit(len(prompts)); err != nil {
		return nil, err
	}

	images := make([]GeneratedImage, 0, len(prompts))
	for i, prompt := range prompts {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		img, err := s.generateOne(ctx, cfg, prompt)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
		s.limiter.RecordUsage(entity.UsageImageGeneration, 1, map[string]interface{}{"prompt": prompt})
	}

	return images, nil
}

// TestConnection verifies the stored key by listing models.
func (s *Service) TestConnection(ctx context.Context) error {
	cfg, err := s.creds.GetGeminiConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		return &entity.NotConfiguredError{Service: "Gemini"}
	}

	url := fmt.Sprintf("%s/models?key=%s&pageSize=1", s.baseURL, cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &entity.ProviderError{Provider: "Gemini", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &entity.ProviderError{Provider: "Gemini", Message: fmt.Sprintf("request failed with status %d", resp.StatusCode)}
	}
	return nil
}

func (s *Service) generateOne(ctx context.Context, cfg *entity.GeminiConfig, prompt string) (*GeneratedImage, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []requestContent{
			{Parts: []contentPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, imageModel, cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &entity.ProviderError{Provider: "Gemini", Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &entity.ProviderError{Provider: "Gemini", Err: err}
	}

	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &entity.ProviderError{
			Provider: "Gemini",
			Message:  fmt.Sprintf("unexpected response (status %d)", httpResp.StatusCode),
			Err:      err,
		}
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, &entity.ProviderError{Provider: "Gemini", Message: "rate limited by provider, retry later"}
	}
	if httpResp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("request failed with status %d", httpResp.StatusCode)
		if resp.Error != nil && resp.Error.Message != "" {
			message = resp.Error.Message
		}
		return nil, &entity.ProviderError{Provider: "Gemini", Message: message}
	}

	data, err := extractImageData(&resp)
	if err != nil {
		return nil, err
	}

	filename := uuid.New().String() + ".png"
	ref, err := s.store.Save(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store generated image: %w", err)
	}

	return &GeneratedImage{Ref: ref, Filename: filename, Prompt: prompt}, nil
}

func extractImageData(resp *generateResponse) ([]byte, error) {
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, &entity.ProviderError{Provider: "Gemini", Message: "invalid image payload", Err: err}
			}
			return data, nil
		}
	}
	return nil, &entity.ProviderError{Provider: "Gemini", Message: "response contained no image data"}
}
