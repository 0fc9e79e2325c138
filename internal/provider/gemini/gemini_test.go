package gemini

import (
	"context"
	"testing"
	"time"

	"postauto/internal/entity"

	"github.com/stretchr/testify/assert"
)

type stubCreds struct {
	cfg *entity.GeminiConfig
}

func (s *stubCreds) GetGeminiConfig() (*entity.GeminiConfig, error) {
	return s.cfg, nil
}

type stubLimiter struct {
	checkErr error
	recorded int
}

func (s *stubLimiter) CheckImageLimit(images int) error {
	return s.checkErr
}

func (s *stubLimiter) RecordUsage(usageType entity.UsageType, count int, metadata map[string]interface{}) {
	s.recorded += count
}

type stubStore struct{}

func (stubStore) Save(filename string, data []byte) (string, error) { return filename, nil }
func (stubStore) Read(ref string) ([]byte, error)                   { return nil, nil }

func TestGenerateImagesNotConfigured(t *testing.T) {
	limiter := &stubLimiter{}
	svc := NewService(&stubCreds{cfg: nil}, limiter, stubStore{}, time.Second, 0)

	_, err := svc.GenerateImages(context.Background(), []string{"a"})

	assert.Error(t, err)
	assert.True(t, entity.IsNotConfigured(err))
	assert.Zero(t, limiter.recorded)
}

func TestGenerateImagesBatchLimitCheckedBeforeAnyCall(t *testing.T) {
	limiter := &stubLimiter{checkErr: &entity.LimitExceededError{Kind: "images per day", Threshold: 5}}
	svc := NewService(&stubCreds{cfg: &entity.GeminiConfig{APIKey: "k"}}, limiter, stubStore{}, time.Second, 0)

	_, err := svc.GenerateImages(context.Background(), []string{"a", "b", "c"})

	assert.Error(t, err)
	assert.True(t, entity.IsLimitExceeded(err))
	assert.Zero(t, limiter.recorded, "a rejected batch must cost nothing")
}

func TestExtractImageDataMissing(t *testing.T) {
	_, err := extractImageData(&generateResponse{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no image data")
}
