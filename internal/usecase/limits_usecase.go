package usecase

import (
	"time"

	"postauto/internal/entity"
	"postauto/internal/repo/persistent"
	"postauto/pkg/logger"
)

const (
	requestWindow = time.Hour
	tokenWindow   = time.Hour
	postWindow    = time.Hour
	imageWindow   = 24 * time.Hour
)

type LimitsUseCase interface {
	GetLimits() (*entity.Limits, error)
	UpdateLimits(update entity.LimitsUpdate) (*entity.Limits, error)
	RecordUsage(usageType entity.UsageType, count int, metadata map[string]interface{})
	CheckRequestLimit() error
	CheckTokenLimit(tokens int) error
	CheckImageLimit(images int) error
	CheckPostLimit() error
	GetUsageStats() (*entity.UsageStats, error)
}

type limitsUseCase struct {
	limitsRepo persistent.LimitsRepository
	usageRepo  persistent.UsageRepository
	logger     *logger.Logger
	now        func() time.Time
}

func NewLimitsUseCase(limitsRepo persistent.LimitsRepository, usageRepo persistent.UsageRepository, log *logger.Logger) LimitsUseCase {
	return &limitsUseCase{
		limitsRepo: limitsRepo,
		usageRepo:  usageRepo,
		logger:     log,
		now:        time.Now,
	}
}

// GetLimits returns the singleton limits row, creating defaults on first use.
func (uc *limitsUseCase) GetLimits() (*entity.Limits, error) {
	limits, err := uc.limitsRepo.Get()
	if err == nil {
		return limits, nil
	}
	if !entity.IsNotFound(err) {
		return nil, err
	}

	limits = &entity.Limits{
		RequestsPerHour: 10,
		TokensPerHour:   50000,
		ImagesPerDay:    50,
		PostsPerHour:    5,
		CooldownSeconds: 60,
	}
	if err := uc.limitsRepo.Save(limits); err != nil {
		return nil, err
	}
	return limits, nil
}

func (uc *limitsUseCase) UpdateLimits(update entity.LimitsUpdate) (*entity.Limits, error) {
	limits, err := uc.GetLimits()
	if err != nil {
		return nil, err
	}

	if update.RequestsPerHour != nil {
		limits.RequestsPerHour = *update.RequestsPerHour
	}
	if update.TokensPerHour != nil {
		limits.TokensPerHour = *update.TokensPerHour
	}
	if update.ImagesPerDay != nil {
		limits.ImagesPerDay = *update.ImagesPerDay
	}
	if update.PostsPerHour != nil {
		limits.PostsPerHour = *update.PostsPerHour
	}
	if update.CooldownSeconds != nil {
		limits.CooldownSeconds = *update.CooldownSeconds
	}

	if err := uc.limitsRepo.Save(limits); err != nil {
		return nil, err
	}
	return limits, nil
}

// RecordUsage appends a ledger entry. It is best-effort bookkeeping and
// never fails the caller; it must only be invoked after the corresponding
// external call has succeeded.
func (uc *limitsUseCase) RecordUsage(usageType entity.UsageType, count int, metadata map[string]interface{}) {
	usage := &entity.Usage{
		Type:     usageType,
		Count:    count,
		Metadata: metadata,
	}
	if err := uc.usageRepo.Create(usage); err != nil {
		uc.logger.Warn("Failed to record %s usage: %v", usageType, err)
	}
}

func (uc *limitsUseCase) usageInWindow(usageType entity.UsageType, window time.Duration) (int, error) {
	return uc.usageRepo.SumSince(usageType, uc.now().Add(-window))
}

// CheckRequestLimit gates a content-generation call pre-flight.
func (uc *limitsUseCase) CheckRequestLimit() error {
	limits, err := uc.GetLimits()
	if err != nil {
		return err
	}
	used, err := uc.usageInWindow(entity.UsageAIRequest, requestWindow)
	if err != nil {
		return err
	}
	if used >= limits.RequestsPerHour {
		return &entity.LimitExceededError{Kind: "requests per hour", Threshold: limits.RequestsPerHour}
	}
	return nil
}

// CheckTokenLimit is evaluated with the actual token count returned by the
// provider, after the call has already happened. One over-limit call per
// window is the accepted cost of not knowing token cost in advance.
func (uc *limitsUseCase) CheckTokenLimit(tokens int) error {
	limits, err := uc.GetLimits()
	if err != nil {
		return err
	}
	used, err := uc.usageInWindow(entity.UsageAITokens, tokenWindow)
	if err != nil {
		return err
	}
	if used+tokens > limits.TokensPerHour {
		return &entity.LimitExceededError{Kind: "tokens per hour", Threshold: limits.TokensPerHour}
	}
	return nil
}

func (uc *limitsUseCase) CheckImageLimit(images int) error {
	limits, err := uc.GetLimits()
	if err != nil {
		return err
	}
	used, err := uc.usageInWindow(entity.UsageImageGeneration, imageWindow)
	if err != nil {
		return err
	}
	if used+images > limits.ImagesPerDay {
		return &entity.LimitExceededError{Kind: "images per day", Threshold: limits.ImagesPerDay}
	}
	return nil
}

func (uc *limitsUseCase) CheckPostLimit() error {
	limits, err := uc.GetLimits()
	if err != nil {
		return err
	}
	used, err := uc.usageInWindow(entity.UsagePostCreation, postWindow)
	if err != nil {
		return err
	}
	if used >= limits.PostsPerHour {
		return &entity.LimitExceededError{Kind: "posts per hour", Threshold: limits.PostsPerHour}
	}
	return nil
}

func (uc *limitsUseCase) GetUsageStats() (*entity.UsageStats, error) {
	limits, err := uc.GetLimits()
	if err != nil {
		return nil, err
	}

	requests, err := uc.usageInWindow(entity.UsageAIRequest, requestWindow)
	if err != nil {
		return nil, err
	}
	tokens, err := uc.usageInWindow(entity.UsageAITokens, tokenWindow)
	if err != nil {
		return nil, err
	}
	images, err := uc.usageInWindow(entity.UsageImageGeneration, imageWindow)
	if err != nil {
		return nil, err
	}
	posts, err := uc.usageInWindow(entity.UsagePostCreation, postWindow)
	if err != nil {
		return nil, err
	}

	return &entity.UsageStats{
		RequestsLastHour: requests,
		TokensLastHour:   tokens,
		ImagesLastDay:    images,
		PostsLastHour:    posts,
		Limits:           limits,
	}, nil
}
