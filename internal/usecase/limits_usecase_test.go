package usecase

import (
	"testing"
	"time"

	"postauto/internal/entity"
	"postauto/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type fakeLimitsRepo struct {
	limits *entity.Limits
}

func (f *fakeLimitsRepo) Get() (*entity.Limits, error) {
	if f.limits == nil {
		return nil, &entity.NotFoundError{Resource: "limits"}
	}
	return f.limits, nil
}

func (f *fakeLimitsRepo) Save(limits *entity.Limits) error {
	f.limits = limits
	return nil
}

type usageEntry struct {
	usageType entity.UsageType
	count     int
	at        time.Time
}

type fakeUsageRepo struct {
	entries []usageEntry
	clock   func() time.Time
}

func (f *fakeUsageRepo) Create(usage *entity.Usage) error {
	f.entries = append(f.entries, usageEntry{usageType: usage.Type, count: usage.Count, at: f.clock()})
	return nil
}

func (f *fakeUsageRepo) SumSince(usageType entity.UsageType, since time.Time) (int, error) {
	total := 0
	for _, e := range f.entries {
		if e.usageType == usageType && e.at.After(since) {
			total += e.count
		}
	}
	return total, nil
}

type limitsFixture struct {
	uc    *limitsUseCase
	usage *fakeUsageRepo
	now   time.Time
}

func newLimitsFixture(t *testing.T, limits *entity.Limits) *limitsFixture {
	t.Helper()
	f := &limitsFixture{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	f.usage = &fakeUsageRepo{clock: func() time.Time { return f.now }}

	uc := NewLimitsUseCase(&fakeLimitsRepo{limits: limits}, f.usage, logger.New()).(*limitsUseCase)
	uc.now = func() time.Time { return f.now }
	f.uc = uc
	return f
}

func (f *limitsFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestGetLimitsCreatesDefaults(t *testing.T) {
	f := newLimitsFixture(t, nil)

	limits, err := f.uc.GetLimits()

	assert.NoError(t, err)
	assert.Equal(t, 10, limits.RequestsPerHour)
	assert.Equal(t, 50000, limits.TokensPerHour)
	assert.Equal(t, 50, limits.ImagesPerDay)
	assert.Equal(t, 5, limits.PostsPerHour)
	assert.Equal(t, 60, limits.CooldownSeconds)
}

func TestUpdateLimitsPartial(t *testing.T) {
	f := newLimitsFixture(t, nil)
	newRequests := 20

	limits, err := f.uc.UpdateLimits(entity.LimitsUpdate{RequestsPerHour: &newRequests})

	assert.NoError(t, err)
	assert.Equal(t, 20, limits.RequestsPerHour)
	assert.Equal(t, 50000, limits.TokensPerHour, "untouched fields keep their values")
}

func TestRequestLimitBlocksAtThreshold(t *testing.T) {
	f := newLimitsFixture(t, &entity.Limits{RequestsPerHour: 3, TokensPerHour: 50000, ImagesPerDay: 50, PostsPerHour: 5})

	for i := 0; i < 3; i++ {
		assert.NoError(t, f.uc.CheckRequestLimit())
		f.uc.RecordUsage(entity.UsageAIRequest, 1, nil)
	}

	err := f.uc.CheckRequestLimit()
	assert.Error(t, err)
	assert.True(t, entity.IsLimitExceeded(err))
}

func TestRequestLimitWindowSlides(t *testing.T) {
	f := newLimitsFixture(t, &entity.Limits{RequestsPerHour: 2, TokensPerHour: 50000, ImagesPerDay: 50, PostsPerHour: 5})

	f.uc.RecordUsage(entity.UsageAIRequest, 1, nil)
	f.uc.RecordUsage(entity.UsageAIRequest, 1, nil)
	assert.Error(t, f.uc.CheckRequestLimit())

	// An hour later the old usage has left the window.
	f.advance(61 * time.Minute)
	assert.NoError(t, f.uc.CheckRequestLimit())
}

func TestTokenLimitCountsProjectedTotal(t *testing.T) {
	f := newLimitsFixture(t, &entity.Limits{RequestsPerHour: 10, TokensPerHour: 5000, ImagesPerDay: 50, PostsPerHour: 5})

	f.uc.RecordUsage(entity.UsageAITokens, 4000, nil)

	assert.NoError(t, f.uc.CheckTokenLimit(1000), "exactly at the threshold is allowed")
	assert.Error(t, f.uc.CheckTokenLimit(1001))
}

func TestImageLimitUses24hWindow(t *testing.T) {
	f := newLimitsFixture(t, &entity.Limits{RequestsPerHour: 10, TokensPerHour: 50000, ImagesPerDay: 5, PostsPerHour: 5})

	f.uc.RecordUsage(entity.UsageImageGeneration, 5, nil)

	// Two hours later the images still count; the window is a day.
	f.advance(2 * time.Hour)
	err := f.uc.CheckImageLimit(3)
	assert.Error(t, err)
	assert.True(t, entity.IsLimitExceeded(err))

	f.advance(23 * time.Hour)
	assert.NoError(t, f.uc.CheckImageLimit(3))
}

func TestImageLimitBatchCheckedUpFront(t *testing.T) {
	f := newLimitsFixture(t, &entity.Limits{RequestsPerHour: 10, TokensPerHour: 50000, ImagesPerDay: 3, PostsPerHour: 5})

	f.uc.RecordUsage(entity.UsageImageGeneration, 1, nil)

	assert.NoError(t, f.uc.CheckImageLimit(2))
	assert.Error(t, f.uc.CheckImageLimit(3), "a batch that would overrun is rejected whole")
}

func TestPostLimitBlocksAtThreshold(t *testing.T) {
	f := newLimitsFixture(t, &entity.Limits{RequestsPerHour: 10, TokensPerHour: 50000, ImagesPerDay: 50, PostsPerHour: 1})

	assert.NoError(t, f.uc.CheckPostLimit())
	f.uc.RecordUsage(entity.UsagePostCreation, 1, nil)
	assert.Error(t, f.uc.CheckPostLimit())
}

func TestGetUsageStats(t *testing.T) {
	f := newLimitsFixture(t, nil)

	f.uc.RecordUsage(entity.UsageAIRequest, 2, nil)
	f.uc.RecordUsage(entity.UsageAITokens, 1200, nil)
	f.uc.RecordUsage(entity.UsageImageGeneration, 3, nil)
	f.uc.RecordUsage(entity.UsagePostCreation, 1, nil)

	stats, err := f.uc.GetUsageStats()

	assert.NoError(t, err)
	assert.Equal(t, 2, stats.RequestsLastHour)
	assert.Equal(t, 1200, stats.TokensLastHour)
	assert.Equal(t, 3, stats.ImagesLastDay)
	assert.Equal(t, 1, stats.PostsLastHour)
	assert.NotNil(t, stats.Limits)
}
