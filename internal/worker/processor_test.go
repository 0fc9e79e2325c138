package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"postauto/internal/entity"
	"postauto/internal/logs"
	"postauto/internal/provider/deepseek"
	"postauto/internal/provider/gemini"
	"postauto/internal/provider/wordpress"
	"postauto/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(post *entity.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) GetByID(id string) (*entity.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) List(limit int) ([]*entity.Post, error) {
	args := m.Called(limit)
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) ListByStatus(status entity.PostStatus) ([]*entity.Post, error) {
	args := m.Called(status)
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) CountByStatus() (map[entity.PostStatus]int64, error) {
	args := m.Called()
	return args.Get(0).(map[entity.PostStatus]int64), args.Error(1)
}

func (m *MockPostRepository) Update(post *entity.Post) error {
	return m.Called(post).Error(0)
}

type MockPromptBuilder struct {
	mock.Mock
}

func (m *MockPromptBuilder) BuildPrompt(subject string) (string, error) {
	args := m.Called(subject)
	return args.String(0), args.Error(1)
}

type MockContentProvider struct {
	mock.Mock
}

func (m *MockContentProvider) GenerateContent(ctx context.Context, prompt string) (*deepseek.GeneratedContent, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deepseek.GeneratedContent), args.Error(1)
}

type MockImageProvider struct {
	mock.Mock
}

func (m *MockImageProvider) GenerateImages(ctx context.Context, prompts []string) ([]gemini.GeneratedImage, error) {
	args := m.Called(ctx, prompts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gemini.GeneratedImage), args.Error(1)
}

type MockPublishTarget struct {
	mock.Mock
}

func (m *MockPublishTarget) Publish(ctx context.Context, post *entity.Post) (*wordpress.PublishedPost, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wordpress.PublishedPost), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendApprovalRequest(post *entity.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockNotifier) SendPublishNotification(post *entity.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockNotifier) SendErrorNotification(post *entity.Post, message string) error {
	return m.Called(post, message).Error(0)
}

type MockJobPublisher struct {
	mock.Mock
}

func (m *MockJobPublisher) PublishJob(job entity.Job) error {
	return m.Called(job).Error(0)
}

func (m *MockJobPublisher) Stats() (*entity.QueueStats, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QueueStats), args.Error(1)
}

type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, postID string) (func(), error) {
	return func() {}, nil
}

type processorFixture struct {
	postRepo *MockPostRepository
	prompts  *MockPromptBuilder
	content  *MockContentProvider
	images   *MockImageProvider
	target   *MockPublishTarget
	notifier *MockNotifier
	queue    *MockJobPublisher
	proc     *Processor
}

func newProcessorFixture() *processorFixture {
	f := &processorFixture{
		postRepo: new(MockPostRepository),
		prompts:  new(MockPromptBuilder),
		content:  new(MockContentProvider),
		images:   new(MockImageProvider),
		target:   new(MockPublishTarget),
		notifier: new(MockNotifier),
		queue:    new(MockJobPublisher),
	}
	recorder := logs.NewRecorder(nil, logger.New())
	f.proc = NewProcessor(
		f.postRepo, f.prompts, f.content, f.images, f.target,
		f.notifier, f.queue, noopLocker{}, recorder, time.Minute,
	)
	return f
}

func TestGenerateTextHappyPath(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Subject: "urban farming", Status: entity.StatusPendingText}

	f.postRepo.On("GetByID", "p1").Return(post, nil)
	f.prompts.On("BuildPrompt", "urban farming").Return("full prompt", nil)
	f.content.On("GenerateContent", mock.Anything, "full prompt").Return(&deepseek.GeneratedContent{
		Title:        "Urban Farming",
		Content:      "Body.",
		ImagePrompts: []string{"a", "b", "c"},
		TokensUsed:   321,
	}, nil)
	f.postRepo.On("Update", mock.Anything).Return(nil)
	f.notifier.On("SendApprovalRequest", post).Return(nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateText, PostID: "p1"})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusPendingApproval, post.Status)
	assert.Equal(t, "Body.", post.GeneratedText)
	assert.Equal(t, []string{"a", "b", "c"}, post.ImagePrompts)
	assert.Equal(t, 321, post.TokensUsed)
	assert.Equal(t, "Urban Farming", post.Metadata["title"])
	f.notifier.AssertCalled(t, "SendApprovalRequest", post)
}

func TestGenerateTextAppendsAdjustments(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Subject: "s", Status: entity.StatusPendingText}

	f.postRepo.On("GetByID", "p1").Return(post, nil)
	f.prompts.On("BuildPrompt", "s").Return("base", nil)
	f.content.On("GenerateContent", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return prompt == "base\n\nRequested adjustments to the previous draft:\nshorter please"
	})).Return(&deepseek.GeneratedContent{Title: "t", Content: "c", ImagePrompts: []string{"x"}}, nil)
	f.postRepo.On("Update", mock.Anything).Return(nil)
	f.notifier.On("SendApprovalRequest", post).Return(nil)

	err := f.proc.Process(context.Background(), entity.Job{
		Type:        entity.JobGenerateText,
		PostID:      "p1",
		Adjustments: "shorter please",
	})

	assert.NoError(t, err)
	f.content.AssertExpectations(t)
}

func TestGenerateTextProviderFailureMarksErrorAndAcks(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Subject: "s", Status: entity.StatusPendingText}

	f.postRepo.On("GetByID", "p1").Return(post, nil)
	f.prompts.On("BuildPrompt", "s").Return("base", nil)
	f.content.On("GenerateContent", mock.Anything, "base").
		Return(nil, &entity.ProviderError{Provider: "DeepSeek", Message: "boom"})
	f.postRepo.On("Update", mock.Anything).Return(nil)
	f.notifier.On("SendErrorNotification", post, mock.Anything).Return(nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateText, PostID: "p1"})

	assert.NoError(t, err, "stage failures acknowledge the job")
	assert.Equal(t, entity.StatusError, post.Status)
	assert.Contains(t, post.Metadata["error"], "boom")
	f.notifier.AssertCalled(t, "SendErrorNotification", post, mock.Anything)
}

func TestGenerateTextLimitFailureIsFinal(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Subject: "s", Status: entity.StatusPendingText}

	f.postRepo.On("GetByID", "p1").Return(post, nil)
	f.prompts.On("BuildPrompt", "s").Return("base", nil)
	f.content.On("GenerateContent", mock.Anything, "base").
		Return(nil, &entity.LimitExceededError{Kind: "requests per hour", Threshold: 10})
	f.postRepo.On("Update", mock.Anything).Return(nil)
	f.notifier.On("SendErrorNotification", post, mock.Anything).Return(nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateText, PostID: "p1"})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusError, post.Status)
}

func TestGenerateTextSkipsWrongStatus(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Status: entity.StatusCancelled}

	f.postRepo.On("GetByID", "p1").Return(post, nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateText, PostID: "p1"})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, post.Status)
	f.content.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything)
}

func TestGenerateImagesHappyPath(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Status: entity.StatusApproved, ImagePrompts: []string{"a", "b"}}

	f.postRepo.On("GetByID", "p1").Return(post, nil)
	f.postRepo.On("Update", mock.Anything).Return(nil)
	f.images.On("GenerateImages", mock.Anything, []string{"a", "b"}).Return([]gemini.GeneratedImage{
		{Ref: "/uploads/1.png"},
		{Ref: "/uploads/2.png"},
	}, nil)
	f.queue.On("PublishJob", entity.Job{Type: entity.JobPublishPost, PostID: "p1"}).Return(nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateImages, PostID: "p1"})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusReady, post.Status)
	assert.Equal(t, []string{"/uploads/1.png", "/uploads/2.png"}, post.GeneratedImages)
	f.queue.AssertExpectations(t)
}

func TestGenerateImagesResumesAfterWorkerCrash(t *testing.T) {
	f := newProcessorFixture()
	// The status write landed but the worker died before the provider call;
	// the redelivered job must run the stage, not ack it as a no-op.
	post := &entity.Post{ID: "p1", Status: entity.StatusGeneratingImages, ImagePrompts: []string{"a"}}

	f.postRepo.On("GetByID", "p1").Return(post, nil)
	f.postRepo.On("Update", mock.Anything).Return(nil)
	f.images.On("GenerateImages", mock.Anything, []string{"a"}).Return([]gemini.GeneratedImage{
		{Ref: "/uploads/1.png"},
	}, nil)
	f.queue.On("PublishJob", entity.Job{Type: entity.JobPublishPost, PostID: "p1"}).Return(nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateImages, PostID: "p1"})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusReady, post.Status)
	assert.Equal(t, []string{"/uploads/1.png"}, post.GeneratedImages)
	f.images.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}

func TestGenerateImagesFailureMarksError(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Status: entity.StatusApproved, ImagePrompts: []string{"a"}}

	f.postRepo.On("GetByID", "p1").Return(post, nil)
	f.postRepo.On("Update", mock.Anything).Return(nil)
	f.images.On("GenerateImages", mock.Anything, []string{"a"}).
		Return(nil, &entity.NotConfiguredError{Service: "Gemini"})
	f.notifier.On("SendErrorNotification", post, mock.Anything).Return(nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateImages, PostID: "p1"})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusError, post.Status)
	f.queue.AssertNotCalled(t, "PublishJob", mock.Anything)
}

func TestPublishHappyPath(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Status: entity.StatusReady, HTMLContent: "<p>body</p>"}

	f.postRepo.On("GetByID", "p1").Return(post, nil)
	f.target.On("Publish", mock.Anything, post).Return(&wordpress.PublishedPost{ID: "42", URL: "http://site/42"}, nil)
	f.postRepo.On("Update", mock.Anything).Return(nil)
	f.notifier.On("SendPublishNotification", post).Return(nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobPublishPost, PostID: "p1"})

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusPublished, post.Status)
	assert.Equal(t, "42", post.WordpressPostID)
	assert.Equal(t, "http://site/42", post.WordpressURL)
}

func TestPublishSkipsRedelivery(t *testing.T) {
	f := newProcessorFixture()
	post := &entity.Post{ID: "p1", Status: entity.StatusPublished}

	f.postRepo.On("GetByID", "p1").Return(post, nil)

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobPublishPost, PostID: "p1"})

	assert.NoError(t, err)
	f.target.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestMissingPostDropsJob(t *testing.T) {
	f := newProcessorFixture()

	f.postRepo.On("GetByID", "gone").Return(nil, &entity.NotFoundError{Resource: "post"})

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateText, PostID: "gone"})

	assert.NoError(t, err)
}

func TestInfrastructureFailurePropagates(t *testing.T) {
	f := newProcessorFixture()

	f.postRepo.On("GetByID", "p1").Return(nil, errors.New("connection refused"))

	err := f.proc.Process(context.Background(), entity.Job{Type: entity.JobGenerateText, PostID: "p1"})

	assert.Error(t, err, "infrastructure failures go back to the queue")
}
