package worker

import (
	"context"
	"fmt"
	"time"

	"postauto/internal/entity"
	"postauto/internal/logs"
	"postauto/internal/provider/deepseek"
	"postauto/internal/provider/gemini"
	"postauto/internal/provider/wordpress"
	"postauto/internal/repo/persistent"
	"postauto/internal/usecase"
)

// ContentProvider drafts an article for a prompt.
type ContentProvider interface {
	GenerateContent(ctx context.Context, prompt string) (*deepseek.GeneratedContent, error)
}

// ImageProvider renders the post's image prompts.
type ImageProvider interface {
	GenerateImages(ctx context.Context, prompts []string) ([]gemini.GeneratedImage, error)
}

// PublishTarget pushes a finished post to the publication site.
type PublishTarget interface {
	Publish(ctx context.Context, post *entity.Post) (*wordpress.PublishedPost, error)
}

// Notifier reports pipeline events to the human reviewer.
type Notifier interface {
	SendApprovalRequest(post *entity.Post) error
	SendPublishNotification(post *entity.Post) error
	SendErrorNotification(post *entity.Post, message string) error
}

// PromptBuilder assembles the full drafting prompt for a subject.
type PromptBuilder interface {
	BuildPrompt(subject string) (string, error)
}

// Processor executes queued pipeline stages. Stage failures (missing
// credentials, limits, provider errors) are final: the post is moved to
// error, the reviewer notified, and the job acknowledged. Only
// infrastructure failures propagate to the queue for redelivery, so a
// broken provider cannot spin the retry loop.
type Processor struct {
	postRepo persistent.PostRepository
	prompts  PromptBuilder
	content  ContentProvider
	images   ImageProvider
	target   PublishTarget
	notifier Notifier
	queue    usecase.JobPublisher
	locker   usecase.PostLocker
	recorder *logs.Recorder

	stageTimeout time.Duration
}

func NewProcessor(
	postRepo persistent.PostRepository,
	prompts PromptBuilder,
	content ContentProvider,
	images ImageProvider,
	target PublishTarget,
	notifier Notifier,
	queue usecase.JobPublisher,
	locker usecase.PostLocker,
	recorder *logs.Recorder,
	stageTimeout time.Duration,
) *Processor {
	return &Processor{
		postRepo:     postRepo,
		prompts:      prompts,
		content:      content,
		images:       images,
		target:       target,
		notifier:     notifier,
		queue:        queue,
		locker:       locker,
		recorder:     recorder,
		stageTimeout: stageTimeout,
	}
}

// Handle is the queue consumer entry point. Each job gets its own stage
// timeout.
func (p *Processor) Handle(job entity.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.stageTimeout)
	defer cancel()
	return p.Process(ctx, job)
}

func (p *Processor) Process(ctx context.Context, job entity.Job) error {
	release, err := p.locker.Acquire(ctx, job.PostID)
	if err != nil {
		return fmt.Errorf("failed to lock post %s: %w", job.PostID, err)
	}
	defer release()

	post, err := p.postRepo.GetByID(job.PostID)
	if err != nil {
		if entity.IsNotFound(err) {
			// Post deleted under a queued job; nothing to do.
			p.recorder.Warn(entity.SourceSystem, "Dropping job for missing post", map[string]interface{}{"post_id": job.PostID, "type": string(job.Type)})
			return nil
		}
		return err
	}

	switch job.Type {
	case entity.JobGenerateText:
		return p.generateText(ctx, post, job)
	case entity.JobGenerateImages:
		return p.generateImages(ctx, post)
	case entity.JobPublishPost:
		return p.publishPost(ctx, post)
	default:
		p.recorder.Warn(entity.SourceSystem, "Dropping job with unknown type", map[string]interface{}{"post_id": job.PostID, "type": string(job.Type)})
		return nil
	}
}

func (p *Processor) generateText(ctx context.Context, post *entity.Post, job entity.Job) error {
	if post.Status != entity.StatusPendingText {
		return p.skipStage(post, entity.JobGenerateText, entity.StatusPendingText)
	}

	prompt, err := p.prompts.BuildPrompt(post.Subject)
	if err != nil {
		if entity.IsNotFound(err) {
			return p.failStage(post, entity.SourceAI, "no active prompt template configured")
		}
		return err
	}

	adjustments := job.Adjustments
	if adjustments == "" {
		if note, ok := post.Metadata["adjustments"].(string); ok {
			adjustments = note
		}
	}
	if adjustments != "" {
		prompt += fmt.Sprintf("\n\nRequested adjustments to the previous draft:\n%s", adjustments)
	}

	content, err := p.content.GenerateContent(ctx, prompt)
	if err != nil {
		return p.failStage(post, entity.SourceAI, err.Error())
	}

	post.GeneratedText = content.Content
	post.HTMLContent = content.HTML()
	post.ImagePrompts = content.ImagePrompts
	post.TokensUsed += content.TokensUsed
	post.SetMeta("title", content.Title)
	post.Status = entity.StatusPendingApproval
	if err := p.postRepo.Update(post); err != nil {
		return err
	}

	p.recorder.Info(entity.SourceAI, "Draft generated", map[string]interface{}{"post_id": post.ID, "tokens": content.TokensUsed})

	if err := p.notifier.SendApprovalRequest(post); err != nil {
		// The draft is saved; a failed notification is recoverable via /status.
		p.recorder.Warn(entity.SourceTelegram, "Failed to send approval request: "+err.Error(), map[string]interface{}{"post_id": post.ID})
	}
	return nil
}

func (p *Processor) generateImages(ctx context.Context, post *entity.Post) error {
	// A redelivered job can find the post already in generating_images if a
	// worker died mid-stage. Re-running is safe, so that status enters too;
	// only then does at-least-once delivery actually recover the post.
	if post.Status != entity.StatusApproved && post.Status != entity.StatusGeneratingImages {
		return p.skipStage(post, entity.JobGenerateImages, entity.StatusApproved)
	}

	if post.Status == entity.StatusApproved {
		post.Status = entity.StatusGeneratingImages
		if err := p.postRepo.Update(post); err != nil {
			return err
		}
	}

	images, err := p.images.GenerateImages(ctx, post.ImagePrompts)
	if err != nil {
		return p.failStage(post, entity.SourceImages, err.Error())
	}

	refs := make([]string, len(images))
	for i, img := range images {
		refs[i] = img.Ref
	}
	post.GeneratedImages = refs
	post.Status = entity.StatusReady
	if err := p.postRepo.Update(post); err != nil {
		return err
	}

	p.recorder.Info(entity.SourceImages, "Images generated", map[string]interface{}{"post_id": post.ID, "count": len(refs)})

	if err := p.queue.PublishJob(entity.Job{Type: entity.JobPublishPost, PostID: post.ID}); err != nil {
		return fmt.Errorf("failed to enqueue publication for post %s: %w", post.ID, err)
	}
	return nil
}

func (p *Processor) publishPost(ctx context.Context, post *entity.Post) error {
	if post.Status != entity.StatusReady {
		return p.skipStage(post, entity.JobPublishPost, entity.StatusReady)
	}

	published, err := p.target.Publish(ctx, post)
	if err != nil {
		return p.failStage(post, entity.SourceWordPress, err.Error())
	}

	post.WordpressPostID = published.ID
	post.WordpressURL = published.URL
	post.Status = entity.StatusPublished
	if err := p.postRepo.Update(post); err != nil {
		return err
	}

	p.recorder.Info(entity.SourceWordPress, "Post published", map[string]interface{}{"post_id": post.ID, "url": published.URL})

	if err := p.notifier.SendPublishNotification(post); err != nil {
		p.recorder.Warn(entity.SourceTelegram, "Failed to send publish notification: "+err.Error(), map[string]interface{}{"post_id": post.ID})
	}
	return nil
}

// skipStage drops a job whose post is no longer in the stage's entry
// status. Redeliveries of completed work and jobs for cancelled posts land
// here.
func (p *Processor) skipStage(post *entity.Post, jobType entity.JobType, expected entity.PostStatus) error {
	p.recorder.Warn(entity.SourceSystem, "Skipping stage, post not in expected status", map[string]interface{}{
		"post_id":  post.ID,
		"type":     string(jobType),
		"status":   string(post.Status),
		"expected": string(expected),
	})
	return nil
}

// failStage records a final stage failure. The returned nil acknowledges
// the job; recovery is a human decision (adjust, cancel, or resubmit).
func (p *Processor) failStage(post *entity.Post, source entity.LogSource, message string) error {
	post.Status = entity.StatusError
	post.SetMeta("error", message)
	if err := p.postRepo.Update(post); err != nil {
		return err
	}

	p.recorder.Error(source, "Stage failed: "+message, map[string]interface{}{"post_id": post.ID})

	if err := p.notifier.SendErrorNotification(post, message); err != nil {
		p.recorder.Warn(entity.SourceTelegram, "Failed to send error notification: "+err.Error(), map[string]interface{}{"post_id": post.ID})
	}
	return nil
}
