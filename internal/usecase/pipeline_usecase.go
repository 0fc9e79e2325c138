package usecase

import (
	"context"

	"postauto/internal/entity"
	"postauto/internal/logs"
	"postauto/internal/repo/persistent"
)

// JobPublisher is the queue surface the pipeline needs: enqueue work and
// report depth. Satisfied by pkg/queue.Client.
type JobPublisher interface {
	PublishJob(job entity.Job) error
	Stats() (*entity.QueueStats, error)
}

// PostLocker serializes work on a single post. Acquire blocks until the
// lease is held or ctx is done; the returned func releases it.
type PostLocker interface {
	Acquire(ctx context.Context, postID string) (func(), error)
}

type PipelineUseCase interface {
	CreatePost(ctx context.Context, subject, telegramMessageID string) (*entity.Post, error)
	Approve(ctx context.Context, postID string) (*entity.Post, error)
	Adjust(ctx context.Context, postID, note string) (*entity.Post, error)
	Cancel(ctx context.Context, postID string) (*entity.Post, error)
	GetPost(postID string) (*entity.Post, error)
	ListPosts(limit int) ([]*entity.Post, error)
	ListByStatus(status entity.PostStatus) ([]*entity.Post, error)
	PendingApproval() ([]*entity.Post, error)
	QueueStats() (*entity.QueueStats, error)
}

type pipelineUseCase struct {
	postRepo persistent.PostRepository
	queue    JobPublisher
	locker   PostLocker
	recorder *logs.Recorder
}

func NewPipelineUseCase(postRepo persistent.PostRepository, queue JobPublisher, locker PostLocker, recorder *logs.Recorder) PipelineUseCase {
	return &pipelineUseCase{
		postRepo: postRepo,
		queue:    queue,
		locker:   locker,
		recorder: recorder,
	}
}

// CreatePost registers a new subject and enqueues text generation.
func (uc *pipelineUseCase) CreatePost(ctx context.Context, subject, telegramMessageID string) (*entity.Post, error) {
	post := &entity.Post{
		Subject:           subject,
		Status:            entity.StatusPendingText,
		TelegramMessageID: telegramMessageID,
	}
	if err := uc.postRepo.Create(post); err != nil {
		return nil, err
	}

	if err := uc.queue.PublishJob(entity.Job{Type: entity.JobGenerateText, PostID: post.ID}); err != nil {
		post.Status = entity.StatusError
		post.SetMeta("error", "failed to enqueue text generation: "+err.Error())
		if updateErr := uc.postRepo.Update(post); updateErr != nil {
			uc.recorder.Error(entity.SourceSystem, "Failed to mark post after enqueue failure: "+updateErr.Error(), map[string]interface{}{"post_id": post.ID})
		}
		return nil, err
	}

	uc.recorder.Info(entity.SourceSystem, "Post created: "+subject, map[string]interface{}{"post_id": post.ID})
	return post, nil
}

// Approve moves a post awaiting review into image generation.
func (uc *pipelineUseCase) Approve(ctx context.Context, postID string) (*entity.Post, error) {
	release, err := uc.locker.Acquire(ctx, postID)
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post.Status != entity.StatusPendingApproval {
		return nil, &entity.InvalidTransitionError{Action: "approve", Status: post.Status}
	}

	post.Status = entity.StatusApproved
	if err := uc.postRepo.Update(post); err != nil {
		return nil, err
	}

	if err := uc.queue.PublishJob(entity.Job{Type: entity.JobGenerateImages, PostID: post.ID}); err != nil {
		return nil, err
	}

	uc.recorder.Info(entity.SourceSystem, "Post approved", map[string]interface{}{"post_id": post.ID})
	return post, nil
}

// Adjust sends a reviewed post back through text generation with a note.
func (uc *pipelineUseCase) Adjust(ctx context.Context, postID, note string) (*entity.Post, error) {
	release, err := uc.locker.Acquire(ctx, postID)
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post.Status != entity.StatusPendingApproval {
		return nil, &entity.InvalidTransitionError{Action: "adjust", Status: post.Status}
	}

	post.Status = entity.StatusPendingText
	post.SetMeta("adjustments", note)
	if err := uc.postRepo.Update(post); err != nil {
		return nil, err
	}

	if err := uc.queue.PublishJob(entity.Job{Type: entity.JobGenerateText, PostID: post.ID, Adjustments: note}); err != nil {
		return nil, err
	}

	uc.recorder.Info(entity.SourceSystem, "Post sent back for adjustment", map[string]interface{}{"post_id": post.ID})
	return post, nil
}

// Cancel aborts a post anywhere before publication. Cancelling an already
// cancelled post is a no-op; a published post cannot be cancelled.
func (uc *pipelineUseCase) Cancel(ctx context.Context, postID string) (*entity.Post, error) {
	release, err := uc.locker.Acquire(ctx, postID)
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if !post.Status.CanCancel() {
		return nil, &entity.InvalidTransitionError{Action: "cancel", Status: post.Status}
	}
	if post.Status == entity.StatusCancelled {
		return post, nil
	}

	post.Status = entity.StatusCancelled
	if err := uc.postRepo.Update(post); err != nil {
		return nil, err
	}

	uc.recorder.Info(entity.SourceSystem, "Post cancelled", map[string]interface{}{"post_id": post.ID})
	return post, nil
}

func (uc *pipelineUseCase) GetPost(postID string) (*entity.Post, error) {
	return uc.postRepo.GetByID(postID)
}

func (uc *pipelineUseCase) ListPosts(limit int) ([]*entity.Post, error) {
	return uc.postRepo.List(limit)
}

func (uc *pipelineUseCase) ListByStatus(status entity.PostStatus) ([]*entity.Post, error) {
	return uc.postRepo.ListByStatus(status)
}

func (uc *pipelineUseCase) PendingApproval() ([]*entity.Post, error) {
	return uc.postRepo.ListByStatus(entity.StatusPendingApproval)
}

func (uc *pipelineUseCase) QueueStats() (*entity.QueueStats, error) {
	return uc.queue.Stats()
}
