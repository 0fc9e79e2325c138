package persistent

import (
	"errors"

	"postauto/internal/entity"
	"postauto/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(post *entity.Post) error
	GetByID(id string) (*entity.Post, error)
	List(limit int) ([]*entity.Post, error)
	ListByStatus(status entity.PostStatus) ([]*entity.Post, error)
	CountByStatus() (map[entity.PostStatus]int64, error)
	Update(post *entity.Post) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}

	if err := r.db.Create(postModel).Error; err != nil {
		return err
	}

	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(id string) (*entity.Post, error) {
	var postModel model.PostModel
	if err := r.db.Where("id = ?", id).First(&postModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &entity.NotFoundError{Resource: "post"}
		}
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) List(limit int) ([]*entity.Post, error) {
	var postModels []model.PostModel
	query := r.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) ListByStatus(status entity.PostStatus) ([]*entity.Post, error) {
	var postModels []model.PostModel
	if err := r.db.Where("status = ?", string(status)).Order("created_at DESC").Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) CountByStatus() (map[entity.PostStatus]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := r.db.Model(&model.PostModel{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entity.PostStatus]int64, len(rows))
	for _, r := range rows {
		counts[entity.PostStatus(r.Status)] = r.Total
	}
	return counts, nil
}

// Update saves the full record. Concurrent writers to the same post must be
// serialized by the caller via the per-post lease.
func (r *postRepository) Update(post *entity.Post) error {
	postModel := ToPostModel(post)
	return r.db.Save(postModel).Error
}
