package persistent

import (
	"errors"

	"postauto/internal/entity"
	"postauto/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromptRepository interface {
	GetActive() (*entity.Prompt, error)
	GetAll() ([]*entity.Prompt, error)
	GetByID(id string) (*entity.Prompt, error)
	HighestVersion() (int, error)
	Create(prompt *entity.Prompt) error
	DeactivateAll() error
	Activate(id string) error
}

type promptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) GetActive() (*entity.Prompt, error) {
	var promptModel model.PromptModel
	err := r.db.Where("is_active = ?", true).Order("version DESC").First(&promptModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &entity.NotFoundError{Resource: "active prompt"}
		}
		return nil, err
	}
	return ToPromptEntity(&promptModel), nil
}

func (r *promptRepository) GetAll() ([]*entity.Prompt, error) {
	var promptModels []model.PromptModel
	if err := r.db.Order("version DESC").Find(&promptModels).Error; err != nil {
		return nil, err
	}
	prompts := make([]*entity.Prompt, len(promptModels))
	for i := range promptModels {
		prompts[i] = ToPromptEntity(&promptModels[i])
	}
	return prompts, nil
}

func (r *promptRepository) GetByID(id string) (*entity.Prompt, error) {
	var promptModel model.PromptModel
	if err := r.db.Where("id = ?", id).First(&promptModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &entity.NotFoundError{Resource: "prompt"}
		}
		return nil, err
	}
	return ToPromptEntity(&promptModel), nil
}

func (r *promptRepository) HighestVersion() (int, error) {
	var promptModel model.PromptModel
	err := r.db.Order("version DESC").First(&promptModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return promptModel.Version, nil
}

func (r *promptRepository) Create(prompt *entity.Prompt) error {
	promptModel := ToPromptModel(prompt)
	if promptModel.ID == "" {
		promptModel.ID = uuid.New().String()
	}
	if err := r.db.Create(promptModel).Error; err != nil {
		return err
	}
	*prompt = *ToPromptEntity(promptModel)
	return nil
}

func (r *promptRepository) DeactivateAll() error {
	return r.db.Model(&model.PromptModel{}).Where("is_active = ?", true).Update("is_active", false).Error
}

func (r *promptRepository) Activate(id string) error {
	return r.db.Model(&model.PromptModel{}).Where("id = ?", id).Update("is_active", true).Error
}
