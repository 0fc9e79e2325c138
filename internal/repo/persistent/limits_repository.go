package persistent

import (
	"errors"

	"postauto/internal/entity"
	"postauto/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LimitsRepository interface {
	Get() (*entity.Limits, error)
	Save(limits *entity.Limits) error
}

type limitsRepository struct {
	db *gorm.DB
}

func NewLimitsRepository(db *gorm.DB) LimitsRepository {
	return &limitsRepository{db: db}
}

func (r *limitsRepository) Get() (*entity.Limits, error) {
	var limitsModel model.LimitsModel
	if err := r.db.First(&limitsModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &entity.NotFoundError{Resource: "limits"}
		}
		return nil, err
	}
	return ToLimitsEntity(&limitsModel), nil
}

func (r *limitsRepository) Save(limits *entity.Limits) error {
	limitsModel := ToLimitsModel(limits)
	if limitsModel.ID == "" {
		limitsModel.ID = uuid.New().String()
	}
	if err := r.db.Save(limitsModel).Error; err != nil {
		return err
	}
	*limits = *ToLimitsEntity(limitsModel)
	return nil
}
