package persistent

import (
	"time"

	"postauto/internal/entity"
	"postauto/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsageRepository interface {
	Create(usage *entity.Usage) error
	SumSince(usageType entity.UsageType, since time.Time) (int, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) Create(usage *entity.Usage) error {
	usageModel := ToUsageModel(usage)
	if usageModel.ID == "" {
		usageModel.ID = uuid.New().String()
	}
	if err := r.db.Create(usageModel).Error; err != nil {
		return err
	}
	*usage = *ToUsageEntity(usageModel)
	return nil
}

func (r *usageRepository) SumSince(usageType entity.UsageType, since time.Time) (int, error) {
	var total *int64
	err := r.db.Model(&model.UsageModel{}).
		Select("SUM(count)").
		Where("type = ? AND created_at > ?", string(usageType), since).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return int(*total), nil
}
