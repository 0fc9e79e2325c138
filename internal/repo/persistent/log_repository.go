package persistent

import (
	"postauto/internal/entity"
	"postauto/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogRepository interface {
	Create(entry *entity.Log) error
	ListRecent(level entity.LogLevel, limit int) ([]*entity.Log, error)
}

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Create(entry *entity.Log) error {
	logModel := ToLogModel(entry)
	if logModel.ID == "" {
		logModel.ID = uuid.New().String()
	}
	return r.db.Create(logModel).Error
}

func (r *logRepository) ListRecent(level entity.LogLevel, limit int) ([]*entity.Log, error) {
	var logModels []model.LogModel
	query := r.db.Order("created_at DESC")
	if level != "" {
		query = query.Where("level = ?", string(level))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*entity.Log, len(logModels))
	for i := range logModels {
		entries[i] = ToLogEntity(&logModels[i])
	}
	return entries, nil
}
