package persistent

import (
	"errors"

	"postauto/internal/entity"
	"postauto/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CredentialRepository interface {
	GetAll() ([]*entity.Credential, error)
	GetByKey(key string) (*entity.Credential, error)
	Save(cred *entity.Credential) error
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetAll() ([]*entity.Credential, error) {
	var credModels []model.CredentialModel
	if err := r.db.Order("key ASC").Find(&credModels).Error; err != nil {
		return nil, err
	}
	creds := make([]*entity.Credential, len(credModels))
	for i := range credModels {
		creds[i] = ToCredentialEntity(&credModels[i])
	}
	return creds, nil
}

func (r *credentialRepository) GetByKey(key string) (*entity.Credential, error) {
	var credModel model.CredentialModel
	if err := r.db.Where("key = ?", key).First(&credModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &entity.NotFoundError{Resource: "credential"}
		}
		return nil, err
	}
	return ToCredentialEntity(&credModel), nil
}

func (r *credentialRepository) Save(cred *entity.Credential) error {
	credModel := ToCredentialModel(cred)
	if credModel.ID == "" {
		credModel.ID = uuid.New().String()
	}
	if err := r.db.Save(credModel).Error; err != nil {
		return err
	}
	*cred = *ToCredentialEntity(credModel)
	return nil
}
