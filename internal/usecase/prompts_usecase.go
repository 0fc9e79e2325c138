package usecase

import (
	"fmt"

	"postauto/internal/entity"
	"postauto/internal/repo/persistent"
)

type PromptsUseCase interface {
	GetActive() (*entity.Prompt, error)
	GetAll() ([]*entity.Prompt, error)
	GetByID(id string) (*entity.Prompt, error)
	Create(basePrompt, editorialRules string) (*entity.Prompt, error)
	Update(id, basePrompt, editorialRules string) (*entity.Prompt, error)
	Activate(id string) (*entity.Prompt, error)
	BuildPrompt(subject string) (string, error)
}

type promptsUseCase struct {
	promptRepo persistent.PromptRepository
}

func NewPromptsUseCase(promptRepo persistent.PromptRepository) PromptsUseCase {
	return &promptsUseCase{promptRepo: promptRepo}
}

func (uc *promptsUseCase) GetActive() (*entity.Prompt, error) {
	return uc.promptRepo.GetActive()
}

func (uc *promptsUseCase) GetAll() ([]*entity.Prompt, error) {
	return uc.promptRepo.GetAll()
}

func (uc *promptsUseCase) GetByID(id string) (*entity.Prompt, error) {
	return uc.promptRepo.GetByID(id)
}

// Create deactivates all existing prompts and writes a new highest version.
func (uc *promptsUseCase) Create(basePrompt, editorialRules string) (*entity.Prompt, error) {
	if err := uc.promptRepo.DeactivateAll(); err != nil {
		return nil, err
	}

	version, err := uc.promptRepo.HighestVersion()
	if err != nil {
		return nil, err
	}

	prompt := &entity.Prompt{
		BasePrompt:     basePrompt,
		EditorialRules: editorialRules,
		Language:       "en",
		Version:        version + 1,
		IsActive:       true,
	}
	if err := uc.promptRepo.Create(prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

// Update never mutates an existing version; it writes a new one so the
// history stays auditable.
func (uc *promptsUseCase) Update(id, basePrompt, editorialRules string) (*entity.Prompt, error) {
	existing, err := uc.promptRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if basePrompt == "" {
		basePrompt = existing.BasePrompt
	}
	if editorialRules == "" {
		editorialRules = existing.EditorialRules
	}

	return uc.Create(basePrompt, editorialRules)
}

func (uc *promptsUseCase) Activate(id string) (*entity.Prompt, error) {
	if _, err := uc.promptRepo.GetByID(id); err != nil {
		return nil, err
	}
	if err := uc.promptRepo.DeactivateAll(); err != nil {
		return nil, err
	}
	if err := uc.promptRepo.Activate(id); err != nil {
		return nil, err
	}
	return uc.promptRepo.GetByID(id)
}

// BuildPrompt combines the active base template, optional editorial rules
// and the subject into the full provider prompt.
func (uc *promptsUseCase) BuildPrompt(subject string) (string, error) {
	active, err := uc.promptRepo.GetActive()
	if err != nil {
		return "", err
	}

	fullPrompt := active.BasePrompt
	if active.EditorialRules != "" {
		fullPrompt += fmt.Sprintf("\n\nEditorial rules:\n%s", active.EditorialRules)
	}
	fullPrompt += fmt.Sprintf("\n\nSubject: %s", subject)

	return fullPrompt, nil
}
