package usecase

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"

	"postauto/internal/entity"
	"postauto/internal/repo/persistent"

	"golang.org/x/crypto/nacl/secretbox"
)

const maskedValue = "********"

type CredentialsUseCase interface {
	List() ([]*entity.Credential, error)
	Set(key, value string, encrypt bool, description string) (*entity.Credential, error)
	Get(key string) (string, error)
	GetDeepSeekConfig() (*entity.DeepSeekConfig, error)
	GetGeminiConfig() (*entity.GeminiConfig, error)
	GetWordPressConfig() (*entity.WordPressConfig, error)
	GetTelegramConfig() (*entity.TelegramConfig, error)
}

type credentialsUseCase struct {
	credRepo persistent.CredentialRepository
	key      [32]byte
}

func NewCredentialsUseCase(credRepo persistent.CredentialRepository, secret string) CredentialsUseCase {
	return &credentialsUseCase{
		credRepo: credRepo,
		key:      sha256.Sum256([]byte(secret)),
	}
}

func (uc *credentialsUseCase) encrypt(value string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &uc.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// decrypt falls back to the raw stored value when the ciphertext cannot be
// opened, so rows written before encryption was enabled keep working.
func (uc *credentialsUseCase) decrypt(stored string) string {
	sealed, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || len(sealed) < 24 {
		return stored
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &uc.key)
	if !ok {
		return stored
	}
	return string(plain)
}

// List returns all credentials with encrypted values masked.
func (uc *credentialsUseCase) List() ([]*entity.Credential, error) {
	creds, err := uc.credRepo.GetAll()
	if err != nil {
		return nil, err
	}
	for _, cred := range creds {
		if cred.IsEncrypted && cred.Value != "" {
			cred.Value = maskedValue
		}
	}
	return creds, nil
}

func (uc *credentialsUseCase) Set(key, value string, encrypt bool, description string) (*entity.Credential, error) {
	stored := value
	if encrypt && value != "" {
		var err error
		stored, err = uc.encrypt(value)
		if err != nil {
			return nil, err
		}
	}

	cred, err := uc.credRepo.GetByKey(key)
	if err != nil {
		if !entity.IsNotFound(err) {
			return nil, err
		}
		cred = &entity.Credential{Key: key}
	}

	cred.Value = stored
	cred.IsEncrypted = encrypt && value != ""
	if description != "" {
		cred.Description = description
	}

	if err := uc.credRepo.Save(cred); err != nil {
		return nil, err
	}

	if cred.IsEncrypted {
		cred.Value = maskedValue
	}
	return cred, nil
}

// Get returns the decrypted value for a key, or "" when absent.
func (uc *credentialsUseCase) Get(key string) (string, error) {
	cred, err := uc.credRepo.GetByKey(key)
	if err != nil {
		if entity.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	if cred.Value == "" {
		return "", nil
	}
	if cred.IsEncrypted {
		return uc.decrypt(cred.Value), nil
	}
	return cred.Value, nil
}

// The typed getters return (nil, nil) when any required key is missing;
// callers surface that as a NotConfiguredError.

func (uc *credentialsUseCase) GetDeepSeekConfig() (*entity.DeepSeekConfig, error) {
	apiKey, err := uc.Get(entity.CredDeepSeekAPIKey)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, nil
	}

	model, err := uc.Get(entity.CredDeepSeekModel)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "deepseek-chat"
	}

	return &entity.DeepSeekConfig{APIKey: apiKey, Model: model}, nil
}

func (uc *credentialsUseCase) GetGeminiConfig() (*entity.GeminiConfig, error) {
	apiKey, err := uc.Get(entity.CredGeminiAPIKey)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, nil
	}
	return &entity.GeminiConfig{APIKey: apiKey}, nil
}

func (uc *credentialsUseCase) GetWordPressConfig() (*entity.WordPressConfig, error) {
	url, err := uc.Get(entity.CredWordPressURL)
	if err != nil {
		return nil, err
	}
	user, err := uc.Get(entity.CredWordPressUser)
	if err != nil {
		return nil, err
	}
	appPassword, err := uc.Get(entity.CredWordPressAppPassword)
	if err != nil {
		return nil, err
	}
	if url == "" || user == "" || appPassword == "" {
		return nil, nil
	}
	return &entity.WordPressConfig{URL: url, User: user, AppPassword: appPassword}, nil
}

func (uc *credentialsUseCase) GetTelegramConfig() (*entity.TelegramConfig, error) {
	botToken, err := uc.Get(entity.CredTelegramBotToken)
	if err != nil {
		return nil, err
	}
	chatIDRaw, err := uc.Get(entity.CredTelegramChatID)
	if err != nil {
		return nil, err
	}
	if botToken == "" || chatIDRaw == "" {
		return nil, nil
	}

	chatID, err := strconv.ParseInt(chatIDRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatIDRaw, err)
	}

	return &entity.TelegramConfig{BotToken: botToken, ChatID: chatID}, nil
}
