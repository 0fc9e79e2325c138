package entity

import "time"

type Credential struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	IsEncrypted bool      `json:"is_encrypted"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Well-known credential keys.
const (
	CredDeepSeekAPIKey       = "deepseek_api_key"
	CredDeepSeekModel        = "deepseek_model"
	CredGeminiAPIKey         = "gemini_api_key"
	CredWordPressURL         = "wordpress_url"
	CredWordPressUser        = "wordpress_user"
	CredWordPressAppPassword = "wordpress_app_password"
	CredTelegramBotToken     = "telegram_bot_token"
	CredTelegramChatID       = "telegram_chat_id"
)

type DeepSeekConfig struct {
	APIKey string
	Model  string
}

type GeminiConfig struct {
	APIKey string
}

type WordPressConfig struct {
	URL         string
	User        string
	AppPassword string
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}
