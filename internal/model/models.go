package model

import (
	"time"
)

type PostModel struct {
	ID                string    `gorm:"primaryKey;type:uuid"`
	Subject           string    `gorm:"not null"`
	GeneratedText     string    `gorm:"type:text"`
	HTMLContent       string    `gorm:"column:html_content;type:text"`
	ImagePrompts      string    `gorm:"type:jsonb"`
	GeneratedImages   string    `gorm:"type:jsonb"`
	Status            string    `gorm:"not null;default:'pending_text';index"`
	WordpressPostID   string    `gorm:"column:wordpress_post_id"`
	WordpressURL      string    `gorm:"column:wordpress_url"`
	TelegramMessageID string    `gorm:"column:telegram_message_id"`
	TokensUsed        int       `gorm:"default:0"`
	Metadata          string    `gorm:"type:jsonb"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (PostModel) TableName() string {
	return "posts"
}

type UsageModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Type      string    `gorm:"not null;index:idx_usage_type_created"`
	Count     int       `gorm:"not null;default:1"`
	Metadata  string    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_usage_type_created"`
}

func (UsageModel) TableName() string {
	return "usage"
}

type LimitsModel struct {
	ID              string    `gorm:"primaryKey;type:uuid"`
	RequestsPerHour int       `gorm:"not null;default:10"`
	TokensPerHour   int       `gorm:"not null;default:50000"`
	ImagesPerDay    int       `gorm:"not null;default:50"`
	PostsPerHour    int       `gorm:"not null;default:5"`
	CooldownSeconds int       `gorm:"not null;default:60"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (LimitsModel) TableName() string {
	return "limits"
}

type PromptModel struct {
	ID             string    `gorm:"primaryKey;type:uuid"`
	BasePrompt     string    `gorm:"type:text;not null"`
	EditorialRules string    `gorm:"type:text"`
	Language       string    `gorm:"default:'en'"`
	Version        int       `gorm:"not null;default:1"`
	IsActive       bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (PromptModel) TableName() string {
	return "prompts"
}

type CredentialModel struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	Key         string    `gorm:"uniqueIndex;not null"`
	Value       string    `gorm:"type:text"`
	IsEncrypted bool      `gorm:"not null;default:false"`
	Description string
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (CredentialModel) TableName() string {
	return "credentials"
}

type LogModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Source    string    `gorm:"not null;index"`
	Level     string    `gorm:"not null;default:'info';index"`
	Message   string    `gorm:"type:text;not null"`
	Metadata  string    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (LogModel) TableName() string {
	return "logs"
}
