package entity

import "time"

// Prompt is a versioned generation template. At most one version is active;
// creating or updating always writes a new highest version.
type Prompt struct {
	ID             string    `json:"id"`
	BasePrompt     string    `json:"base_prompt"`
	EditorialRules string    `json:"editorial_rules"`
	Language       string    `json:"language"`
	Version        int       `json:"version"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
