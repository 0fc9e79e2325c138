package entity

import "time"

type UsageType string

const (
	UsageAIRequest       UsageType = "ia_request"
	UsageAITokens        UsageType = "ia_tokens"
	UsageImageGeneration UsageType = "image_generation"
	UsagePostCreation    UsageType = "post_creation"
)

// Usage is an append-only ledger entry. Entries are never updated or
// deleted; the rate limiter aggregates them by trailing window.
type Usage struct {
	ID        string                 `json:"id"`
	Type      UsageType              `json:"type"`
	Count     int                    `json:"count"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

type UsageStats struct {
	RequestsLastHour int     `json:"requests_last_hour"`
	TokensLastHour   int     `json:"tokens_last_hour"`
	ImagesLastDay    int     `json:"images_last_day"`
	PostsLastHour    int     `json:"posts_last_hour"`
	Limits           *Limits `json:"limits"`
}
