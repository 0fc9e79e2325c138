package entity

import "time"

// Limits is a singleton configuration row, mutable by an administrator and
// read by the rate limiter before every gated call.
type Limits struct {
	ID              string    `json:"id"`
	RequestsPerHour int       `json:"requests_per_hour"`
	TokensPerHour   int       `json:"tokens_per_hour"`
	ImagesPerDay    int       `json:"images_per_day"`
	PostsPerHour    int       `json:"posts_per_hour"`
	CooldownSeconds int       `json:"cooldown_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LimitsUpdate carries partial limit changes from the admin API.
type LimitsUpdate struct {
	RequestsPerHour *int `json:"requests_per_hour"`
	TokensPerHour   *int `json:"tokens_per_hour"`
	ImagesPerDay    *int `json:"images_per_day"`
	PostsPerHour    *int `json:"posts_per_hour"`
	CooldownSeconds *int `json:"cooldown_seconds"`
}
