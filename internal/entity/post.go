package entity

import "time"

type PostStatus string

const (
	StatusPendingText      PostStatus = "pending_text"
	StatusPendingApproval  PostStatus = "pending_approval"
	StatusApproved         PostStatus = "approved"
	StatusGeneratingImages PostStatus = "generating_images"
	StatusReady            PostStatus = "ready"
	StatusPublished        PostStatus = "published"
	StatusCancelled        PostStatus = "cancelled"
	StatusError            PostStatus = "error"
)

type Post struct {
	ID                string                 `json:"id"`
	Subject           string                 `json:"subject"`
	GeneratedText     string                 `json:"generated_text"`
	HTMLContent       string                 `json:"html_content"`
	ImagePrompts      []string               `json:"image_prompts"`
	GeneratedImages   []string               `json:"generated_images"`
	Status            PostStatus             `json:"status"`
	WordpressPostID   string                 `json:"wordpress_post_id"`
	WordpressURL      string                 `json:"wordpress_url"`
	TelegramMessageID string                 `json:"telegram_message_id"`
	TokensUsed        int                    `json:"tokens_used"`
	Metadata          map[string]interface{} `json:"metadata"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// Title prefers the generated title and falls back to the subject.
func (p *Post) Title() string {
	if p.Metadata != nil {
		if title, ok := p.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return p.Subject
}

// SetMeta writes a metadata key, allocating the map on first use.
func (p *Post) SetMeta(key string, value interface{}) {
	if p.Metadata == nil {
		p.Metadata = make(map[string]interface{})
	}
	p.Metadata[key] = value
}

// Valid reports whether s is one of the known lifecycle statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusPendingText, StatusPendingApproval, StatusApproved,
		StatusGeneratingImages, StatusReady, StatusPublished,
		StatusCancelled, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether no further pipeline work applies.
func (s PostStatus) IsTerminal() bool {
	return s == StatusPublished || s == StatusCancelled
}

// CanCancel reports whether a human cancel action is valid from this status.
// A cancelled post may be cancelled again (idempotent no-op).
func (s PostStatus) CanCancel() bool {
	return s != StatusPublished
}
