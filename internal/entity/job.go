package entity

type JobType string

const (
	JobGenerateText   JobType = "generate-text"
	JobGenerateImages JobType = "generate-images"
	JobPublishPost    JobType = "publish-post"
)

// Job is one unit of queued pipeline work, keyed to a post.
type Job struct {
	Type        JobType `json:"type"`
	PostID      string  `json:"post_id"`
	Adjustments string  `json:"adjustments,omitempty"`
	Attempts    int     `json:"attempts"`
}

type QueueStats struct {
	Waiting int `json:"waiting"`
	Parked  int `json:"parked"`
}
