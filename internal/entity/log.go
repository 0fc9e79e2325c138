package entity

import "time"

type LogSource string

const (
	SourceTelegram  LogSource = "telegram"
	SourceAI        LogSource = "ia"
	SourceImages    LogSource = "images"
	SourceWordPress LogSource = "wordpress"
	SourceSystem    LogSource = "system"
)

type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelDebug LogLevel = "debug"
)

type Log struct {
	ID        string                 `json:"id"`
	Source    LogSource              `json:"source"`
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}
