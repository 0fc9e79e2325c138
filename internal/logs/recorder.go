package logs

import (
	"postauto/internal/entity"
	"postauto/internal/repo/persistent"
	"postauto/pkg/logger"
)

// Recorder is the leveled, sourced log sink backed by the logs table.
// Writes are best-effort: a failing sink must never abort pipeline
// processing, so persistence errors only reach the console logger.
type Recorder struct {
	repo   persistent.LogRepository
	logger *logger.Logger
}

func NewRecorder(repo persistent.LogRepository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, logger: log}
}

func (r *Recorder) Info(source entity.LogSource, message string, metadata map[string]interface{}) {
	r.logger.Info("[%s] %s", source, message)
	r.persist(source, entity.LevelInfo, message, metadata)
}

func (r *Recorder) Warn(source entity.LogSource, message string, metadata map[string]interface{}) {
	r.logger.Warn("[%s] %s", source, message)
	r.persist(source, entity.LevelWarn, message, metadata)
}

func (r *Recorder) Error(source entity.LogSource, message string, metadata map[string]interface{}) {
	r.logger.Error("[%s] %s", source, message)
	r.persist(source, entity.LevelError, message, metadata)
}

func (r *Recorder) persist(source entity.LogSource, level entity.LogLevel, message string, metadata map[string]interface{}) {
	if r.repo == nil {
		return
	}
	entry := &entity.Log{
		Source:   source,
		Level:    level,
		Message:  message,
		Metadata: metadata,
	}
	if err := r.repo.Create(entry); err != nil {
		r.logger.Warn("Failed to persist log entry: %v", err)
	}
}
