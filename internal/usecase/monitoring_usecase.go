package usecase

import (
	"postauto/internal/entity"
	"postauto/internal/repo/persistent"
)

// SystemStatus is the dashboard snapshot: usage against limits, queue
// depth and post counts per status.
type SystemStatus struct {
	Usage         *entity.UsageStats          `json:"usage"`
	Queue         *entity.QueueStats          `json:"queue"`
	PostsByStatus map[entity.PostStatus]int64 `json:"posts_by_status"`
}

type MonitoringUseCase interface {
	Status() (*SystemStatus, error)
	RecentLogs(level entity.LogLevel, limit int) ([]*entity.Log, error)
}

type monitoringUseCase struct {
	postRepo persistent.PostRepository
	logRepo  persistent.LogRepository
	limits   LimitsUseCase
	queue    JobPublisher
}

func NewMonitoringUseCase(postRepo persistent.PostRepository, logRepo persistent.LogRepository, limits LimitsUseCase, queue JobPublisher) MonitoringUseCase {
	return &monitoringUseCase{
		postRepo: postRepo,
		logRepo:  logRepo,
		limits:   limits,
		queue:    queue,
	}
}

func (uc *monitoringUseCase) Status() (*SystemStatus, error) {
	usage, err := uc.limits.GetUsageStats()
	if err != nil {
		return nil, err
	}
	queueStats, err := uc.queue.Stats()
	if err != nil {
		return nil, err
	}
	counts, err := uc.postRepo.CountByStatus()
	if err != nil {
		return nil, err
	}

	return &SystemStatus{
		Usage:         usage,
		Queue:         queueStats,
		PostsByStatus: counts,
	}, nil
}

func (uc *monitoringUseCase) RecentLogs(level entity.LogLevel, limit int) ([]*entity.Log, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.logRepo.ListRecent(level, limit)
}
