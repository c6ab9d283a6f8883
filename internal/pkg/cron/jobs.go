package cron

import (
	"context"
	"log/slog"
	"time"
)

// SessionCloser closes attendance sessions left open past the stale limit.
type SessionCloser interface {
	AutoCloseStale(ctx context.Context) (int, error)
}

// BlockLocker locks comment blocks whose editing window has passed.
type BlockLocker interface {
	LockExpiredBlocks(ctx context.Context) (int64, error)
}

type MaintenanceJobs struct {
	sessions SessionCloser
	blocks   BlockLocker
	interval time.Duration
}

func NewMaintenanceJobs(sessions SessionCloser, blocks BlockLocker, interval time.Duration) *MaintenanceJobs {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &MaintenanceJobs{sessions: sessions, blocks: blocks, interval: interval}
}

func (j *MaintenanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{Name: "auto_close_stale_sessions", Interval: j.interval, Run: j.AutoCloseStaleSessions})
	scheduler.AddJob(Job{Name: "lock_expired_comment_blocks", Interval: j.interval, Run: j.LockExpiredCommentBlocks})
}

func (j *MaintenanceJobs) AutoCloseStaleSessions(ctx context.Context) error {
	closed, err := j.sessions.AutoCloseStale(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("Cron: closed stale attendance sessions", "count", closed)
	}
	return nil
}

func (j *MaintenanceJobs) LockExpiredCommentBlocks(ctx context.Context) error {
	locked, err := j.blocks.LockExpiredBlocks(ctx)
	if err != nil {
		return err
	}
	if locked > 0 {
		slog.Info("Cron: locked expired comment blocks", "count", locked)
	}
	return nil
}
