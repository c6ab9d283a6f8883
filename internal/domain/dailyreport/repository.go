package dailyreport

import (
	"context"
	"time"
)

type ReportRepository interface {
	// EnsureReport creates the (project, date) document on first access of a day.
	EnsureReport(ctx context.Context, projectID, date string) (Report, error)
	GetReport(ctx context.Context, projectID, date string) (Report, error)
	SaveChecklist(ctx context.Context, projectID, date string, checklist Checklist) error
	SaveRecount(ctx context.Context, projectID, date string, phase Phase, recount Recount) error

	// GetLiveStock returns an empty stock when the project has none yet.
	GetLiveStock(ctx context.Context, projectID string) (LiveStock, error)
	ReplaceLiveStock(ctx context.Context, projectID string, list []ChecklistItem) (LiveStock, error)

	ListBlocks(ctx context.Context, projectID, date string) ([]CommentBlock, error)
	GetBlock(ctx context.Context, projectID, date, blockID string) (CommentBlock, error)

	// UpsertComment merges the jefe fields into a block; startAt only applies when the block is created.
	UpsertComment(ctx context.Context, block CommentBlock) (CommentBlock, error)

	// UpsertJefeNote merges note, startAt and locked into a block.
	UpsertJefeNote(ctx context.Context, block CommentBlock) (CommentBlock, error)

	// AddWorkerComment appends to an existing block, ErrBlockNotFound otherwise.
	AddWorkerComment(ctx context.Context, projectID, date, blockID string, comment WorkerComment) (WorkerComment, error)

	// LockExpiredBlocks locks every unlocked block that started before cutoff.
	LockExpiredBlocks(ctx context.Context, cutoff time.Time) (int64, error)
}
