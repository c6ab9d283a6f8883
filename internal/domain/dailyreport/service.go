package dailyreport

import (
	"context"

	"github.com/faena-app/faena-backend/internal/domain/auth"
)

type DailyReportService interface {
	// GetTodayReport merges today's report with its comment blocks. A missing checklist is
	// seeded from live stock in the response without being persisted.
	GetTodayReport(ctx context.Context, caller auth.Identity, projectID string) (ReportResponse, error)

	// SaveChecklist stores today's checklist and fully replaces live stock with it.
	SaveChecklist(ctx context.Context, caller auth.Identity, req SaveChecklistRequest) (ReportResponse, error)

	// SaveRecount stores the phase recount, then applies its deltas to live stock.
	SaveRecount(ctx context.Context, caller auth.Identity, req SaveRecountRequest) (ReportResponse, error)

	GetLiveStock(ctx context.Context, caller auth.Identity, projectID string) (LiveStockResponse, error)

	// UpsertComment writes into the block of the current wall-clock hour.
	UpsertComment(ctx context.Context, caller auth.Identity, req CommentRequest) (CommentBlockResponse, error)

	// UpsertJefeNote writes into the push-in relative block of the supervisor's open session.
	UpsertJefeNote(ctx context.Context, caller auth.Identity, req JefeNoteRequest) (CommentBlockResponse, error)

	AddWorkerComment(ctx context.Context, caller auth.Identity, req WorkerCommentRequest) (WorkerComment, error)

	// NextPrompt tells a supervisor which report step is pending today.
	NextPrompt(ctx context.Context, projectID string) (Prompt, error)

	// LockExpiredBlocks locks blocks whose 2-hour window has passed.
	LockExpiredBlocks(ctx context.Context) (int64, error)
}
