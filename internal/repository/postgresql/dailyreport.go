package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type dailyReportRepository struct {
	db *database.DB
}

func NewDailyReportRepository(db *database.DB) dailyreport.ReportRepository {
	return &dailyReportRepository{db: db}
}

func scanReport(row pgx.Row) (dailyreport.Report, error) {
	var (
		r                                    dailyreport.Report
		checklist, recountMorning, recountEv []byte
	)
	if err := row.Scan(&r.ProjectID, &r.Date, &checklist, &recountMorning, &recountEv, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return dailyreport.Report{}, err
	}
	if err := unmarshalNullable(checklist, &r.Checklist); err != nil {
		return dailyreport.Report{}, fmt.Errorf("decode checklist: %w", err)
	}
	if err := unmarshalNullable(recountMorning, &r.RecountMorning); err != nil {
		return dailyreport.Report{}, fmt.Errorf("decode recount_morning: %w", err)
	}
	if err := unmarshalNullable(recountEv, &r.RecountEvening); err != nil {
		return dailyreport.Report{}, fmt.Errorf("decode recount_evening: %w", err)
	}
	return r, nil
}

// unmarshalNullable leaves dst nil for SQL NULL or JSON null.
func unmarshalNullable[T any](raw []byte, dst **T) error {
	if len(raw) == 0 || string(raw) == "null" {
		*dst = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

const reportColumns = `project_id, date::text, checklist, recount_morning, recount_evening, created_at, updated_at`

// EnsureReport implements dailyreport.ReportRepository.
func (r *dailyReportRepository) EnsureReport(ctx context.Context, projectID, date string) (dailyreport.Report, error) {
	q := GetQuerier(ctx, r.db)

	// DO UPDATE with a no-op so RETURNING yields the existing row as well.
	query := `
		INSERT INTO daily_reports (project_id, date)
		VALUES ($1, $2::date)
		ON CONFLICT (project_id, date) DO UPDATE SET project_id = EXCLUDED.project_id
		RETURNING ` + reportColumns

	report, err := scanReport(q.QueryRow(ctx, query, projectID, date))
	if err != nil {
		return dailyreport.Report{}, fmt.Errorf("failed to ensure daily report: %w", err)
	}
	return report, nil
}

// GetReport implements dailyreport.ReportRepository.
func (r *dailyReportRepository) GetReport(ctx context.Context, projectID, date string) (dailyreport.Report, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + reportColumns + ` FROM daily_reports WHERE project_id = $1 AND date = $2::date`

	report, err := scanReport(q.QueryRow(ctx, query, projectID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dailyreport.Report{}, dailyreport.ErrReportNotFound
		}
		return dailyreport.Report{}, fmt.Errorf("failed to get daily report: %w", err)
	}
	return report, nil
}

// SaveChecklist implements dailyreport.ReportRepository.
func (r *dailyReportRepository) SaveChecklist(ctx context.Context, projectID, date string, checklist dailyreport.Checklist) error {
	payload, err := json.Marshal(checklist)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	return r.upsertSection(ctx, projectID, date, "checklist", payload)
}

// SaveRecount implements dailyreport.ReportRepository.
func (r *dailyReportRepository) SaveRecount(ctx context.Context, projectID, date string, phase dailyreport.Phase, recount dailyreport.Recount) error {
	column := "recount_morning"
	if phase == dailyreport.PhaseEvening {
		column = "recount_evening"
	}
	payload, err := json.Marshal(recount)
	if err != nil {
		return fmt.Errorf("encode recount: %w", err)
	}
	return r.upsertSection(ctx, projectID, date, column, payload)
}

// upsertSection merges one jsonb section into the day's document. column is never user input.
func (r *dailyReportRepository) upsertSection(ctx context.Context, projectID, date, column string, payload []byte) error {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO daily_reports (project_id, date, %[1]s)
		VALUES ($1, $2::date, $3::jsonb)
		ON CONFLICT (project_id, date) DO UPDATE
		SET %[1]s = EXCLUDED.%[1]s, updated_at = NOW()
	`, column)

	if _, err := q.Exec(ctx, query, projectID, date, payload); err != nil {
		return fmt.Errorf("failed to save %s: %w", column, err)
	}
	return nil
}

// GetLiveStock implements dailyreport.ReportRepository.
func (r *dailyReportRepository) GetLiveStock(ctx context.Context, projectID string) (dailyreport.LiveStock, error) {
	q := GetQuerier(ctx, r.db)

	var (
		raw   []byte
		stock = dailyreport.LiveStock{ProjectID: projectID}
	)
	err := q.QueryRow(ctx, `SELECT list, updated_at FROM live_stock WHERE project_id = $1`, projectID).Scan(&raw, &stock.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			stock.List = []dailyreport.ChecklistItem{}
			return stock, nil
		}
		return dailyreport.LiveStock{}, fmt.Errorf("failed to get live stock: %w", err)
	}
	if err := json.Unmarshal(raw, &stock.List); err != nil {
		return dailyreport.LiveStock{}, fmt.Errorf("decode live stock: %w", err)
	}
	return stock, nil
}

// ReplaceLiveStock implements dailyreport.ReportRepository.
func (r *dailyReportRepository) ReplaceLiveStock(ctx context.Context, projectID string, list []dailyreport.ChecklistItem) (dailyreport.LiveStock, error) {
	q := GetQuerier(ctx, r.db)

	if list == nil {
		list = []dailyreport.ChecklistItem{}
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return dailyreport.LiveStock{}, fmt.Errorf("encode live stock: %w", err)
	}

	stock := dailyreport.LiveStock{ProjectID: projectID, List: list}
	err = q.QueryRow(ctx, `
		INSERT INTO live_stock (project_id, list, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (project_id) DO UPDATE SET list = EXCLUDED.list, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`, projectID, payload).Scan(&stock.UpdatedAt)
	if err != nil {
		return dailyreport.LiveStock{}, fmt.Errorf("failed to replace live stock: %w", err)
	}
	return stock, nil
}

const blockColumns = `b.block_id, b.project_id, b.date::text, b.jefe_id, b.jefe_note, b.start_at, b.locked, b.updated_at`

func scanBlock(row pgx.Row) (dailyreport.CommentBlock, error) {
	var b dailyreport.CommentBlock
	err := row.Scan(&b.ID, &b.ProjectID, &b.Date, &b.JefeID, &b.JefeNote, &b.StartAt, &b.Locked, &b.UpdatedAt)
	return b, err
}

// ListBlocks implements dailyreport.ReportRepository.
func (r *dailyReportRepository) ListBlocks(ctx context.Context, projectID, date string) ([]dailyreport.CommentBlock, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+blockColumns+`
		FROM comment_blocks b
		WHERE b.project_id = $1 AND b.date = $2::date
		ORDER BY b.start_at ASC, b.block_id ASC
	`, projectID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list comment blocks: %w", err)
	}

	blocks := []dailyreport.CommentBlock{}
	index := map[string]int{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan comment block: %w", err)
		}
		b.Comments = []dailyreport.WorkerComment{}
		index[b.ID] = len(blocks)
		blocks = append(blocks, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list comment blocks: %w", err)
	}
	if len(blocks) == 0 {
		return blocks, nil
	}

	commentRows, err := q.Query(ctx, `
		SELECT block_id, id, user_id, name, text, created_at
		FROM worker_comments
		WHERE project_id = $1 AND date = $2::date
		ORDER BY created_at ASC
	`, projectID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker comments: %w", err)
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var (
			blockID string
			c       dailyreport.WorkerComment
		)
		if err := commentRows.Scan(&blockID, &c.ID, &c.UserID, &c.Name, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan worker comment: %w", err)
		}
		if i, ok := index[blockID]; ok {
			blocks[i].Comments = append(blocks[i].Comments, c)
		}
	}
	return blocks, commentRows.Err()
}

// GetBlock implements dailyreport.ReportRepository.
func (r *dailyReportRepository) GetBlock(ctx context.Context, projectID, date, blockID string) (dailyreport.CommentBlock, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanBlock(q.QueryRow(ctx, `
		SELECT `+blockColumns+`
		FROM comment_blocks b
		WHERE b.project_id = $1 AND b.date = $2::date AND b.block_id = $3
	`, projectID, date, blockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dailyreport.CommentBlock{}, dailyreport.ErrBlockNotFound
		}
		return dailyreport.CommentBlock{}, fmt.Errorf("failed to get comment block: %w", err)
	}
	return b, nil
}

// UpsertComment implements dailyreport.ReportRepository.
func (r *dailyReportRepository) UpsertComment(ctx context.Context, block dailyreport.CommentBlock) (dailyreport.CommentBlock, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanBlock(q.QueryRow(ctx, `
		INSERT INTO comment_blocks AS b (project_id, date, block_id, jefe_id, jefe_note, start_at)
		VALUES ($1, $2::date, $3, $4, $5, $6)
		ON CONFLICT (project_id, date, block_id) DO UPDATE
		SET jefe_id = EXCLUDED.jefe_id,
			jefe_note = EXCLUDED.jefe_note,
			updated_at = NOW()
		RETURNING `+blockColumns,
		block.ProjectID, block.Date, block.ID, block.JefeID, block.JefeNote, block.StartAt,
	))
	if err != nil {
		return dailyreport.CommentBlock{}, fmt.Errorf("failed to upsert comment: %w", err)
	}
	return b, nil
}

// UpsertJefeNote implements dailyreport.ReportRepository.
func (r *dailyReportRepository) UpsertJefeNote(ctx context.Context, block dailyreport.CommentBlock) (dailyreport.CommentBlock, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanBlock(q.QueryRow(ctx, `
		INSERT INTO comment_blocks AS b (project_id, date, block_id, jefe_id, jefe_note, start_at, locked)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7)
		ON CONFLICT (project_id, date, block_id) DO UPDATE
		SET jefe_id = EXCLUDED.jefe_id,
			jefe_note = EXCLUDED.jefe_note,
			start_at = EXCLUDED.start_at,
			locked = b.locked OR EXCLUDED.locked,
			updated_at = NOW()
		RETURNING `+blockColumns,
		block.ProjectID, block.Date, block.ID, block.JefeID, block.JefeNote, block.StartAt, block.Locked,
	))
	if err != nil {
		return dailyreport.CommentBlock{}, fmt.Errorf("failed to upsert jefe note: %w", err)
	}
	return b, nil
}

// AddWorkerComment implements dailyreport.ReportRepository.
func (r *dailyReportRepository) AddWorkerComment(ctx context.Context, projectID, date, blockID string, comment dailyreport.WorkerComment) (dailyreport.WorkerComment, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO worker_comments (id, project_id, date, block_id, user_id, name, text, created_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, comment.ID, projectID, date, blockID, comment.UserID, comment.Name, comment.Text, comment.CreatedAt).Scan(&comment.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return dailyreport.WorkerComment{}, dailyreport.ErrBlockNotFound
		}
		return dailyreport.WorkerComment{}, fmt.Errorf("failed to add worker comment: %w", err)
	}
	return comment, nil
}

// LockExpiredBlocks implements dailyreport.ReportRepository.
func (r *dailyReportRepository) LockExpiredBlocks(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE comment_blocks
		SET locked = TRUE, updated_at = NOW()
		WHERE locked = FALSE AND start_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to lock expired comment blocks: %w", err)
	}
	return tag.RowsAffected(), nil
}
