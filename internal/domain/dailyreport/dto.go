package dailyreport

import (
	"regexp"
	"time"

	"github.com/faena-app/faena-backend/internal/pkg/validator"
)

var blockIDRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ========================================
// CHECKLIST DTOs
// ========================================

type SaveChecklistRequest struct {
	ProjectID string          `json:"-"`
	List      []ChecklistItem `json:"list"`
}

func (r *SaveChecklistRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	validateItems(&errs, r.List)

	return errs.Err()
}

func validateItems(errs *validator.ValidationErrors, list []ChecklistItem) {
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		if validator.IsEmpty(item.ID) {
			errs.Add("list", "every item needs an id")
			return
		}
		if _, dup := seen[item.ID]; dup {
			errs.Add("list", "item ids must be unique: "+item.ID)
			return
		}
		seen[item.ID] = struct{}{}
		if validator.IsEmpty(item.Name) {
			errs.Add("list", "item "+item.ID+" needs a name")
			return
		}
		if item.Qty < 0 {
			errs.Add("list", "item "+item.ID+" has a negative qty")
			return
		}
		if item.Type != ItemMaterial && item.Type != ItemTool {
			errs.Add("list", "item "+item.ID+" type must be mat or tool")
			return
		}
	}
}

// ========================================
// RECOUNT DTOs
// ========================================

// RecountChange is one edit made while drafting: either "used" or a manual diff.
type RecountChange struct {
	ID   string `json:"id"`
	Used bool   `json:"used,omitempty"`
	Diff *int   `json:"diff,omitempty"`
}

type SaveRecountRequest struct {
	ProjectID string          `json:"-"`
	Phase     Phase           `json:"phase"`
	Changes   []RecountChange `json:"changes"`
}

func (r *SaveRecountRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	if r.Phase != "" && !r.Phase.Valid() {
		errs.Add("phase", ErrInvalidPhase.Error())
	}
	for _, c := range r.Changes {
		if validator.IsEmpty(c.ID) {
			errs.Add("changes", "every change needs an item id")
			break
		}
		if c.Used == (c.Diff != nil) {
			errs.Add("changes", "change "+c.ID+" must set exactly one of used or diff")
			break
		}
	}

	return errs.Err()
}

// Draft replays the changes in order against baseline quantities.
func (r *SaveRecountRequest) Draft(baseline []ChecklistItem) *RecountDraft {
	items := make(map[string]ChecklistItem, len(baseline))
	for _, item := range baseline {
		items[item.ID] = item
	}

	draft := NewRecountDraft()
	for _, c := range r.Changes {
		if c.Used {
			if item, ok := items[c.ID]; ok {
				draft.MarkUsed(item)
			}
			continue
		}
		draft.Set(c.ID, *c.Diff)
	}
	return draft
}

// ========================================
// COMMENT BLOCK DTOs
// ========================================

type CommentRequest struct {
	ProjectID string `json:"-"`
	Text      string `json:"text"`
}

func (r *CommentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	if validator.IsEmpty(r.Text) {
		errs.Add("text", "text is required")
	}
	if len(r.Text) > 2000 {
		errs.Add("text", "text must not exceed 2000 characters")
	}

	return errs.Err()
}

type JefeNoteRequest struct {
	ProjectID string `json:"-"`
	Text      string `json:"text"`
	LockNow   bool   `json:"lock_now"`
}

func (r *JefeNoteRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	if len(r.Text) > 2000 {
		errs.Add("text", "text must not exceed 2000 characters")
	}

	return errs.Err()
}

type WorkerCommentRequest struct {
	ProjectID string `json:"-"`
	BlockID   string `json:"-"`
	Text      string `json:"text"`
}

func (r *WorkerCommentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	if !blockIDRegex.MatchString(r.BlockID) {
		errs.Add("block_id", "block_id must be in HH:MM format")
	}
	if validator.IsEmpty(r.Text) {
		errs.Add("text", "text is required")
	}
	if len(r.Text) > 1000 {
		errs.Add("text", "text must not exceed 1000 characters")
	}

	return errs.Err()
}

// ========================================
// RESPONSES
// ========================================

type CommentBlockResponse struct {
	ID       string          `json:"id"`
	JefeID   *string         `json:"jefe_id"`
	JefeNote *string         `json:"jefe_note"`
	StartAt  string          `json:"start_at"`
	Locked   bool            `json:"locked"`
	Editable bool            `json:"editable"`
	Comments []WorkerComment `json:"comments"`
}

type ReportResponse struct {
	ProjectID       string                 `json:"project_id"`
	Date            string                 `json:"date"`
	Checklist       *Checklist             `json:"checklist"`
	ChecklistSeeded bool                   `json:"checklist_seeded"`
	RecountMorning  *Recount               `json:"recount_morning"`
	RecountEvening  *Recount               `json:"recount_evening"`
	Comments        []CommentBlockResponse `json:"comments"`
}

type LiveStockResponse struct {
	ProjectID string          `json:"project_id"`
	List      []ChecklistItem `json:"list"`
	UpdatedAt *string         `json:"updated_at"`
}

func ToBlockResponse(b CommentBlock, now time.Time) CommentBlockResponse {
	comments := b.Comments
	if comments == nil {
		comments = []WorkerComment{}
	}
	return CommentBlockResponse{
		ID:       b.ID,
		JefeID:   b.JefeID,
		JefeNote: b.JefeNote,
		StartAt:  b.StartAt.Format(time.RFC3339),
		Locked:   b.Locked,
		Editable: b.Editable(now),
		Comments: comments,
	}
}

func ToLiveStockResponse(s LiveStock) LiveStockResponse {
	list := s.List
	if list == nil {
		list = []ChecklistItem{}
	}
	resp := LiveStockResponse{ProjectID: s.ProjectID, List: list}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updated
	}
	return resp
}
