package dailyreport

import (
	"time"
)

type ItemType string

const (
	ItemMaterial ItemType = "mat"
	ItemTool     ItemType = "tool"
)

type ChecklistItem struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Qty  int      `json:"qty"`
	Unit *string  `json:"unit,omitempty"`
	Type ItemType `json:"type"`
}

// Delta is a signed quantity change recorded by a recount, not an absolute value.
type Delta struct {
	ID   string `json:"id"`
	Diff int    `json:"diff"`
}

type Checklist struct {
	JefeID    string          `json:"jefe_id"`
	CreatedAt time.Time       `json:"created_at"`
	List      []ChecklistItem `json:"list"`
}

type Recount struct {
	JefeID    string    `json:"jefe_id"`
	CreatedAt time.Time `json:"created_at"`
	List      []Delta   `json:"list"`
}

type Phase string

const (
	PhaseMorning Phase = "morning"
	PhaseEvening Phase = "evening"
)

func (p Phase) Valid() bool {
	return p == PhaseMorning || p == PhaseEvening
}

// PhaseAt splits the day at 12:00 local time.
func PhaseAt(now time.Time, loc *time.Location) Phase {
	if now.In(loc).Hour() < 12 {
		return PhaseMorning
	}
	return PhaseEvening
}

// Report is the per-project, per-day document. Absent sections are nil.
type Report struct {
	ProjectID      string
	Date           string
	Checklist      *Checklist
	RecountMorning *Recount
	RecountEvening *Recount
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r Report) Recount(phase Phase) *Recount {
	if phase == PhaseMorning {
		return r.RecountMorning
	}
	return r.RecountEvening
}

// LiveStock is the running on-hand snapshot of a project, shared across days.
type LiveStock struct {
	ProjectID string
	List      []ChecklistItem
	UpdatedAt time.Time
}

type WorkerComment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentBlock struct {
	ID        string
	ProjectID string
	Date      string
	JefeID    *string
	JefeNote  *string
	StartAt   time.Time
	Locked    bool
	Comments  []WorkerComment
	UpdatedAt time.Time
}

// Editable reports whether a supervisor may still write to the block.
func (b CommentBlock) Editable(now time.Time) bool {
	return !b.Locked && now.Sub(b.StartAt) < BlockDuration
}

// ApplyDeltas returns a copy of list with qty += diff for every delta whose id is present.
// Unknown ids are skipped and quantities never drop below zero.
func ApplyDeltas(list []ChecklistItem, deltas []Delta) []ChecklistItem {
	out := make([]ChecklistItem, len(list))
	copy(out, list)

	index := make(map[string]int, len(out))
	for i, item := range out {
		index[item.ID] = i
	}

	for _, d := range deltas {
		i, ok := index[d.ID]
		if !ok {
			continue
		}
		qty := out[i].Qty + d.Diff
		if qty < 0 {
			qty = 0
		}
		out[i].Qty = qty
	}
	return out
}
