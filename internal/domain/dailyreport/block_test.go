package dailyreport

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBlock(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	pushIn := time.Date(2026, 3, 10, 11, 15, 0, 0, time.UTC) // 08:15 local

	tests := []struct {
		name      string
		elapsed   time.Duration
		wantID    string
		wantStart time.Time
	}{
		{"at push-in", 0, "08:15", pushIn},
		{"end of first window", 119 * time.Minute, "08:15", pushIn},
		{"second window", 121 * time.Minute, "10:15", pushIn.Add(2 * time.Hour)},
		{"exactly two hours", 2 * time.Hour, "10:15", pushIn.Add(2 * time.Hour)},
		{"before push-in", -30 * time.Minute, "08:15", pushIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := CurrentBlock(pushIn, pushIn.Add(tt.elapsed), loc)
			assert.Equal(t, tt.wantID, block.ID)
			assert.True(t, tt.wantStart.Equal(block.StartAt))
		})
	}
}

func TestWallClockBlock(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 17, 42, 10, 0, time.UTC) // 14:42 local
	block := WallClockBlock(now, loc)

	assert.Equal(t, "14:00", block.ID)
	assert.True(t, block.StartAt.Equal(time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)))
}

func TestCommentBlock_Editable(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	open := CommentBlock{StartAt: start}
	assert.True(t, open.Editable(start.Add(time.Hour)))
	assert.True(t, open.Editable(start.Add(119*time.Minute)))
	assert.False(t, open.Editable(start.Add(2*time.Hour)))

	locked := CommentBlock{StartAt: start, Locked: true}
	assert.False(t, locked.Editable(start))
}

func TestPhaseAt(t *testing.T) {
	assert.Equal(t, PhaseMorning, PhaseAt(time.Date(2026, 3, 10, 11, 59, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, PhaseEvening, PhaseAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), time.UTC))
}

func TestNextPrompt(t *testing.T) {
	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	checklist := &Checklist{JefeID: "j", List: []ChecklistItem{}}
	recount := &Recount{JefeID: "j", List: []Delta{}}

	assert.Equal(t, PromptChecklist, NextPrompt(Report{}, morning, time.UTC))
	assert.Equal(t, PromptRecountMorning, NextPrompt(Report{Checklist: checklist}, morning, time.UTC))
	assert.Equal(t, PromptRecountEvening, NextPrompt(Report{Checklist: checklist, RecountMorning: recount}, evening, time.UTC))
	assert.Equal(t, PromptNone, NextPrompt(Report{Checklist: checklist, RecountMorning: recount}, morning, time.UTC))
}
