package dailyreport

import "time"

// BlockDuration is the width of a comment block window.
const BlockDuration = 2 * time.Hour

// Block identifies a comment block: id is the "HH:MM" wall-clock start of the window.
type Block struct {
	ID      string    `json:"id"`
	StartAt time.Time `json:"start_at"`
}

// CurrentBlock maps now onto the 2-hour window counted from pushIn.
// Times before pushIn fall in window 0.
func CurrentBlock(pushIn, now time.Time, loc *time.Location) Block {
	elapsed := now.Sub(pushIn)
	if elapsed < 0 {
		elapsed = 0
	}
	index := elapsed / BlockDuration
	startAt := pushIn.Add(index * BlockDuration)
	return Block{
		ID:      startAt.In(loc).Format("15:04"),
		StartAt: startAt,
	}
}

// WallClockBlock keys a block by the current local hour ("HH:00"), independent of push-in.
func WallClockBlock(now time.Time, loc *time.Location) Block {
	local := now.In(loc)
	startAt := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
	return Block{
		ID:      startAt.Format("15:04"),
		StartAt: startAt,
	}
}
