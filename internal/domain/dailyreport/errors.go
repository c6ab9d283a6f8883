package dailyreport

import "errors"

var (
	ErrReportNotFound   = errors.New("daily report not found")
	ErrBlockNotFound    = errors.New("comment block not found")
	ErrBlockLocked      = errors.New("comment block is locked or expired")
	ErrNotPushedIn      = errors.New("supervisor has not pushed in on this project today")
	ErrInvalidPhase     = errors.New("phase must be morning or evening")
	ErrStockWriteFailed = errors.New("recount saved but live stock update failed")
	ErrJefeRequired     = errors.New("only a supervisor can perform this action")
)
