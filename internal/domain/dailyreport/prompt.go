package dailyreport

import "time"

// Prompt is the daily report step a supervisor should complete after pushing in.
type Prompt string

const (
	PromptChecklist      Prompt = "checklist"
	PromptRecountMorning Prompt = "recount_morning"
	PromptRecountEvening Prompt = "recount_evening"
	PromptNone           Prompt = "none"
)

// NextPrompt asks for the checklist first, then for the recount of the current phase.
func NextPrompt(report Report, now time.Time, loc *time.Location) Prompt {
	if report.Checklist == nil {
		return PromptChecklist
	}
	phase := PhaseAt(now, loc)
	if report.Recount(phase) != nil {
		return PromptNone
	}
	if phase == PhaseMorning {
		return PromptRecountMorning
	}
	return PromptRecountEvening
}
