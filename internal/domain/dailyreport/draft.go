package dailyreport

// RecountDraft collects recount changes before saving. "Mark as used" and manual
// adjustments share one entry per item id; the last write wins.
type RecountDraft struct {
	order []string
	diffs map[string]int
}

func NewRecountDraft() *RecountDraft {
	return &RecountDraft{diffs: make(map[string]int)}
}

// MarkUsed records the whole on-hand quantity as consumed.
func (d *RecountDraft) MarkUsed(item ChecklistItem) {
	d.Set(item.ID, -item.Qty)
}

func (d *RecountDraft) Set(id string, diff int) {
	if _, ok := d.diffs[id]; !ok {
		d.order = append(d.order, id)
	}
	d.diffs[id] = diff
}

// Deltas lists non-zero entries in first-touch order.
func (d *RecountDraft) Deltas() []Delta {
	deltas := make([]Delta, 0, len(d.order))
	for _, id := range d.order {
		if diff := d.diffs[id]; diff != 0 {
			deltas = append(deltas, Delta{ID: id, Diff: diff})
		}
	}
	return deltas
}
