package followup

import (
	"sync"
	"time"
)

// Stage labels as shown in the dashboard
var stageLabels = map[Stage]string{
	StageFirst:  "First Follow-up",
	StageSecond: "Second Follow-up",
	StageThird:  "Final Follow-up",
}

// Label returns the display label for a follow-up stage
func Label(stage Stage) string {
	return stageLabels[stage]
}

// OverdueEntry points at one overdue, unsent follow-up stage of a lead
type OverdueEntry struct {
	LeadID   string    `json:"leadId"`
	LeadName string    `json:"leadName"`
	Label    string    `json:"label"`
	DueDate  time.Time `json:"dueDate"`
}

// TrackedLead pairs a lead's identity with its follow-up aggregate for the
// overdue scan
type TrackedLead struct {
	ID       string
	Name     string
	Tracking Tracking
}

// Scan walks the leads in the order given and collects one entry per
// overdue, unsent stage. Entries keep discovery order; they are not
// time-sorted.
func Scan(leads []TrackedLead, now time.Time) []OverdueEntry {
	var entries []OverdueEntry
	for _, lead := range leads {
		for _, stage := range []Stage{StageFirst, StageSecond, StageThird} {
			if !lead.Tracking.IsOverdue(stage, now) {
				continue
			}
			st, _ := lead.Tracking.FollowUpStage(stage)
			entries = append(entries, OverdueEntry{
				LeadID:   lead.ID,
				LeadName: lead.Name,
				Label:    Label(stage),
				DueDate:  *st.DueDate,
			})
		}
	}
	return entries
}

// Board is the shared notification state consumed by the navigation layer:
// the current overdue list plus the "bring this lead into focus" signal.
// One writer (the refresh worker), many concurrent HTTP readers.
type Board struct {
	mu      sync.RWMutex
	entries []OverdueEntry
	focused string
}

func NewBoard() *Board {
	return &Board{}
}

// Update replaces the overdue list with the result of a fresh scan
func (b *Board) Update(entries []OverdueEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = entries
}

// Entries returns a copy of the current overdue list
func (b *Board) Entries() []OverdueEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]OverdueEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Count returns the number of overdue entries
func (b *Board) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Focus signals the navigation layer to open the given lead
func (b *Board) Focus(leadID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = leadID
}

// Focused returns the lead id last signalled for focus, empty if none
func (b *Board) Focused() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.focused
}

// ClearFocus drops the focus signal once the navigation layer consumed it
func (b *Board) ClearFocus() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = ""
}
