package lock

import (
	"fmt"
	"strconv"

	"github.com/louisbranch/showbinder/internal/binder"
)

// Change classifies a diff entry by whether either side is empty.
type Change string

const (
	ChangeAdded    Change = "added"
	ChangeRemoved  Change = "removed"
	ChangeModified Change = "modified"
)

// Entry is one tracked difference between two captured states.
type Entry struct {
	Section string `json:"section"`
	Field   string `json:"field"`
	Before  string `json:"before,omitempty"`
	After   string `json:"after,omitempty"`
	Change  Change `json:"change"`
}

// Diff compares two captured states across the fixed tracked categories:
// event identity, signals, transport, checklist progress, and assets.
// Comparison is shallow per field; nested collections are compared by count
// plus a few targeted per-signal fields rather than enumerated structurally.
// Diffing a state against itself yields no entries.
func Diff(before, after binder.Captured) []Entry {
	var entries []Entry
	add := func(section, field, beforeValue, afterValue string) {
		if beforeValue == afterValue {
			return
		}
		entries = append(entries, Entry{
			Section: section,
			Field:   field,
			Before:  beforeValue,
			After:   afterValue,
			Change:  classify(beforeValue, afterValue),
		})
	}

	add("Event", "Title", before.Title, after.Title)
	add("Event", "Air date", formatDate(before), formatDate(after))
	add("Event", "Venue", before.Venue, after.Venue)
	add("Event", "Route mode", before.Mode.String(), after.Mode.String())
	add("Event", "Route profile", before.ProfileID, after.ProfileID)

	add("Signals", "Signal count", countLabel(len(before.Signals)), countLabel(len(after.Signals)))
	diffSignals(before.Signals, after.Signals, add)

	add("Transport", "Primary protocol", before.Transport.PrimaryProtocol, after.Transport.PrimaryProtocol)
	add("Transport", "Backup protocol", before.Transport.BackupProtocol, after.Transport.BackupProtocol)
	add("Transport", "Return protocol", before.Transport.ReturnProtocol, after.Transport.ReturnProtocol)

	beforeDone, beforeTotal := before.ChecklistProgress()
	afterDone, afterTotal := after.ChecklistProgress()
	add("Checklist", "Items complete",
		fmt.Sprintf("%d/%d", beforeDone, beforeTotal),
		fmt.Sprintf("%d/%d", afterDone, afterTotal))

	add("Assets", "Document count", countLabel(len(before.Assets)), countLabel(len(after.Assets)))

	return entries
}

func diffSignals(before, after []binder.Signal, add func(section, field, beforeValue, afterValue string)) {
	beforeByNumber := make(map[int]binder.Signal, len(before))
	for _, signal := range before {
		beforeByNumber[signal.Number] = signal
	}
	for _, signal := range after {
		previous, ok := beforeByNumber[signal.Number]
		if !ok {
			continue
		}
		label := fmt.Sprintf("ISO-%d", signal.Number)
		add("Signals", label+" production alias", previous.ProductionAlias, signal.ProductionAlias)
		add("Signals", label+" patch", previous.Patch, signal.Patch)
	}
}

// countLabel renders a collection size, with zero shown as empty so pure
// count entries classify as added or removed.
func countLabel(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func formatDate(state binder.Captured) string {
	if state.AirDate.IsZero() {
		return ""
	}
	return state.AirDate.UTC().Format("2006-01-02")
}

func classify(before, after string) Change {
	switch {
	case before == "":
		return ChangeAdded
	case after == "":
		return ChangeRemoved
	default:
		return ChangeModified
	}
}
