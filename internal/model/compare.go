package model

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator performs the locale-aware, case- and diacritic-insensitive
// string comparison used for event ordering and sport lists. The tag is
// fixed so ordering never depends on the host locale.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.German, collate.Loose)
)

// CompareFolded compares two strings under the fixed collation.
func CompareFolded(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// Compare orders two events by start date, then exclusive end date, then
// summary (computed under the given title format, collated), then
// location (collated). ISO dates compare correctly as plain strings.
func Compare(a, b Event, format TitleFormat) int {
	if c := strings.Compare(a.StartDate, b.StartDate); c != 0 {
		return c
	}
	if c := strings.Compare(a.EndDateExclusive, b.EndDateExclusive); c != 0 {
		return c
	}
	if c := CompareFolded(a.Summary(format), b.Summary(format)); c != 0 {
		return c
	}
	return CompareFolded(a.Location, b.Location)
}

// SortEvents sorts events in place under Compare. The sort is stable so
// full ties keep their relative input order.
func SortEvents(events []Event, format TitleFormat) {
	sort.SliceStable(events, func(i, j int) bool {
		return Compare(events[i], events[j], format) < 0
	})
}
