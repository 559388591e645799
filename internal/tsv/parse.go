// Package tsv loads and parses the tab-separated source document into the
// deduplicated, ordered Event collection.
package tsv

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"sportkal/internal/model"
)

// datePattern matches one D.M.Y date inside the date column. The column
// may contain arbitrary surrounding text; only the matches count.
var datePattern = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`)

// headerSentinel identifies the header row by its first column. The
// source documents are German; a header in any other language simply
// fails date parsing and is dropped the same way.
const headerSentinel = "datum"

const isoDate = "2006-01-02"

// ParseDocument turns raw TSV text into the ordered Event collection.
//
// Per line: blank lines and "###" comments are skipped, rows with fewer
// than three columns are skipped, the header row is skipped, rows whose
// date column contains no D.M.Y match are dropped silently, and exact
// duplicate rows are dropped with the first occurrence winning. The
// result is sorted by start date, exclusive end date, default-format
// summary and location.
func ParseDocument(raw string) []model.Event {
	raw = strings.TrimPrefix(raw, "\ufeff")

	seen := make(map[string]struct{})
	events := make([]model.Event, 0)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "###") {
			continue
		}

		columns := strings.Split(line, "\t")
		for i, col := range columns {
			columns[i] = strings.TrimSpace(col)
		}
		if len(columns) < 3 {
			continue
		}
		if strings.EqualFold(columns[0], headerSentinel) {
			continue
		}

		startDate, endDateExclusive, ok := ParseDateRange(columns[0])
		if !ok {
			continue
		}

		title := columns[1]
		sport := columns[2]
		location := joinLocation(columns[3:])

		ev := model.Event{
			StartDate:        startDate,
			EndDateExclusive: endDateExclusive,
			Title:            title,
			Sport:            sport,
			Location:         location,
		}
		key := ev.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		ev.ID = model.FingerprintHex(key)
		events = append(events, ev)
	}

	model.SortEvents(events, model.TitleFormatSportEvent)
	return events
}

// ParseDateRange scans the date column for D.M.Y matches and derives the
// half-open ISO date range. One match yields a single-day event; with two
// or more matches the range runs from the first through the second match
// inclusive. Ordering of the two dates is an input assumption, not
// validated here.
func ParseDateRange(raw string) (startDate, endDateExclusive string, ok bool) {
	matches := datePattern.FindAllString(raw, -1)
	if len(matches) == 0 {
		return "", "", false
	}

	start := parseDayMonthYear(matches[0])
	end := start
	if len(matches) >= 2 {
		end = parseDayMonthYear(matches[1])
	}

	return start.Format(isoDate), end.AddDate(0, 0, 1).Format(isoDate), true
}

// parseDayMonthYear interprets a D.M.Y match as a UTC calendar date.
// Out-of-range day/month values roll over, matching time.Date semantics.
func parseDayMonthYear(value string) time.Time {
	parts := strings.SplitN(value, ".", 3)
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// joinLocation joins the trailing columns with single spaces, dropping
// empty fragments.
func joinLocation(columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		if col != "" {
			parts = append(parts, col)
		}
	}
	return strings.Join(parts, " ")
}
