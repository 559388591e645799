// Package model defines the core Event type and the deterministic
// identity/ordering rules shared by the parser, the state layer and the
// calendar encoder.
package model

import "strings"

// TitleFormat selects how an event's calendar summary is composed.
type TitleFormat string

const (
	// TitleFormatSportEvent renders "<sport> - <title>" (the default).
	TitleFormatSportEvent TitleFormat = "sport_event"
	// TitleFormatEventOnly renders the bare title.
	TitleFormatEventOnly TitleFormat = "event_only"
)

// ParseTitleFormat maps a raw string onto a known TitleFormat.
// Unknown values fall back to the default format.
func ParseTitleFormat(raw string) TitleFormat {
	if TitleFormat(raw) == TitleFormatEventOnly {
		return TitleFormatEventOnly
	}
	return TitleFormatSportEvent
}

// Event is one calendar-worthy row parsed from the source document.
// Events are immutable once created; ID doubles as the dedup and
// selection key.
type Event struct {
	// ID is the 8-hex-digit content fingerprint of Key().
	ID string

	// StartDate is the first included day as an ISO date (YYYY-MM-DD).
	StartDate string
	// EndDateExclusive is the day after the last included day, so the
	// event covers the half-open range [StartDate, EndDateExclusive).
	// The minimum span is one day; the two dates are never equal.
	EndDateExclusive string

	Title    string
	Sport    string // may be empty
	Location string // may be empty; trailing columns joined with spaces
}

// sportPrefixExceptions lists sport labels that read awkwardly when
// prefixed onto the title, compared case-insensitively.
var sportPrefixExceptions = map[string]struct{}{
	"diverse":                 {},
	"multisportveranstaltung": {},
	"marathon":                {},
}

// Summary composes the display/calendar summary for the event under the
// given title format.
func (e Event) Summary(format TitleFormat) string {
	if format == TitleFormatEventOnly {
		return e.Title
	}
	if e.Sport == "" {
		return e.Title
	}
	if _, skip := sportPrefixExceptions[strings.ToLower(e.Sport)]; skip {
		return e.Title
	}
	return e.Sport + " - " + e.Title
}

// Key returns the canonical field tuple the fingerprint and the calendar
// UID are derived from.
func (e Event) Key() string {
	return e.StartDate + "|" + e.EndDateExclusive + "|" + e.Title + "|" + e.Sport + "|" + e.Location
}
