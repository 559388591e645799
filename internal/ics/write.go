// Package ics serializes events into an RFC 5545 calendar document
// restricted to all-day, floating-date entries.
package ics

import (
	"strings"
	"unicode/utf16"

	"sportkal/internal/model"
)

const (
	prodID    = "-//Sportkalender//Calendar Export//EN"
	uidSuffix = "@sportkalender"

	// fixedDTStamp keeps output reproducible byte-for-byte for identical
	// inputs; real creation time is deliberately not recorded.
	fixedDTStamp = "20000101T000000Z"

	// maxLineUnits is the fold limit, counted in UTF-16 code units to
	// stay byte-compatible with the reference exporter rather than the
	// octet counting RFC 5545 describes.
	maxLineUnits = 75
)

// Encode serializes the given events into a calendar document. The input
// is re-sorted under the requested title format; output is deterministic
// for identical (events, calendarName, format) and ends with a CRLF.
func Encode(events []model.Event, calendarName string, format model.TitleFormat) []byte {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	model.SortEvents(sorted, format)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"CALSCALE:GREGORIAN",
		"PRODID:" + prodID,
		"X-WR-CALNAME:" + EscapeText(calendarName),
	}

	for _, ev := range sorted {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+model.FingerprintHex(ev.Key())+uidSuffix,
			"DTSTAMP:"+fixedDTStamp,
			"DTSTART;VALUE=DATE:"+basicDate(ev.StartDate),
			"DTEND;VALUE=DATE:"+basicDate(ev.EndDateExclusive),
			"SUMMARY:"+EscapeText(ev.Summary(format)),
		)
		if ev.Location != "" {
			lines = append(lines, "LOCATION:"+EscapeText(ev.Location))
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR")

	var b strings.Builder
	for _, line := range lines {
		for _, folded := range FoldLine(line) {
			b.WriteString(folded)
			b.WriteString("\r\n")
		}
	}
	return []byte(b.String())
}

var textEscaper = strings.NewReplacer(
	"\\", "\\\\",
	";", "\\;",
	",", "\\,",
	"\n", "\\n",
)

// EscapeText escapes a free-text property value. Applied before folding.
func EscapeText(value string) string {
	return textEscaper.Replace(value)
}

// FoldLine splits an over-length content line into a leading line of
// exactly maxLineUnits and space-prefixed continuation lines.
func FoldLine(line string) []string {
	units := utf16.Encode([]rune(line))
	if len(units) <= maxLineUnits {
		return []string{line}
	}

	folded := make([]string, 0, len(units)/maxLineUnits+1)
	remaining := units
	for len(remaining) > maxLineUnits {
		folded = append(folded, string(utf16.Decode(remaining[:maxLineUnits])))
		rest := remaining[maxLineUnits:]
		remaining = make([]uint16, 0, len(rest)+1)
		remaining = append(remaining, uint16(' '))
		remaining = append(remaining, rest...)
	}
	return append(folded, string(utf16.Decode(remaining)))
}

// basicDate converts an ISO date into the 8-digit basic form.
func basicDate(isoDate string) string {
	return strings.ReplaceAll(isoDate, "-", "")
}
