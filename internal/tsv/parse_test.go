package tsv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportkal/internal/model"
)

func TestParseDocumentSingleEvent(t *testing.T) {
	doc := strings.Join([]string{
		"### Sportkalender 2025",
		"Datum\tEvent\tSportart\tOrt",
		"",
		"01.03.2025\tFinal\tFussball\tBerlin",
	}, "\n")

	events := ParseDocument(doc)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "2025-03-01", ev.StartDate)
	assert.Equal(t, "2025-03-02", ev.EndDateExclusive)
	assert.Equal(t, "Final", ev.Title)
	assert.Equal(t, "Fussball", ev.Sport)
	assert.Equal(t, "Berlin", ev.Location)
	assert.Equal(t, "Fussball - Final", ev.Summary(model.TitleFormatSportEvent))
	assert.Len(t, ev.ID, 8)
}

func TestParseDocumentDateRange(t *testing.T) {
	events := ParseDocument("01.03.2025 - 03.03.2025\tCup\tTennis")
	require.Len(t, events, 1)
	assert.Equal(t, "2025-03-01", events[0].StartDate)
	assert.Equal(t, "2025-03-04", events[0].EndDateExclusive)
}

func TestParseDocumentSkipsMalformedRows(t *testing.T) {
	doc := strings.Join([]string{
		"no date here\tEvent\tSport",
		"too\tfew",
		"01.03.2025\tKept\tTennis",
	}, "\n")

	events := ParseDocument(doc)
	require.Len(t, events, 1)
	assert.Equal(t, "Kept", events[0].Title)
}

func TestParseDocumentHeaderDetection(t *testing.T) {
	// Case-insensitive sentinel match.
	events := ParseDocument("DATUM\tEvent\tSportart\n01.03.2025\tFinal\tTennis")
	require.Len(t, events, 1)

	// A foreign-language header carries no date and is dropped by the
	// date scan instead.
	events = ParseDocument("Date\tEvent\tSport\n01.03.2025\tFinal\tTennis")
	require.Len(t, events, 1)
	assert.Equal(t, "Final", events[0].Title)
}

func TestParseDocumentDedupFirstWins(t *testing.T) {
	doc := strings.Join([]string{
		"01.03.2025\tFinal\tFussball\tBerlin",
		"01.03.2025\tFinal\tFussball\tBerlin",
		"01.03.2025\tFinal\tFussball\tHamburg",
	}, "\n")

	events := ParseDocument(doc)
	assert.Len(t, events, 2)
}

func TestParseDocumentLocationJoin(t *testing.T) {
	events := ParseDocument("01.03.2025\tFinal\tFussball\tOlympiastadion\t\tBerlin")
	require.Len(t, events, 1)
	assert.Equal(t, "Olympiastadion Berlin", events[0].Location)
}

func TestParseDocumentCRLFAndBOM(t *testing.T) {
	doc := "\ufeffDatum\tEvent\tSportart\r\n01.03.2025\tFinal\tTennis\r\n"
	events := ParseDocument(doc)
	require.Len(t, events, 1)
	assert.Equal(t, "Final", events[0].Title)
}

func TestParseDocumentOrdering(t *testing.T) {
	doc := strings.Join([]string{
		"02.03.2025\tLater\tTennis",
		"01.03.2025\tbravo\tTennis",
		"01.03.2025\tAlpha\tTennis",
	}, "\n")

	events := ParseDocument(doc)
	require.Len(t, events, 3)
	assert.Equal(t, "Alpha", events[0].Title)
	assert.Equal(t, "bravo", events[1].Title)
	assert.Equal(t, "Later", events[2].Title)
}

func TestParseDocumentIdempotent(t *testing.T) {
	doc := strings.Join([]string{
		"01.03.2025\tFinal\tFussball\tBerlin",
		"05.03.2025 - 07.03.2025\tCup\tTennis\tHamburg",
		"02.03.2025\tOpen\tDarts",
	}, "\n")

	first := ParseDocument(doc)
	second := ParseDocument(doc)
	assert.Equal(t, first, second)
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantStart string
		wantEnd   string
		wantOK    bool
	}{
		{name: "single date", raw: "01.03.2025", wantStart: "2025-03-01", wantEnd: "2025-03-02", wantOK: true},
		{name: "single digit day and month", raw: "1.3.2025", wantStart: "2025-03-01", wantEnd: "2025-03-02", wantOK: true},
		{name: "two dates", raw: "01.03.2025 - 03.03.2025", wantStart: "2025-03-01", wantEnd: "2025-03-04", wantOK: true},
		{name: "extra matches beyond two ignored", raw: "01.03.2025, 03.03.2025, 09.09.2025", wantStart: "2025-03-01", wantEnd: "2025-03-04", wantOK: true},
		{name: "surrounding text", raw: "ab 01.03.2025 (Finale)", wantStart: "2025-03-01", wantEnd: "2025-03-02", wantOK: true},
		{name: "no match", raw: "TBD", wantOK: false},
		{name: "two digit year is no match", raw: "01.03.25", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := ParseDateRange(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantStart, start)
				assert.Equal(t, tt.wantEnd, end)
			}
		})
	}
}

func TestParseDateRangeSingleDaySpansOneDay(t *testing.T) {
	for _, raw := range []string{"01.01.2025", "28.02.2025", "31.12.2025"} {
		start, end, ok := ParseDateRange(raw)
		assert.True(t, ok)
		assert.Less(t, start, end)
	}

	// Month boundary rollover.
	start, end, _ := ParseDateRange("31.03.2025")
	assert.Equal(t, "2025-03-31", start)
	assert.Equal(t, "2025-04-01", end)
}
