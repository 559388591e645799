package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name   string
		event  Event
		format TitleFormat
		want   string
	}{
		{
			name:   "default format prefixes sport",
			event:  Event{Title: "Final", Sport: "Fussball"},
			format: TitleFormatSportEvent,
			want:   "Fussball - Final",
		},
		{
			name:   "event only drops sport",
			event:  Event{Title: "Final", Sport: "Fussball"},
			format: TitleFormatEventOnly,
			want:   "Final",
		},
		{
			name:   "empty sport stays bare",
			event:  Event{Title: "Final"},
			format: TitleFormatSportEvent,
			want:   "Final",
		},
		{
			name:   "marathon label is not prefixed",
			event:  Event{Title: "Berlin-Marathon", Sport: "Marathon"},
			format: TitleFormatSportEvent,
			want:   "Berlin-Marathon",
		},
		{
			name:   "diverse label is not prefixed regardless of case",
			event:  Event{Title: "Sportschau", Sport: "DIVERSE"},
			format: TitleFormatSportEvent,
			want:   "Sportschau",
		},
		{
			name:   "multi sport label is not prefixed",
			event:  Event{Title: "European Championships", Sport: "Multisportveranstaltung"},
			format: TitleFormatSportEvent,
			want:   "European Championships",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Summary(tt.format))
		})
	}
}

func TestParseTitleFormat(t *testing.T) {
	assert.Equal(t, TitleFormatEventOnly, ParseTitleFormat("event_only"))
	assert.Equal(t, TitleFormatSportEvent, ParseTitleFormat("sport_event"))
	assert.Equal(t, TitleFormatSportEvent, ParseTitleFormat(""))
	assert.Equal(t, TitleFormatSportEvent, ParseTitleFormat("bogus"))
}

func TestKey(t *testing.T) {
	ev := Event{
		StartDate:        "2025-03-01",
		EndDateExclusive: "2025-03-02",
		Title:            "Final",
		Sport:            "Fussball",
		Location:         "Berlin",
	}
	assert.Equal(t, "2025-03-01|2025-03-02|Final|Fussball|Berlin", ev.Key())

	ev.Sport = ""
	ev.Location = ""
	assert.Equal(t, "2025-03-01|2025-03-02|Final||", ev.Key())
}
