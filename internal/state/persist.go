package state

import (
	"encoding/json"

	applog "sportkal/internal/log"
	"sportkal/internal/model"
	"sportkal/internal/store"
	"sportkal/internal/taxonomy"
)

// StorageKey is the key snapshots are stored under in either store.
const StorageKey = "sportkal.state"

// maxDurableBytes is the UTF-8 size threshold above which a snapshot is
// kept in the ephemeral store only (200 KiB).
const maxDurableBytes = 200 * 1024

// Snapshot is the persisted selection/filter record. Nil slices and
// empty strings mean "field absent"; Restore leaves the corresponding
// state untouched for absent fields.
type Snapshot struct {
	SelectedEventIDs         []string `json:"selectedEventIds"`
	SelectedSports           []string `json:"selectedSports"`
	CollapsedSportCategories []string `json:"collapsedSportCategories"`
	Query                    string   `json:"query"`
	TitleFormat              string   `json:"titleFormat"`
	CalendarName             string   `json:"calendarName"`
	ShowSelectedOnly         bool     `json:"showSelectedOnly"`
}

// Snapshot captures the current selections and view options.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		SelectedEventIDs:         s.SelectedEventIDs(),
		SelectedSports:           s.SelectedSports(),
		CollapsedSportCategories: s.CollapsedCategories(),
		Query:                    s.query,
		TitleFormat:              string(s.titleFormat),
		CalendarName:             s.calendarName,
		ShowSelectedOnly:         s.showSelectedOnly,
	}
}

// Restore applies a snapshot. Entries referring to sports, events or
// categories no longer present are pruned; absent fields keep defaults.
func (s *State) Restore(snap Snapshot) {
	if snap.SelectedSports != nil {
		s.selectedSports = make(map[string]struct{})
		for _, sport := range snap.SelectedSports {
			if s.knownSport(sport) {
				s.selectedSports[sport] = struct{}{}
			}
		}
	}
	if snap.SelectedEventIDs != nil {
		s.selectedEventIDs = make(map[string]struct{})
		for _, id := range snap.SelectedEventIDs {
			if s.knownEventID(id) {
				s.selectedEventIDs[id] = struct{}{}
			}
		}
	}
	if snap.CollapsedSportCategories != nil {
		s.collapsedCategories = make(map[string]struct{})
		for _, name := range snap.CollapsedSportCategories {
			if taxonomy.IsKnownCategory(name) {
				s.collapsedCategories[name] = struct{}{}
			}
		}
	}
	if snap.Query != "" {
		s.query = snap.Query
	}
	if snap.TitleFormat == string(model.TitleFormatSportEvent) || snap.TitleFormat == string(model.TitleFormatEventOnly) {
		s.titleFormat = model.TitleFormat(snap.TitleFormat)
	}
	if snap.CalendarName != "" {
		s.calendarName = snap.CalendarName
	}
	s.showSelectedOnly = snap.ShowSelectedOnly
}

// decodeSnapshot decodes a persisted record field by field so unknown or
// type-mismatched fields are ignored rather than rejected.
func decodeSnapshot(data []byte) (Snapshot, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, false
	}

	var snap Snapshot
	tryUnmarshal(raw["selectedEventIds"], &snap.SelectedEventIDs)
	tryUnmarshal(raw["selectedSports"], &snap.SelectedSports)
	tryUnmarshal(raw["collapsedSportCategories"], &snap.CollapsedSportCategories)
	tryUnmarshal(raw["query"], &snap.Query)
	tryUnmarshal(raw["titleFormat"], &snap.TitleFormat)
	tryUnmarshal(raw["calendarName"], &snap.CalendarName)
	tryUnmarshal(raw["showSelectedOnly"], &snap.ShowSelectedOnly)
	return snap, true
}

func tryUnmarshal(raw json.RawMessage, out any) {
	if raw == nil {
		return
	}
	// Per-field failures leave the zero value in place.
	_ = json.Unmarshal(raw, out)
}

// Persister writes snapshots to a durable store while they fit under the
// size bound and to the ephemeral store otherwise; the two stores are
// mutually exclusive at any time. All operations are best-effort.
type Persister struct {
	durable   store.Store
	ephemeral store.Store
}

// NewPersister wires the two stores. Either may be nil, in which case
// that tier is simply skipped.
func NewPersister(durable, ephemeral store.Store) *Persister {
	return &Persister{durable: durable, ephemeral: ephemeral}
}

// Save serializes the snapshot and routes it to the appropriate store,
// clearing the stale entry in the other one.
func (p *Persister) Save(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		logger := applog.WithComponent("state")
		logger.Warn().Err(err).Msg("snapshot marshal failed")
		return
	}

	if len(data) <= maxDurableBytes {
		if p.durable != nil {
			p.durable.Write(StorageKey, data)
		}
		if p.ephemeral != nil {
			p.ephemeral.Remove(StorageKey)
		}
		return
	}

	if p.ephemeral != nil {
		p.ephemeral.Write(StorageKey, data)
	}
	if p.durable != nil {
		p.durable.Remove(StorageKey)
	}
}

// Load reads back the last snapshot, preferring the durable store.
// Absent or corrupt data yields ok == false and never fails the boot
// sequence.
func (p *Persister) Load() (Snapshot, bool) {
	for _, st := range []store.Store{p.durable, p.ephemeral} {
		if st == nil {
			continue
		}
		data, ok := st.Read(StorageKey)
		if !ok {
			continue
		}
		if snap, decoded := decodeSnapshot(data); decoded {
			return snap, true
		}
		logger := applog.WithComponent("state")
		logger.Warn().Msg("ignoring corrupt persisted state")
	}
	return Snapshot{}, false
}
