// Package state holds the working set of sport filters, event selections
// and view options, and derives the visible and export projections.
package state

import (
	"strings"

	"sportkal/internal/model"
	"sportkal/internal/taxonomy"
)

// State is the single live selection/filter state for a session. It is
// owned by one control flow; callers that serve concurrent requests must
// serialize access themselves.
type State struct {
	events []model.Event
	sports []string // distinct non-empty sports, sorted case-insensitively

	selectedSports      map[string]struct{}
	selectedEventIDs    map[string]struct{}
	collapsedCategories map[string]struct{}

	query            string
	titleFormat      model.TitleFormat
	showSelectedOnly bool
	calendarName     string
}

// New creates a State over the loaded event collection. All sports and
// all events start selected.
func New(events []model.Event, calendarName string) *State {
	s := &State{
		events:              events,
		selectedSports:      make(map[string]struct{}),
		selectedEventIDs:    make(map[string]struct{}),
		collapsedCategories: make(map[string]struct{}),
		titleFormat:         model.TitleFormatSportEvent,
		calendarName:        calendarName,
	}

	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.Sport != "" {
			if _, ok := seen[ev.Sport]; !ok {
				seen[ev.Sport] = struct{}{}
				s.sports = append(s.sports, ev.Sport)
			}
		}
		s.selectedEventIDs[ev.ID] = struct{}{}
	}
	sortFolded(s.sports)
	for _, sport := range s.sports {
		s.selectedSports[sport] = struct{}{}
	}
	return s
}

func sortFolded(values []string) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && model.CompareFolded(values[j], values[j-1]) < 0; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}

// ReplaceEvents swaps in a freshly loaded event collection, carrying the
// current selections over through a snapshot so entries referring to
// sports or events no longer present are pruned.
func (s *State) ReplaceEvents(events []model.Event) {
	snap := s.Snapshot()
	*s = *New(events, s.calendarName)
	s.Restore(snap)
}

// Events returns the full ordered event collection.
func (s *State) Events() []model.Event {
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Sports returns the distinct sports present, sorted case-insensitively.
func (s *State) Sports() []string {
	out := make([]string, len(s.sports))
	copy(out, s.sports)
	return out
}

// GroupedSports returns the sports bucketed by category for display.
func (s *State) GroupedSports() []taxonomy.Group {
	return taxonomy.GroupSports(s.sports)
}

func (s *State) Query() string                  { return s.query }
func (s *State) TitleFormat() model.TitleFormat { return s.titleFormat }
func (s *State) ShowSelectedOnly() bool         { return s.showSelectedOnly }
func (s *State) CalendarName() string           { return s.calendarName }

func (s *State) SetQuery(text string)                    { s.query = text }
func (s *State) SetTitleFormat(format model.TitleFormat) { s.titleFormat = format }
func (s *State) SetShowSelectedOnly(on bool)             { s.showSelectedOnly = on }
func (s *State) SetCalendarName(name string)             { s.calendarName = name }

// IsSportSelected reports whether the sport filter is enabled.
func (s *State) IsSportSelected(sport string) bool {
	_, ok := s.selectedSports[sport]
	return ok
}

// IsEventSelected reports whether the event is marked for export.
func (s *State) IsEventSelected(id string) bool {
	_, ok := s.selectedEventIDs[id]
	return ok
}

// SelectedSports returns the enabled sports, sorted case-insensitively.
func (s *State) SelectedSports() []string {
	out := make([]string, 0, len(s.selectedSports))
	for _, sport := range s.sports {
		if s.IsSportSelected(sport) {
			out = append(out, sport)
		}
	}
	return out
}

// SelectedEventIDs returns the ids marked for export, in base event order.
func (s *State) SelectedEventIDs() []string {
	out := make([]string, 0, len(s.selectedEventIDs))
	for _, ev := range s.events {
		if s.IsEventSelected(ev.ID) {
			out = append(out, ev.ID)
		}
	}
	return out
}

// SetSportEnabled toggles one sport filter. Unknown sports are ignored.
func (s *State) SetSportEnabled(sport string, on bool) {
	if !s.knownSport(sport) {
		return
	}
	if on {
		s.selectedSports[sport] = struct{}{}
	} else {
		delete(s.selectedSports, sport)
	}
	s.resyncEventSelection()
}

// SelectAllSports enables every sport filter.
func (s *State) SelectAllSports() {
	for _, sport := range s.sports {
		s.selectedSports[sport] = struct{}{}
	}
	s.resyncEventSelection()
}

// SelectNoSports disables every sport filter.
func (s *State) SelectNoSports() {
	s.selectedSports = make(map[string]struct{})
	s.resyncEventSelection()
}

// SelectCategorySports toggles every present sport of one category.
func (s *State) SelectCategorySports(category string, on bool) {
	for _, sport := range s.sports {
		if taxonomy.CategoryFor(sport) != category {
			continue
		}
		if on {
			s.selectedSports[sport] = struct{}{}
		} else {
			delete(s.selectedSports, sport)
		}
	}
	s.resyncEventSelection()
}

// resyncEventSelection resets the fine-grained event selection to all
// events of enabled sports. Sport-filter changes deliberately do not
// preserve per-event selections.
func (s *State) resyncEventSelection() {
	s.selectedEventIDs = make(map[string]struct{})
	for _, ev := range s.events {
		if s.IsSportSelected(ev.Sport) {
			s.selectedEventIDs[ev.ID] = struct{}{}
		}
	}
}

// SetEventSelected marks or unmarks one event for export. Unknown ids
// are ignored. Sport filters are left untouched.
func (s *State) SetEventSelected(id string, on bool) {
	if !s.knownEventID(id) {
		return
	}
	if on {
		s.selectedEventIDs[id] = struct{}{}
	} else {
		delete(s.selectedEventIDs, id)
	}
}

// SelectVisible marks every currently visible event for export.
func (s *State) SelectVisible() {
	for _, ev := range s.VisibleEvents() {
		s.selectedEventIDs[ev.ID] = struct{}{}
	}
}

// ClearVisible unmarks every currently visible event.
func (s *State) ClearVisible() {
	for _, ev := range s.VisibleEvents() {
		delete(s.selectedEventIDs, ev.ID)
	}
}

// InvertVisible flips the selection of every currently visible event.
func (s *State) InvertVisible() {
	for _, ev := range s.VisibleEvents() {
		if s.IsEventSelected(ev.ID) {
			delete(s.selectedEventIDs, ev.ID)
		} else {
			s.selectedEventIDs[ev.ID] = struct{}{}
		}
	}
}

// ToggleCategoryCollapsed flips the presentation-only collapsed flag of
// a category. Unknown categories are ignored.
func (s *State) ToggleCategoryCollapsed(category string) {
	if !taxonomy.IsKnownCategory(category) {
		return
	}
	if _, ok := s.collapsedCategories[category]; ok {
		delete(s.collapsedCategories, category)
	} else {
		s.collapsedCategories[category] = struct{}{}
	}
}

// IsCategoryCollapsed reports the collapsed flag of a category.
func (s *State) IsCategoryCollapsed(category string) bool {
	_, ok := s.collapsedCategories[category]
	return ok
}

// CollapsedCategories returns the collapsed categories in table order.
func (s *State) CollapsedCategories() []string {
	out := make([]string, 0, len(s.collapsedCategories))
	for _, name := range taxonomy.CategoryNames() {
		if s.IsCategoryCollapsed(name) {
			out = append(out, name)
		}
	}
	return out
}

// VisibleEvents derives the events passing the sport-enabled,
// selected-only and text-query filters, in base order.
func (s *State) VisibleEvents() []model.Event {
	query := strings.ToLower(strings.TrimSpace(s.query))

	out := make([]model.Event, 0, len(s.events))
	for _, ev := range s.events {
		if !s.IsSportSelected(ev.Sport) {
			continue
		}
		if s.showSelectedOnly && !s.IsEventSelected(ev.ID) {
			continue
		}
		if query != "" {
			haystack := strings.ToLower(ev.Title + " " + ev.Sport + " " + ev.Location)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		out = append(out, ev)
	}
	return out
}

// ExportSet derives the events that are both sport-enabled and marked
// for export, in base order.
func (s *State) ExportSet() []model.Event {
	out := make([]model.Event, 0, len(s.selectedEventIDs))
	for _, ev := range s.events {
		if s.IsSportSelected(ev.Sport) && s.IsEventSelected(ev.ID) {
			out = append(out, ev)
		}
	}
	return out
}

func (s *State) knownSport(sport string) bool {
	for _, known := range s.sports {
		if known == sport {
			return true
		}
	}
	return false
}

func (s *State) knownEventID(id string) bool {
	for _, ev := range s.events {
		if ev.ID == id {
			return true
		}
	}
	return false
}
