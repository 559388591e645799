// Package web exposes the selection/filter state operations and the
// calendar export over an HTTP API for a rendering front end.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"sportkal/internal/export"
	applog "sportkal/internal/log"
	"sportkal/internal/model"
	"sportkal/internal/state"
	"sportkal/internal/tsv"
)

// Server serializes all state access behind one mutex; the state itself
// is single-owner and unsynchronized.
type Server struct {
	mu        sync.Mutex
	st        *state.State
	persister *state.Persister
	exporter  *export.Exporter
	fetcher   *tsv.Fetcher
	source    string
	logger    zerolog.Logger
}

// NewServer wires the API server.
func NewServer(st *state.State, persister *state.Persister, exporter *export.Exporter, fetcher *tsv.Fetcher, source string) *Server {
	return &Server{
		st:        st,
		persister: persister,
		exporter:  exporter,
		fetcher:   fetcher,
		source:    source,
		logger:    applog.WithComponent("web"),
	}
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", s.handleEvents)
		r.Get("/sports", s.handleSports)
		r.Get("/stats", s.handleStats)
		r.Get("/export", s.handleExport)

		r.Post("/query", s.handleSetQuery)
		r.Post("/title-format", s.handleSetTitleFormat)
		r.Post("/show-selected-only", s.handleSetShowSelectedOnly)
		r.Post("/calendar-name", s.handleSetCalendarName)

		r.Post("/sports/toggle", s.handleToggleSport)
		r.Post("/sports/all", s.handleSelectAllSports)
		r.Post("/sports/none", s.handleSelectNoSports)
		r.Post("/categories/select", s.handleSelectCategory)
		r.Post("/categories/toggle-collapsed", s.handleToggleCollapsed)

		r.Post("/events/toggle", s.handleToggleEvent)
		r.Post("/events/select-visible", s.handleSelectVisible)
		r.Post("/events/clear-visible", s.handleClearVisible)
		r.Post("/events/invert-visible", s.handleInvertVisible)

		r.Post("/refresh", s.handleRefresh)
	})

	return r
}

// Refresh re-fetches and re-parses the source document, replacing the
// event collection while pruning selections of vanished entries.
func (s *Server) Refresh(ctx context.Context) error {
	body, err := s.fetcher.Load(ctx, s.source)
	if err != nil {
		return err
	}
	events := tsv.ParseDocument(string(body))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ReplaceEvents(events)
	s.persister.Save(s.st.Snapshot())
	s.logger.Info().Int("event_count", len(events)).Msg("source refreshed")
	return nil
}

// eventDTO is a JSON-friendly view of one event row.
type eventDTO struct {
	ID               string `json:"id"`
	StartDate        string `json:"startDate"`
	EndDateExclusive string `json:"endDateExclusive"`
	Title            string `json:"title"`
	Sport            string `json:"sport"`
	Location         string `json:"location"`
	Summary          string `json:"summary"`
	Selected         bool   `json:"selected"`
}

// sportGroupDTO is one category bucket of the grouped sports view.
type sportGroupDTO struct {
	Category  string     `json:"category"`
	Collapsed bool       `json:"collapsed"`
	Sports    []sportDTO `json:"sports"`
}

type sportDTO struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// statsDTO summarizes the current projections after a read or mutation.
type statsDTO struct {
	Loaded           int    `json:"loaded"`
	Visible          int    `json:"visible"`
	Selected         int    `json:"selected"`
	ExportEvents     int    `json:"exportEvents"`
	ExportSports     int    `json:"exportSports"`
	Query            string `json:"query"`
	TitleFormat      string `json:"titleFormat"`
	ShowSelectedOnly bool   `json:"showSelectedOnly"`
	CalendarName     string `json:"calendarName"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	format := s.st.TitleFormat()
	visible := s.st.VisibleEvents()
	dtos := make([]eventDTO, 0, len(visible))
	for _, ev := range visible {
		dtos = append(dtos, eventDTO{
			ID:               ev.ID,
			StartDate:        ev.StartDate,
			EndDateExclusive: ev.EndDateExclusive,
			Title:            ev.Title,
			Sport:            ev.Sport,
			Location:         ev.Location,
			Summary:          ev.Summary(format),
			Selected:         s.st.IsEventSelected(ev.ID),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": dtos})
}

func (s *Server) handleSports(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := s.st.GroupedSports()
	dtos := make([]sportGroupDTO, 0, len(groups))
	for _, group := range groups {
		sports := make([]sportDTO, 0, len(group.Sports))
		for _, sport := range group.Sports {
			sports = append(sports, sportDTO{Name: sport, Selected: s.st.IsSportSelected(sport)})
		}
		dtos = append(dtos, sportGroupDTO{
			Category:  group.Category,
			Collapsed: s.st.IsCategoryCollapsed(group.Category),
			Sports:    sports,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": dtos})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.stats())
}

// stats must be called with the mutex held.
func (s *Server) stats() statsDTO {
	exportSet := s.st.ExportSet()
	sports := make(map[string]struct{})
	for _, ev := range exportSet {
		if ev.Sport != "" {
			sports[ev.Sport] = struct{}{}
		}
	}
	return statsDTO{
		Loaded:           len(s.st.Events()),
		Visible:          len(s.st.VisibleEvents()),
		Selected:         len(s.st.SelectedEventIDs()),
		ExportEvents:     len(exportSet),
		ExportSports:     len(sports),
		Query:            s.st.Query(),
		TitleFormat:      string(s.st.TitleFormat()),
		ShowSelectedOnly: s.st.ShowSelectedOnly(),
		CalendarName:     s.st.CalendarName(),
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	exportSet := s.st.ExportSet()
	calendarName := s.st.CalendarName()
	format := s.st.TitleFormat()
	s.mu.Unlock()

	result, err := s.exporter.Export(r.Context(), exportSet, calendarName, format)
	if err != nil {
		if errors.Is(err, export.ErrEmptySelection) {
			writeError(w, http.StatusConflict, result.Message)
			return
		}
		s.logger.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, result.Message)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Document)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Refresh(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("refresh failed")
		writeError(w, http.StatusBadGateway, "Could not load events. Please try again.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.stats())
}

// mutate runs fn under the mutex, persists the snapshot fire-and-forget
// and responds with the refreshed stats.
func (s *Server) mutate(w http.ResponseWriter, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.persister.Save(s.st.Snapshot())
	writeJSON(w, http.StatusOK, s.stats())
}

func (s *Server) handleSetQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, func() { s.st.SetQuery(body.Query) })
}

func (s *Server) handleSetTitleFormat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TitleFormat string `json:"titleFormat"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, func() { s.st.SetTitleFormat(model.ParseTitleFormat(body.TitleFormat)) })
}

func (s *Server) handleSetShowSelectedOnly(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On bool `json:"on"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, func() { s.st.SetShowSelectedOnly(body.On) })
}

func (s *Server) handleSetCalendarName(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CalendarName string `json:"calendarName"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, func() { s.st.SetCalendarName(body.CalendarName) })
}

func (s *Server) handleToggleSport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sport string `json:"sport"`
		On    bool   `json:"on"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, func() { s.st.SetSportEnabled(body.Sport, body.On) })
}

func (s *Server) handleSelectAllSports(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, func() { s.st.SelectAllSports() })
}

func (s *Server) handleSelectNoSports(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, func() { s.st.SelectNoSports() })
}

func (s *Server) handleSelectCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
		On       bool   `json:"on"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, func() { s.st.SelectCategorySports(body.Category, body.On) })
}

func (s *Server) handleToggleCollapsed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, func() { s.st.ToggleCategoryCollapsed(body.Category) })
}

func (s *Server) handleToggleEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
		On bool   `json:"on"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, func() { s.st.SetEventSelected(body.ID, body.On) })
}

func (s *Server) handleSelectVisible(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, func() { s.st.SelectVisible() })
}

func (s *Server) handleClearVisible(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, func() { s.st.ClearVisible() })
}

func (s *Server) handleInvertVisible(w http.ResponseWriter, _ *http.Request) {
	s.mutate(w, func() { s.st.InvertVisible() })
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := applog.WithComponent("web")
		logger.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
