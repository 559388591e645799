package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportkal/internal/export"
	"sportkal/internal/state"
	"sportkal/internal/store"
	"sportkal/internal/tsv"
)

const testDoc = "Datum\tEvent\tSportart\tOrt\n" +
	"01.03.2025\tFinal\tFussball\tBerlin\n" +
	"02.03.2025\tOpen\tTennis\tHamburg\n"

type testEnv struct {
	server  *Server
	handler http.Handler
	durable *store.MemStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	source := filepath.Join(t.TempDir(), "events.tsv")
	require.NoError(t, os.WriteFile(source, []byte(testDoc), 0o600))

	st := state.New(tsv.ParseDocument(testDoc), "Test Calendar")
	durable := store.NewMemStore()
	persister := state.NewPersister(durable, store.NewMemStore())
	exporter := export.New(t.TempDir(), nil)
	fetcher := tsv.NewFetcher(t.TempDir())

	server := NewServer(st, persister, exporter, fetcher, source)
	return &testEnv{server: server, handler: server.Handler(), durable: durable}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestGetEvents(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Events []eventDTO `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "Fussball - Final", resp.Events[0].Summary)
	assert.True(t, resp.Events[0].Selected)
}

func TestGetSportsGrouped(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/sports", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Groups []sportGroupDTO `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "Top Sports", resp.Groups[0].Category)
	require.Len(t, resp.Groups[0].Sports, 2)
	assert.Equal(t, "Fussball", resp.Groups[0].Sports[0].Name)
}

func TestToggleSportPersistsAndUpdatesStats(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/sports/toggle", map[string]any{"sport": "Tennis", "on": false})
	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Loaded)
	assert.Equal(t, 1, stats.Visible)
	assert.Equal(t, 1, stats.ExportEvents)

	// Mutations persist fire-and-forget.
	data, ok := env.durable.Read(state.StorageKey)
	require.True(t, ok)
	assert.Contains(t, string(data), `"selectedSports":["Fussball"]`)
}

func TestSetQueryFiltersVisible(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/query", map[string]any{"query": "tennis"})
	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Visible)
	assert.Equal(t, 2, stats.ExportEvents)
}

func TestExportDownload(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), export.FileName)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, body, "SUMMARY:Fussball - Final")
	assert.Contains(t, body, "X-WR-CALNAME:Test Calendar")
}

func TestExportEmptySelection(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/sports/none", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/export", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Select at least one event")
}

func TestRefreshReloadsSource(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Loaded)
}

func TestInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader("{oops"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
