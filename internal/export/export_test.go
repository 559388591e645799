package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportkal/internal/model"
)

func testExportSet() []model.Event {
	ev := model.Event{
		StartDate:        "2025-03-01",
		EndDateExclusive: "2025-03-02",
		Title:            "Final",
		Sport:            "Fussball",
		Location:         "Berlin",
	}
	ev.ID = model.FingerprintHex(ev.Key())
	return []model.Event{ev}
}

// stubSharer records the payload and returns a fixed error.
type stubSharer struct {
	err    error
	called bool
	got    []byte
}

func (s *stubSharer) Share(_ context.Context, _ string, payload []byte) error {
	s.called = true
	s.got = payload
	return s.err
}

func TestExportEmptySelection(t *testing.T) {
	x := New(t.TempDir(), nil)

	result, err := x.Export(context.Background(), nil, "Test", model.TitleFormatSportEvent)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Empty(t, result.Document)
	assert.Contains(t, result.Message, "Select at least one event")
}

func TestExportSavesFileWithoutSharer(t *testing.T) {
	dir := t.TempDir()
	x := New(dir, nil)

	result, err := x.Export(context.Background(), testExportSet(), "Test", model.TitleFormatSportEvent)
	require.NoError(t, err)
	assert.False(t, result.Shared)
	assert.Equal(t, filepath.Join(dir, FileName), result.Path)
	assert.Contains(t, result.Message, "Exported 1 events across 1 sports.")

	saved, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, result.Document, saved)
	assert.Contains(t, string(saved), "SUMMARY:Fussball - Final")
}

func TestExportShareSuccessSkipsSave(t *testing.T) {
	dir := t.TempDir()
	sharer := &stubSharer{}
	x := New(dir, sharer)

	result, err := x.Export(context.Background(), testExportSet(), "Test", model.TitleFormatSportEvent)
	require.NoError(t, err)
	assert.True(t, result.Shared)
	assert.True(t, sharer.called)
	assert.Equal(t, result.Document, sharer.got)
	assert.Empty(t, result.Path)

	_, statErr := os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportShareCancelledIsTerminal(t *testing.T) {
	dir := t.TempDir()
	x := New(dir, &stubSharer{err: ErrShareCancelled})

	result, err := x.Export(context.Background(), testExportSet(), "Test", model.TitleFormatSportEvent)
	assert.ErrorIs(t, err, ErrShareCancelled)
	assert.Contains(t, result.Message, "Share cancelled")

	// Cancellation does not fall through to the save path.
	_, statErr := os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportShareFailureFallsBackToSave(t *testing.T) {
	dir := t.TempDir()
	x := New(dir, &stubSharer{err: errors.New("no share target")})

	result, err := x.Export(context.Background(), testExportSet(), "Test", model.TitleFormatSportEvent)
	require.NoError(t, err)
	assert.False(t, result.Shared)
	assert.Equal(t, filepath.Join(dir, FileName), result.Path)

	_, statErr := os.Stat(result.Path)
	assert.NoError(t, statErr)
}
