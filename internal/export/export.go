// Package export turns the current export set into a calendar document
// and hands it off: native share first if available, direct file save as
// the fallback.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sportkal/internal/ics"
	applog "sportkal/internal/log"
	"sportkal/internal/model"
)

// FileName is the default name of the produced calendar file.
const FileName = "sportkalender-selection.ics"

// ErrEmptySelection is returned when export is attempted with nothing in
// the export set. No document is produced.
var ErrEmptySelection = errors.New("select at least one event before exporting")

// ErrShareCancelled is returned by a Sharer when the user aborts the
// handoff. It is a neutral outcome, distinct from share failure: the
// exporter stops without falling back to a file save.
var ErrShareCancelled = errors.New("share cancelled")

// Sharer is an optional native share capability. Implementations return
// ErrShareCancelled on user abort and any other error on failure.
type Sharer interface {
	Share(ctx context.Context, filename string, payload []byte) error
}

// Result reports the outcome of one export attempt.
type Result struct {
	// Document is the encoded calendar, empty when the export set was.
	Document []byte
	// Shared is true when a native share handoff succeeded.
	Shared bool
	// Path is the saved file location when the direct-save path ran.
	Path string
	// Message is the user-facing status line.
	Message string
}

// Exporter encodes and delivers calendar documents. Both delivery paths
// are terminal; there is no retry loop.
type Exporter struct {
	sharer Sharer // nil when the capability is absent
	outDir string
}

// New creates an Exporter saving into outDir. sharer may be nil.
func New(outDir string, sharer Sharer) *Exporter {
	return &Exporter{sharer: sharer, outDir: outDir}
}

// Export encodes the given export set and delivers it. An empty set
// yields ErrEmptySelection and no document.
func (x *Exporter) Export(ctx context.Context, events []model.Event, calendarName string, format model.TitleFormat) (Result, error) {
	if len(events) == 0 {
		return Result{Message: "Select at least one event before exporting."}, ErrEmptySelection
	}

	doc := ics.Encode(events, calendarName, format)
	okMessage := fmt.Sprintf("Exported %d events across %d sports.", len(events), countSports(events))

	if x.sharer != nil {
		err := x.sharer.Share(ctx, FileName, doc)
		switch {
		case err == nil:
			return Result{Document: doc, Shared: true, Message: okMessage}, nil
		case errors.Is(err, ErrShareCancelled):
			return Result{
				Document: doc,
				Message:  "Share cancelled. Try again or save the file directly.",
			}, ErrShareCancelled
		default:
			logger := applog.WithComponent("export")
			logger.Warn().Err(err).Msg("share failed, saving directly")
		}
	}

	path, err := x.save(doc)
	if err != nil {
		return Result{Document: doc, Message: "Could not save the calendar file."}, err
	}
	return Result{Document: doc, Path: path, Message: okMessage}, nil
}

func (x *Exporter) save(doc []byte) (string, error) {
	path := filepath.Join(x.outDir, FileName)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func countSports(events []model.Event) int {
	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.Sport != "" {
			seen[ev.Sport] = struct{}{}
		}
	}
	return len(seen)
}
