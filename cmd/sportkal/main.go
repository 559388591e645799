// Command sportkal converts a tab-separated sports event list into a
// deterministic ICS calendar. It runs either as a one-shot exporter or
// as an HTTP API server for a selection front end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"sportkal/internal/config"
	"sportkal/internal/export"
	"sportkal/internal/ics"
	applog "sportkal/internal/log"
	"sportkal/internal/model"
	"sportkal/internal/state"
	"sportkal/internal/store"
	"sportkal/internal/tsv"
	"sportkal/internal/web"
)

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

type flagConfig struct {
	configPath   string
	input        string
	output       string
	sports       stringList
	listSports   bool
	calendarName string
	titleFormat  string
	serve        bool
	listen       string
	verbose      bool
}

func main() {
	flags := parseFlags()

	if flags.verbose {
		applog.SetLevel(zerolog.DebugLevel)
	}
	if !flags.serve {
		applog.UseConsoleWriter()
	}
	logger := applog.WithComponent("main")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		logger.Error().Err(err).Str("config_path", flags.configPath).Msg("failed to load config")
		os.Exit(1)
	}
	if flags.input != "" {
		conf.Source = flags.input
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.calendarName != "" {
		conf.CalendarName = flags.calendarName
	}
	if flags.titleFormat != "" {
		conf.TitleFormat = string(model.ParseTitleFormat(flags.titleFormat))
	}
	if conf.Source == "" {
		logger.Error().Msg("no source document configured; pass -input or set source in the config file")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("signal received, shutting down")
		cancel()
	}()

	fetcher := tsv.NewFetcher(conf.CacheDir)

	body, err := fetcher.Load(ctx, conf.Source)
	if err != nil {
		logger.Error().Err(err).Str("source", conf.Source).Msg("could not load events")
		os.Exit(1)
	}
	events := tsv.ParseDocument(string(body))
	logger.Info().Int("event_count", len(events)).Msg("source loaded")

	if flags.serve {
		if err := runServe(ctx, conf, events, fetcher); err != nil {
			logger.Error().Err(err).Msg("server exited")
			os.Exit(1)
		}
		return
	}

	if err := runOnce(conf, events, flags); err != nil {
		logger.Error().Err(err).Msg("export failed")
		os.Exit(1)
	}
}

// runOnce implements the one-shot CLI: optional sport filtering, sport
// listing, and a direct ICS export to the output path.
func runOnce(conf *config.Config, events []model.Event, flags flagConfig) error {
	st := state.New(events, conf.CalendarName)

	if flags.listSports {
		for _, sport := range st.Sports() {
			fmt.Println(sport)
		}
		return nil
	}

	if len(flags.sports) > 0 {
		st.SelectNoSports()
		for _, sport := range st.Sports() {
			for _, filter := range flags.sports {
				if strings.EqualFold(sport, strings.TrimSpace(filter)) {
					st.SetSportEnabled(sport, true)
				}
			}
		}
	}

	exportSet := st.ExportSet()
	if len(exportSet) == 0 {
		return errors.New("no matching events found for the selected input/filter")
	}

	doc := ics.Encode(exportSet, st.CalendarName(), st.TitleFormat())
	if dir := filepath.Dir(flags.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(flags.output, doc, 0o644); err != nil {
		return err
	}

	fmt.Printf("Created %s with %d events.\n", flags.output, len(exportSet))
	return nil
}

// runServe wires persistence, the exporter and the HTTP API, restores
// the last session snapshot and schedules periodic source refreshes.
func runServe(ctx context.Context, conf *config.Config, events []model.Event, fetcher *tsv.Fetcher) error {
	logger := applog.WithComponent("serve")

	st := state.New(events, conf.CalendarName)
	st.SetTitleFormat(model.ParseTitleFormat(conf.TitleFormat))

	var durable store.Store
	if dir := filepath.Dir(conf.StateDB); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			logger.Warn().Err(err).Msg("state dir unavailable, durable persistence disabled")
		}
	}
	sqliteStore, err := store.NewSQLiteStore(conf.StateDB)
	if err != nil {
		// Treated as absence of persisted state, never fatal.
		logger.Warn().Err(err).Msg("durable store unavailable")
	} else {
		durable = sqliteStore
		defer sqliteStore.Close()
	}
	persister := state.NewPersister(durable, store.NewMemStore())

	if snap, ok := persister.Load(); ok {
		st.Restore(snap)
		logger.Info().Msg("session state restored")
	}

	exporter := export.New(conf.OutputDir, nil)
	server := web.NewServer(st, persister, exporter, fetcher, conf.Source)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(conf.RefreshCron, func() {
		if err := server.Refresh(context.Background()); err != nil {
			logger.Error().Err(err).Msg("scheduled refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", conf.RefreshCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", "http://"+conf.Listen).Msg("starting HTTP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "sportkal.yaml", "Path to config file")
	flag.StringVar(&cfg.input, "input", "", "TSV source path or URL (overrides config)")
	flag.StringVar(&cfg.output, "output", filepath.Join("output", "events.ics"), "Target path for the generated ICS file")
	flag.Var(&cfg.sports, "sport", "Filter by sport; can be passed multiple times")
	flag.BoolVar(&cfg.listSports, "list-sports", false, "Print available sports from the input and exit")
	flag.StringVar(&cfg.calendarName, "calendar-name", "", "Calendar display name (overrides config)")
	flag.StringVar(&cfg.titleFormat, "title-format", "", "Summary format: sport_event or event_only")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the HTTP API server instead of a one-shot export")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.verbose, "verbose", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
