package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"uber-receipts/config"
	"uber-receipts/models"
	"uber-receipts/scraper/uber"
	"uber-receipts/services"
	"uber-receipts/storage"
	"uber-receipts/utils"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/schollz/progressbar/v3"
)

func main() {
	cfg := config.Load()

	fs := ff.NewFlagSet("uber-receipts")
	var (
		cdpURL    = fs.StringLong("cdp-url", cfg.CDPURL, "DevTools endpoint of the logged-in Chrome (start it with --remote-debugging-port=9222)")
		outputDir = fs.StringLong("output-dir", cfg.OutputDir, "Directory to save receipt PDFs")
		days      = fs.IntLong("days", 90, "Fetch trips from the last N days")
		startDate = fs.StringLong("start-date", "", "Window start date (YYYY-MM-DD)")
		endDate   = fs.StringLong("end-date", "", "Window end date (YYYY-MM-DD, defaults to today)")
		all       = fs.BoolLong("all", "Fetch every trip in the history")
		tripIDs   = fs.StringLong("trip-ids", "", "Comma-separated trip IDs to fetch, skipping the history listing")
		testTrip  = fs.StringLong("test-trip-id", "", "Extract and print the fare for one trip, without downloading anything")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("UBER_RECEIPTS"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg.CDPURL = *cdpURL
	cfg.OutputDir = *outputDir

	log := utils.NewLogger(cfg.LogLevel)
	log.Info().Msg("Uber Receipt Downloader")

	window, err := buildWindow(*all, *days, *startDate, *endDate, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("invalid date window")
		os.Exit(1)
	}

	// Graceful stop: finish the trip in flight, then report what we have.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewReceiptStore(cfg.OutputDir, log)
	if err != nil {
		log.Error().Err(err).Msg("cannot prepare output directory")
		os.Exit(1)
	}

	// The session outlives the interrupt context so a SIGINT never kills the
	// trip in flight; FetchAll stops between trips instead.
	session, err := uber.Attach(context.Background(), cfg, store.Dir(), log)
	if err != nil {
		log.Error().Err(err).Msg("cannot attach to browser")
		os.Exit(1)
	}
	defer session.Close()

	fetcher := uber.NewReceiptFetcher(session, store, services.NewExtractor(log), store.Dir(), cfg, log)

	if *testTrip != "" {
		trip := uber.TripsFromIDs([]string{*testTrip}, cfg.TripsURL)[0]
		price, err := fetcher.ExtractFare(trip)
		if err != nil {
			if errors.Is(err, uber.ErrAuthenticationMissing) {
				log.Error().Msg("not logged in: open riders.uber.com in the attached browser and sign in first")
			} else {
				log.Error().Err(err).Str("trip", trip.ID).Msg("fare extraction failed")
			}
			os.Exit(1)
		}
		fmt.Printf("Extracted fare for trip %s: %s%s (%s tier)\n", trip.ID, price.Currency, price.Amount, price.Tier)
		return
	}

	var trips []models.TripReference
	if *tripIDs != "" {
		trips = uber.TripsFromIDs(strings.Split(*tripIDs, ","), cfg.TripsURL)
		log.Info().Int("count", len(trips)).Msg("using explicitly provided trip IDs")
	} else {
		lister := uber.NewTripLister(session, cfg, log)
		trips, err = lister.List(window)
		if err != nil {
			if errors.Is(err, uber.ErrAuthenticationMissing) {
				log.Error().Msg("not logged in: open riders.uber.com in the attached browser and sign in first")
			} else {
				log.Error().Err(err).Msg("could not list trips")
			}
			os.Exit(1)
		}
	}

	if len(trips) == 0 {
		log.Warn().Msg("no trips found in the requested window")
		return
	}

	bar := progressbar.NewOptions(len(trips),
		progressbar.OptionSetDescription("Downloading receipts"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	sum, err := fetcher.FetchAll(ctx, trips, func() { _ = bar.Add(1) })
	fmt.Println()

	services.PrintRunReport(sum, store.Dir())

	if err != nil {
		if errors.Is(err, uber.ErrAuthenticationMissing) {
			log.Error().Msg("not logged in: open riders.uber.com in the attached browser and sign in first")
		} else {
			log.Error().Err(err).Msg("run aborted")
		}
		os.Exit(1)
	}
	if len(sum.Failed) > 0 {
		os.Exit(1)
	}
}

// buildWindow resolves the mutually exclusive date-range flags into a single
// window: --all wins, then an explicit --start-date/--end-date pair, then the
// trailing --days default.
func buildWindow(all bool, days int, startDate, endDate string, now time.Time) (uber.DateWindow, error) {
	if all {
		return uber.DateWindow{}, nil
	}

	if startDate != "" || endDate != "" {
		var w uber.DateWindow
		w.End = now
		if startDate != "" {
			start, err := time.Parse("2006-01-02", startDate)
			if err != nil {
				return w, fmt.Errorf("invalid --start-date %q: %w", startDate, err)
			}
			w.Start = start
		}
		if endDate != "" {
			end, err := time.Parse("2006-01-02", endDate)
			if err != nil {
				return w, fmt.Errorf("invalid --end-date %q: %w", endDate, err)
			}
			w.End = end
		}
		return w, nil
	}

	return uber.LastNDays(days, now), nil
}
