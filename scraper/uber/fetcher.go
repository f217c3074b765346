package uber

import (
	"context"
	"errors"
	"time"

	"uber-receipts/config"
	"uber-receipts/models"
	"uber-receipts/services"
	"uber-receipts/storage"
	"uber-receipts/utils"

	"github.com/rs/zerolog"
)

// ReceiptFetcher opens trip detail pages one at a time, extracts the fare and
// captures the generated receipt PDF.
type ReceiptFetcher struct {
	session   *Session
	store     storage.ReceiptSink
	extractor *services.Extractor
	waiter    *downloadWaiter
	cfg       *config.Config
	log       zerolog.Logger
	limiter   *utils.RateLimiter
	fetch     func(trip models.TripReference) error
}

// NewReceiptFetcher creates a new ReceiptFetcher writing into downloadDir
// through sink
func NewReceiptFetcher(session *Session, sink storage.ReceiptSink, extractor *services.Extractor, downloadDir string, cfg *config.Config, log zerolog.Logger) *ReceiptFetcher {
	log = log.With().Str("component", "fetcher").Logger()
	f := &ReceiptFetcher{
		session:   session,
		store:     sink,
		extractor: extractor,
		waiter:    newDownloadWaiter(session.Context(), downloadDir, log),
		cfg:       cfg,
		log:       log,
		limiter:   utils.NewRateLimiter(cfg.RateLimitDelay),
	}
	f.fetch = f.fetchOne
	return f
}

// FetchAll processes trips sequentially. Per-trip failures are recorded in
// the summary and the run continues; ctx cancellation stops the run between
// trips, never mid-trip. The one run-fatal error is a missing login: no trip
// can succeed without it, so the loop aborts immediately and returns
// ErrAuthenticationMissing. progress, if non-nil, is called once per trip.
func (f *ReceiptFetcher) FetchAll(ctx context.Context, trips []models.TripReference, progress func()) (*models.RunSummary, error) {
	sum := &models.RunSummary{}

	for _, trip := range trips {
		select {
		case <-ctx.Done():
			f.log.Warn().Int("remaining", len(trips)-sum.Attempted).Msg("run interrupted, stopping between trips")
			return sum, nil
		default:
		}

		sum.Attempted++

		if f.store.HasReceipt(trip.ID) {
			f.log.Info().Str("trip", trip.ID).Msg("receipt already on disk, skipping")
			sum.Skipped = append(sum.Skipped, trip.ID)
			if progress != nil {
				progress()
			}
			continue
		}

		if err := f.fetch(trip); err != nil {
			if errors.Is(err, ErrAuthenticationMissing) {
				sum.Failed = append(sum.Failed, trip.ID)
				return sum, err
			}
			f.log.Error().Err(err).Str("trip", trip.ID).Msg("receipt fetch failed")
			sum.Failed = append(sum.Failed, trip.ID)
		} else {
			sum.Downloaded = append(sum.Downloaded, trip.ID)
		}
		if progress != nil {
			progress()
		}
		f.limiter.Wait()
	}
	return sum, nil
}

// ExtractFare opens one trip's detail page and returns the extracted fare
// without requesting a receipt. Backs the --test-trip-id flag, which exists
// to check the extraction heuristics against a live page.
func (f *ReceiptFetcher) ExtractFare(trip models.TripReference) (*models.ExtractedPrice, error) {
	text, err := f.openDetail(trip)
	if err != nil {
		return nil, err
	}
	return f.extractor.Extract(text)
}

// openDetail navigates to the trip detail page and returns its visible text.
// A bounce to the login flow is detected here so that explicitly requested
// trip IDs, which never pass through the history listing, still fail fast on
// a logged-out session.
func (f *ReceiptFetcher) openDetail(trip models.TripReference) (string, error) {
	err := utils.RetryWithBackoff(f.cfg.MaxRetries, func() error {
		return f.session.navigate(trip.DetailURL, 3*time.Second)
	}, f.log)
	if err != nil {
		return "", err
	}

	if err := f.session.checkAuthenticated(trip.DetailURL); err != nil {
		return "", err
	}

	text, err := f.session.pageText()
	if err != nil {
		return "", &NavigationError{URL: trip.DetailURL, Err: err}
	}
	return text, nil
}

// fetchOne runs the full per-trip sequence: open detail page, extract the
// fare, drive the receipt modal protocol, commit the artifact. The protocol
// runs on the session's own context so an interrupt does not abandon the
// trip in flight; FetchAll honors the interrupt before the next trip.
func (f *ReceiptFetcher) fetchOne(trip models.TripReference) error {
	text, err := f.openDetail(trip)
	if err != nil {
		return err
	}

	amount := storage.PlaceholderAmount
	price, err := f.extractor.Extract(text)
	if err != nil {
		if errors.Is(err, services.ErrNoPrice) {
			// Non-fatal: save under the placeholder and flag the trip for
			// manual follow-up.
			f.log.Warn().Str("trip", trip.ID).Msg("could not extract fare, using placeholder amount")
		} else {
			return err
		}
	} else {
		amount = price.Amount
	}

	date := trip.Date
	if date.IsZero() {
		date = parseCardDate(text, time.Now())
	}
	if date.IsZero() {
		date = time.Now()
	}

	page := newReceiptPage(f.session, f.waiter, f.log)
	artifact, err := runProtocol(f.session.Context(), page, f.cfg.MaxRetries, f.cfg.DownloadTimeout, f.log)
	if err != nil {
		return err
	}

	return f.store.Commit(artifact, storage.FileName(amount, date, trip.ID))
}
