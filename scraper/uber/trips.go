package uber

import (
	"fmt"
	"strings"
	"time"

	"uber-receipts/config"
	"uber-receipts/models"
	"uber-receipts/utils"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// TripLister walks the paginated trip-history list and yields references to
// the trips inside a date window, newest first. Each List call starts from
// scratch on the first page.
type TripLister struct {
	session *Session
	cfg     *config.Config
	log     zerolog.Logger
	limiter *utils.RateLimiter
}

// NewTripLister creates a new TripLister
func NewTripLister(session *Session, cfg *config.Config, log zerolog.Logger) *TripLister {
	return &TripLister{
		session: session,
		cfg:     cfg,
		log:     log.With().Str("component", "trips").Logger(),
		limiter: utils.NewRateLimiter(cfg.RateLimitDelay),
	}
}

// tripCard is what the extraction JS returns per history entry.
type tripCard struct {
	ID       string `json:"id"`
	Href     string `json:"href"`
	DateText string `json:"dateText"`
}

// List collects trip references within the window. The history page loads
// more entries in place when its "More" button is clicked; we keep clicking
// until the window is exhausted, the list stops growing, or the button
// disappears.
func (l *TripLister) List(window DateWindow) ([]models.TripReference, error) {
	l.log.Info().Str("url", l.cfg.TripsURL).Msg("loading trip history")

	err := utils.RetryWithBackoff(l.cfg.MaxRetries, func() error {
		return l.session.navigate(l.cfg.TripsURL, 5*time.Second)
	}, l.log)
	if err != nil {
		return nil, fmt.Errorf("trip history unavailable: %w", err)
	}

	if err := l.session.checkAuthenticated(l.cfg.TripsURL); err != nil {
		return nil, err
	}

	seen := utils.NewIDTracker()
	var refs []models.TripReference
	now := time.Now()
	prevCount := 0

	for page := 1; ; page++ {
		cards, err := l.extractCards()
		if err != nil {
			return nil, fmt.Errorf("trip extraction failed on page %d: %w", page, err)
		}
		l.log.Debug().Int("page", page).Int("cards", len(cards)).Msg("extracted trip cards")

		for _, c := range cards {
			if !seen.Add(c.ID) {
				continue
			}
			refs = append(refs, models.TripReference{
				ID:        c.ID,
				Date:      parseCardDate(c.DateText, now),
				DetailURL: c.Href,
			})
		}

		if len(cards) == prevCount {
			// "More" click yielded nothing new, the list is done.
			break
		}
		prevCount = len(cards)

		if l.windowExhausted(window, refs) {
			l.log.Debug().Msg("reached trips older than the window, stopping pagination")
			break
		}

		clicked, err := l.clickMore()
		if err != nil {
			l.log.Warn().Err(err).Msg("could not click 'More' button, stopping pagination")
			break
		}
		if !clicked {
			break
		}
		l.limiter.Wait()
	}

	filtered := refs[:0]
	for _, r := range refs {
		if window.Contains(r.Date) {
			filtered = append(filtered, r)
		}
	}
	l.log.Info().Int("total", seen.Count()).Int("selected", len(filtered)).Msg("trip history collected")
	return filtered, nil
}

// TripsFromIDs builds references for explicitly requested trips, bypassing
// the history listing. Dates are resolved later from the detail pages.
func TripsFromIDs(ids []string, tripsURL string) []models.TripReference {
	var refs []models.TripReference
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		refs = append(refs, models.TripReference{
			ID:        id,
			DetailURL: strings.TrimRight(tripsURL, "/") + "/" + id,
		})
	}
	return refs
}

// extractCards pulls every trip link currently rendered on the history page.
func (l *TripLister) extractCards() ([]tripCard, error) {
	var cards []tripCard
	err := chromedp.Run(l.session.Context(), chromedp.Evaluate(`
		(function() {
			var out = [];

			// Strategy 1: elements carrying a trip detail href.
			var els = document.querySelectorAll('a[href*="/trips/"], div[href*="/trips/"]');

			for (var i = 0; i < els.length; i++) {
				var href = els[i].getAttribute('href') || '';
				var m = href.match(/\/trips\/([^\/?#]+)/);
				if (!m) continue;

				var dateText = '';
				var block = els[i].querySelector('div[data-baseweb="block"] div');
				if (block) dateText = block.innerText;
				if (!dateText) dateText = (els[i].innerText || '').split('\n')[0];

				var abs = els[i].href || ('https://riders.uber.com/trips/' + m[1]);
				out.push({id: m[1], href: abs, dateText: dateText});
			}
			return out;
		})()
	`, &cards))
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// clickMore loads the next batch of history entries.
func (l *TripLister) clickMore() (bool, error) {
	clicked, err := l.session.clickByText("more")
	if err != nil || !clicked {
		return clicked, err
	}
	// Give the list time to grow before re-extracting.
	err = chromedp.Run(l.session.Context(), chromedp.Sleep(2*time.Second))
	return true, err
}

// windowExhausted is true once the oldest dated trip collected so far
// predates the window start.
func (l *TripLister) windowExhausted(window DateWindow, refs []models.TripReference) bool {
	for i := len(refs) - 1; i >= 0; i-- {
		if refs[i].Date.IsZero() {
			continue
		}
		return window.exhaustedBy(refs[i].Date)
	}
	return false
}
