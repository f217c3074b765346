package uber

import (
	"context"
	"fmt"
	"strings"
	"time"

	"uber-receipts/config"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Session is the single already-authenticated browser tab the whole run
// drives. It is exclusively owned by the fetch flow; nothing else may
// navigate it concurrently.
type Session struct {
	cfg    *config.Config
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// Attach connects to an existing Chrome instance over the DevTools protocol
// and routes its downloads into downloadDir. No browser is launched: the user
// must have started Chrome with --remote-debugging-port and logged in.
func Attach(parent context.Context, cfg *config.Config, downloadDir string, log zerolog.Logger) (*Session, error) {
	log = log.With().Str("component", "browser").Logger()
	log.Info().Str("cdp_url", cfg.CDPURL).Msg("attaching to Chrome")

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(parent, cfg.CDPURL)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}

	// Establish the connection and take over download handling so generated
	// receipts land in our output directory under their CDP GUID.
	err := chromedp.Run(ctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(downloadDir).
			WithEventsEnabled(true),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("cannot attach to Chrome at %s (is it running with --remote-debugging-port?): %w", cfg.CDPURL, err)
	}

	log.Info().Msg("attached to Chrome")
	return &Session{cfg: cfg, log: log, ctx: ctx, cancel: cancel}, nil
}

// Context returns the tab context chromedp actions run against.
func (s *Session) Context() context.Context { return s.ctx }

// Close releases the connection. The browser itself keeps running.
func (s *Session) Close() {
	s.cancel()
}

// navigate loads a URL in the session tab and gives client-side rendering a
// moment to settle, bounded by the configured navigation timeout.
func (s *Session) navigate(url string, settle time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.NavTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(settle),
	)
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

// checkAuthenticated fails fast when the page at url bounced us to a login
// flow. Login is deliberately out of scope: the user has to sign in once in
// the attached browser.
func (s *Session) checkAuthenticated(url string) error {
	loc, err := s.location()
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	if strings.Contains(loc, "auth.uber.com") || strings.Contains(loc, "/login") {
		return ErrAuthenticationMissing
	}
	return nil
}

// location returns the tab's current URL.
func (s *Session) location() (string, error) {
	var loc string
	if err := chromedp.Run(s.ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// pageText returns the full visible text of the current page.
func (s *Session) pageText() (string, error) {
	var text string
	err := chromedp.Run(s.ctx, chromedp.Evaluate(`document.body.innerText`, &text))
	if err != nil {
		return "", err
	}
	return text, nil
}

// clickByText clicks the first button-like element whose visible text
// contains needle (case-insensitive). Returns false when nothing matched.
func (s *Session) clickByText(needle string) (bool, error) {
	var clicked bool
	js := fmt.Sprintf(`
		(function() {
			var needle = %q.toLowerCase();
			var els = document.querySelectorAll('button, a, [role="button"]');
			for (var i = 0; i < els.length; i++) {
				var t = (els[i].innerText || '').trim().toLowerCase();
				if (t && t.indexOf(needle) !== -1) {
					els[i].click();
					return true;
				}
			}
			return false;
		})()
	`, needle)
	err := chromedp.Run(s.ctx, chromedp.Evaluate(js, &clicked))
	return clicked, err
}

// clickSelector clicks the first element matching a CSS selector. Returns
// false when the selector matched nothing.
func (s *Session) clickSelector(sel string) (bool, error) {
	var clicked bool
	js := fmt.Sprintf(`
		(function() {
			var el = document.querySelector(%q);
			if (!el) return false;
			el.click();
			return true;
		})()
	`, sel)
	err := chromedp.Run(s.ctx, chromedp.Evaluate(js, &clicked))
	return clicked, err
}
