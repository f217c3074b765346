package uber

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog"
)

// downloadWaiter listens for CDP download events on the session tab and hands
// the first completed artifact to whoever is waiting. Only one download is
// tracked at a time; stray or duplicate events are dropped.
type downloadWaiter struct {
	mu   sync.Mutex
	dir  string
	guid string
	ch   chan string
}

func newDownloadWaiter(ctx context.Context, dir string, log zerolog.Logger) *downloadWaiter {
	w := &downloadWaiter{dir: dir, ch: make(chan string, 1)}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *browser.EventDownloadWillBegin:
			w.mu.Lock()
			if w.guid == "" {
				w.guid = ev.GUID
				log.Debug().Str("guid", ev.GUID).Str("suggested", ev.SuggestedFilename).Msg("download starting")
			}
			w.mu.Unlock()

		case *browser.EventDownloadProgress:
			if ev.State != browser.DownloadProgressStateCompleted {
				return
			}
			w.mu.Lock()
			tracked := w.guid != "" && ev.GUID == w.guid
			w.mu.Unlock()
			if !tracked {
				return
			}
			// Files are saved under their GUID, see SetDownloadBehavior.
			select {
			case w.ch <- filepath.Join(w.dir, ev.GUID):
			default: // a completed artifact is already pending
			}
		}
	})

	return w
}

// Reset arms the waiter for the next trip's download.
func (w *downloadWaiter) Reset() {
	w.mu.Lock()
	w.guid = ""
	w.mu.Unlock()
	select {
	case <-w.ch:
	default:
	}
}

// Wait blocks until the tracked download completes or the timeout elapses.
func (w *downloadWaiter) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case path := <-w.ch:
		return path, nil
	case <-t.C:
		return "", ErrArtifactTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Selectors observed on trip detail pages; text matching is the fallback when
// the site reshuffles its attributes.
const viewReceiptSelector = `button[data-tracking-name="view-receipt-link"]`

// receiptPage is the chromedp-backed receiptUI for a loaded trip detail page.
type receiptPage struct {
	session *Session
	waiter  *downloadWaiter
	log     zerolog.Logger
}

func newReceiptPage(session *Session, waiter *downloadWaiter, log zerolog.Logger) *receiptPage {
	return &receiptPage{session: session, waiter: waiter, log: log}
}

// RequestReceipt opens the receipt modal and confirms the PDF download inside
// it. The waiter is re-armed first so a stale event from a previous attempt
// cannot satisfy this one.
func (p *receiptPage) RequestReceipt(ctx context.Context) error {
	p.waiter.Reset()

	clicked, err := p.session.clickSelector(viewReceiptSelector)
	if err != nil {
		return &NavigationError{URL: "receipt modal", Err: err}
	}
	if !clicked {
		clicked, err = p.session.clickByText("view receipt")
		if err != nil {
			return &NavigationError{URL: "receipt modal", Err: err}
		}
	}
	if !clicked {
		return ErrNoReceiptControl
	}

	// Let the modal render before looking for its download control.
	if err := chromedp.Run(p.session.Context(), chromedp.Sleep(time.Second)); err != nil {
		return &NavigationError{URL: "receipt modal", Err: err}
	}

	clicked, err = p.session.clickByText("download pdf")
	if err != nil {
		return &NavigationError{URL: "receipt modal", Err: err}
	}
	if !clicked {
		return ErrNoReceiptControl
	}
	return nil
}

// AwaitArtifact waits for the receipt PDF to finish downloading.
func (p *receiptPage) AwaitArtifact(ctx context.Context, timeout time.Duration) (string, error) {
	return p.waiter.Wait(ctx, timeout)
}

// DismissModal closes the receipt dialog: close button first, Escape as the
// fallback. Failure here is harmless, the next navigation replaces the page.
func (p *receiptPage) DismissModal(ctx context.Context) {
	closed, err := p.session.clickSelector(`button[aria-label="Close"]`)
	if err == nil && closed {
		return
	}
	if err := chromedp.Run(p.session.Context(), chromedp.KeyEvent(kb.Escape)); err != nil {
		p.log.Debug().Err(err).Msg("could not dismiss receipt modal")
	}
}
