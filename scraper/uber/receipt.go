package uber

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// fetchState tracks progress of the receipt request protocol for one trip.
type fetchState int

const (
	stateDetailLoaded fetchState = iota
	stateModalRequested
	stateAwaitingArtifact
	stateDownloaded
	stateFailed
)

func (s fetchState) String() string {
	switch s {
	case stateDetailLoaded:
		return "DETAIL_LOADED"
	case stateModalRequested:
		return "MODAL_REQUESTED"
	case stateAwaitingArtifact:
		return "AWAITING_ARTIFACT"
	case stateDownloaded:
		return "DOWNLOADED"
	case stateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// receiptUI is the slice of browser behavior the protocol drives: open the
// receipt modal, wait for the generated artifact, clean up. Split out as an
// interface so the retry and timeout policy is testable without a browser.
type receiptUI interface {
	// RequestReceipt triggers the receipt modal and confirms the PDF
	// download action inside it.
	RequestReceipt(ctx context.Context) error
	// AwaitArtifact blocks until a download completes, returning the path
	// of the captured file, or ErrArtifactTimeout.
	AwaitArtifact(ctx context.Context, timeout time.Duration) (string, error)
	// DismissModal closes the receipt dialog if it is still open.
	DismissModal(ctx context.Context)
}

// runProtocol drives the modal/download state machine for a single trip.
// Receipt generation is asynchronous on the server side, so a timed-out wait
// re-requests the modal; maxAttempts bounds the total number of requests.
func runProtocol(ctx context.Context, ui receiptUI, maxAttempts int, timeout time.Duration, log zerolog.Logger) (string, error) {
	state := stateDetailLoaded
	attempts := 0
	var artifact string
	var lastErr error

	for {
		switch state {
		case stateDetailLoaded:
			state = stateModalRequested

		case stateModalRequested:
			attempts++
			if err := ui.RequestReceipt(ctx); err != nil {
				lastErr = err
				if attempts < maxAttempts {
					log.Warn().Err(err).Int("attempt", attempts).Msg("receipt request failed, retrying")
					continue
				}
				state = stateFailed
				continue
			}
			state = stateAwaitingArtifact

		case stateAwaitingArtifact:
			path, err := ui.AwaitArtifact(ctx, timeout)
			if err == nil {
				artifact = path
				state = stateDownloaded
				continue
			}
			lastErr = err
			if errors.Is(err, ErrArtifactTimeout) && attempts < maxAttempts {
				log.Warn().Int("attempt", attempts).Msg("download timed out, re-requesting receipt")
				state = stateModalRequested
				continue
			}
			state = stateFailed

		case stateDownloaded:
			ui.DismissModal(ctx)
			log.Debug().Str("state", state.String()).Int("attempts", attempts).Msg("receipt captured")
			return artifact, nil

		case stateFailed:
			ui.DismissModal(ctx)
			return "", lastErr
		}
	}
}
