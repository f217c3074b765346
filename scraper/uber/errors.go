package uber

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationMissing means the attached browser was bounced to a
	// login flow. Nothing can succeed without a logged-in session, so this
	// aborts the whole run.
	ErrAuthenticationMissing = errors.New("browser session is not authenticated")

	// ErrArtifactTimeout means the receipt download did not start and finish
	// within the configured window. Retriable: the modal is re-requested.
	ErrArtifactTimeout = errors.New("timed out waiting for receipt download")

	// ErrNoReceiptControl means neither the receipt button nor the download
	// control could be located on the trip detail page.
	ErrNoReceiptControl = errors.New("receipt controls not found on page")
)

// NavigationError wraps a failed page load or transition. Retriable a bounded
// number of times before becoming a per-trip failure.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }
