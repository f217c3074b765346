package utils

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RetryWithBackoff retries a function up to maxRetries times with quadratic backoff
func RetryWithBackoff(maxRetries int, fn func() error, log zerolog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			log.Warn().Int("attempt", attempt+1).Int("max", maxRetries).Dur("backoff", backoff).Msg("retrying")
			time.Sleep(backoff)
		}
		if err := fn(); err != nil {
			lastErr = err
			log.Debug().Int("attempt", attempt+1).Err(err).Msg("attempt failed")
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", maxRetries, lastErr)
}
