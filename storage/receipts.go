package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// PlaceholderAmount is used in filenames when price extraction failed for a
// trip. The trip ID is logged so the file can be renamed by hand later.
const PlaceholderAmount = "unknown"

// FileName builds the canonical receipt filename for a trip. No currency
// code; the amount already uses "." as its decimal separator.
func FileName(amount string, date time.Time, tripID string) string {
	return fmt.Sprintf("%s-%s-%s.pdf", amount, date.Format("2006-01-02"), tripID)
}

// ReceiptStore keeps receipt PDFs in a single output directory. Presence of
// a file is the only downloaded-state the system tracks.
type ReceiptStore struct {
	dir string
	log zerolog.Logger
}

// NewReceiptStore creates the output directory if needed and returns a store
func NewReceiptStore(dir string, log zerolog.Logger) (*ReceiptStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &ReceiptStore{dir: dir, log: log.With().Str("component", "store").Logger()}, nil
}

// Dir returns the output directory
func (s *ReceiptStore) Dir() string { return s.dir }

// HasReceipt reports whether a receipt for the trip is already on disk,
// whatever amount it was saved under. The amount in the name is not known
// until the detail page is visited, so matching is by trip ID suffix.
func (s *ReceiptStore) HasReceipt(tripID string) bool {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*-"+tripID+".pdf"))
	return err == nil && len(matches) > 0
}

// Commit moves a captured download into its final name. The first committed
// artifact for a name wins; later duplicates are discarded.
func (s *ReceiptStore) Commit(artifactPath, name string) error {
	dest := filepath.Join(s.dir, name)
	if _, err := os.Stat(dest); err == nil {
		_ = os.Remove(artifactPath)
		s.log.Debug().Str("file", name).Msg("receipt already present, discarding duplicate artifact")
		return nil
	}
	if err := os.Rename(artifactPath, dest); err != nil {
		return fmt.Errorf("failed to store receipt %s: %w", name, err)
	}
	s.log.Info().Str("file", dest).Msg("receipt saved")
	return nil
}
