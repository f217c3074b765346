package models

import "time"

// TripReference points at a single trip in the rider's history.
// Produced during history traversal, consumed once by the receipt fetcher.
type TripReference struct {
	ID        string    // site-assigned, used verbatim in filenames
	Date      time.Time // zero when the trip card had no parseable date
	DetailURL string
}

// ConfidenceTier records which extraction strategy produced a price.
type ConfidenceTier int

const (
	TierTagged ConfidenceTier = iota
	TierSymbolAdjacent
	TierPositional
)

func (t ConfidenceTier) String() string {
	switch t {
	case TierTagged:
		return "tagged-label"
	case TierSymbolAdjacent:
		return "symbol-adjacent"
	case TierPositional:
		return "positional-fallback"
	}
	return "unknown"
}

// ExtractedPrice is the best-guess fare recovered from a trip detail page.
// Amount is a non-negative decimal string using "." as the decimal separator,
// with no thousands separators.
type ExtractedPrice struct {
	Amount   string
	Currency string // symbol, empty when the positional fallback fired
	Tier     ConfidenceTier
}

// RunSummary aggregates per-trip outcomes for the final report.
type RunSummary struct {
	Attempted  int
	Downloaded []string // trip IDs
	Skipped    []string
	Failed     []string
}
