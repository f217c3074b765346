package services

import (
	"errors"
	"regexp"
	"strings"

	"uber-receipts/models"

	"github.com/rs/zerolog"
)

// costLabel is the heading Uber renders next to the fare on trip detail pages.
const costLabel = "Total"

// taggedWindow is how far past the cost label we look for the fare value.
const taggedWindow = 48

// symbolClass covers the single-code-point currency symbols we recognize.
const symbolClass = `[$€£¥₹₩₽₺₦₫฿]`

var (
	// A numeric literal in either locale convention: "24.06", "10.2",
	// "1,234.56", "1.234,56", "1234".
	numberRegex = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

	// Adjacency allows at most one space and never crosses a line break, so
	// a symbol at the end of one line cannot pair with a number on the next.
	symbolAmountRegex = regexp.MustCompile(`(` + symbolClass + `)[ \x{00A0}]?(\d+(?:[.,]\d+)*)`)
	amountSymbolRegex = regexp.MustCompile(`(\d+(?:[.,]\d+)*)[ \x{00A0}]?(` + symbolClass + `)`)

	groupedRegex = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

	costLabelRegex = regexp.MustCompile(`(?i)` + costLabel)

	// What a normalized amount must look like: plain digits with at most one
	// fractional part.
	decimalRegex = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// ErrNoPrice is returned when no extraction tier finds a usable amount.
var ErrNoPrice = errors.New("no price found in page text")

type matcher struct {
	tier models.ConfidenceTier
	fn   func(text string) *models.ExtractedPrice
}

// Extractor recovers the fare amount from the raw text of a trip detail page.
// It runs a fixed chain of matchers in priority order and stops at the first
// one that yields a result.
type Extractor struct {
	log      zerolog.Logger
	matchers []matcher
}

// NewExtractor creates a new Extractor
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{
		log: log.With().Str("component", "extractor").Logger(),
		matchers: []matcher{
			{models.TierTagged, matchTagged},
			{models.TierSymbolAdjacent, matchSymbolAdjacent},
			{models.TierPositional, matchPositional},
		},
	}
}

// Extract returns the best-guess fare for the page, or ErrNoPrice.
// The tier that fired is logged so that silently wrong fallback guesses can
// be audited later against the saved receipts.
func (e *Extractor) Extract(text string) (*models.ExtractedPrice, error) {
	for _, m := range e.matchers {
		p := m.fn(text)
		if p == nil {
			continue
		}
		p.Tier = m.tier
		e.log.Debug().
			Str("tier", p.Tier.String()).
			Str("amount", p.Amount).
			Str("currency", p.Currency).
			Msg("price extracted")
		return p, nil
	}
	return nil, ErrNoPrice
}

// matchTagged looks for the cost label and a currency+amount pair within a
// short window after it. The label search runs case-insensitively on the
// original text so offsets stay valid for any input.
func matchTagged(text string) *models.ExtractedPrice {
	for _, loc := range costLabelRegex.FindAllStringIndex(text, -1) {
		start := loc[1]
		end := start + taggedWindow
		if end > len(text) {
			end = len(text)
		}
		if p := matchSymbolAdjacent(text[start:end]); p != nil {
			return p
		}
	}
	return nil
}

// matchSymbolAdjacent finds the first currency symbol immediately adjacent to
// a numeric literal, in document order. Both "€12,50" and "12,50 €" count.
func matchSymbolAdjacent(text string) *models.ExtractedPrice {
	pre := symbolAmountRegex.FindStringSubmatchIndex(text)
	post := amountSymbolRegex.FindStringSubmatchIndex(text)

	var p *models.ExtractedPrice
	switch {
	case pre == nil && post == nil:
		return nil
	case post == nil || (pre != nil && pre[0] <= post[0]):
		p = &models.ExtractedPrice{
			Amount:   normalizeAmount(text[pre[4]:pre[5]]),
			Currency: text[pre[2]:pre[3]],
		}
	default:
		p = &models.ExtractedPrice{
			Amount:   normalizeAmount(text[post[2]:post[3]]),
			Currency: text[post[4]:post[5]],
		}
	}
	if !decimalRegex.MatchString(p.Amount) {
		return nil
	}
	return p
}

// matchPositional collects every numeric literal on the page and returns the
// second one. On these pages the first number is the trip distance, not the
// fare. This is an observation about current page layouts, not a site
// contract; the tier logging in Extract exists so a layout change shows up
// in the audit trail.
func matchPositional(text string) *models.ExtractedPrice {
	nums := numberRegex.FindAllString(text, -1)
	if len(nums) < 2 {
		return nil
	}
	amount := normalizeAmount(nums[1])
	if !decimalRegex.MatchString(amount) {
		return nil
	}
	return &models.ExtractedPrice{Amount: amount}
}

// normalizeAmount rewrites a numeric literal to use "." as the decimal
// separator and no thousands separators. Handles both "1,234.56" and the
// reverse "1.234,56" convention.
func normalizeAmount(raw string) string {
	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	if lastDot >= 0 && lastComma >= 0 {
		// Both separators present: the later one is the decimal point.
		decIdx := lastDot
		if lastComma > lastDot {
			decIdx = lastComma
		}
		var b strings.Builder
		for i := 0; i < len(raw); i++ {
			switch raw[i] {
			case '.', ',':
				if i == decIdx {
					b.WriteByte('.')
				}
			default:
				b.WriteByte(raw[i])
			}
		}
		return b.String()
	}

	if lastDot < 0 && lastComma < 0 {
		return raw
	}

	// Lone separator type. Groups of exactly three digits ("1.234",
	// "1,234,567") read as thousands separators, anything else as a decimal
	// point.
	if groupedRegex.MatchString(raw) {
		return strings.Map(func(r rune) rune {
			if r == '.' || r == ',' {
				return -1
			}
			return r
		}, raw)
	}
	return strings.Replace(raw, ",", ".", 1)
}
