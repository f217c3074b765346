package services

import (
	"testing"

	"uber-receipts/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSymbolAdjacent(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	symbols := []string{"$", "€", "£", "¥", "₹", "₩", "₽", "₺", "₦", "₫", "฿"}
	for _, sym := range symbols {
		t.Run(sym, func(t *testing.T) {
			p, err := e.Extract("Thanks for riding\n" + sym + "12.50\n4.2 mi")
			require.NoError(t, err)
			assert.Equal(t, "12.50", p.Amount)
			assert.Equal(t, sym, p.Currency)
			assert.Equal(t, models.TierSymbolAdjacent, p.Tier)
		})
	}
}

func TestExtractSymbolAfterAmount(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	p, err := e.Extract("Fahrtkosten\n12,50 €\n3,1 km")
	require.NoError(t, err)
	assert.Equal(t, "12.50", p.Amount)
	assert.Equal(t, "€", p.Currency)
	assert.Equal(t, models.TierSymbolAdjacent, p.Tier)
}

func TestExtractTaggedBeatsEarlierSymbol(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	// An unrelated amount appears first in document order; the one after the
	// cost label must still win.
	p, err := e.Extract("Promotion applied $99.00 off future rides\nTotal $12.50\n5.8 mi")
	require.NoError(t, err)
	assert.Equal(t, "12.50", p.Amount)
	assert.Equal(t, "$", p.Currency)
	assert.Equal(t, models.TierTagged, p.Tier)
}

func TestExtractPositionalFallback(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	p, err := e.Extract("Trip details\n10.2 miles\n24.06\n18 min")
	require.NoError(t, err)
	assert.Equal(t, "24.06", p.Amount)
	assert.Empty(t, p.Currency)
	assert.Equal(t, models.TierPositional, p.Tier)
}

func TestExtractLocaleNormalization(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	p, err := e.Extract("Gesamt €1.234,56 wurden abgebucht")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", p.Amount)
	assert.Equal(t, "€", p.Currency)
}

func TestExtractHandlesCaseChangingRunes(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	// "Ⱥ" lowercases to a longer UTF-8 sequence, so label matching must
	// not mix offsets between cased variants of the text.
	p, err := e.Extract("ȺȺ Total $12.50")
	require.NoError(t, err)
	assert.Equal(t, "12.50", p.Amount)
	assert.Equal(t, models.TierTagged, p.Tier)

	_, err = e.Extract("ȺTotal")
	assert.ErrorIs(t, err, ErrNoPrice, "label at end of text fails cleanly")
}

func TestExtractRejectsMalformedNumbers(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	tests := []struct {
		name string
		text string
	}{
		{"malformed amount after label", "Total $1.2.3"},
		{"malformed second literal", "10 miles then 1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := e.Extract(tt.text)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrNoPrice, "an amount that is not a plain decimal never passes")
		})
	}

	// A malformed candidate must not block a later tier: the symbol match is
	// unusable, so the chain falls through to the positional fallback, which
	// takes the second literal in document order.
	p, err := e.Extract("$1.2.3 promo code\n10.2 miles\n24.06")
	require.NoError(t, err)
	assert.Equal(t, "10.2", p.Amount)
	assert.Equal(t, models.TierPositional, p.Tier)
}

func TestExtractFailure(t *testing.T) {
	e := NewExtractor(zerolog.Nop())

	tests := []struct {
		name string
		text string
	}{
		{"no numbers at all", "Trip details pending"},
		{"single number, no symbol or label", "Trip was 42 minutes"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := e.Extract(tt.text)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrNoPrice)
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"24.06", "24.06"},
		{"10.2", "10.2"},
		{"1234", "1234"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"12,50", "12.50"},
		{"1,234", "1234"},
		{"1.234", "1234"},
		{"1,234,567.89", "1234567.89"},
		{"1.234.567,89", "1234567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAmount(tt.raw))
		})
	}
}
