package uber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCardDate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "card text without year",
			text: "Mar 6 • 2:25 PM",
			want: time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "detail page text with year",
			text: "2:28 PM, Thursday March 6 2025",
			want: time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "comma before year",
			text: "September 18, 2025",
			want: time.Date(2025, time.September, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "yearless date in the future rolls back a year",
			text: "Dec 30 • 9:12 AM",
			want: time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "no date at all",
			text: "UberX • 4.2 mi",
			want: time.Time{},
		},
		{
			name: "empty text",
			text: "",
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCardDate(tt.text, now))
		})
	}
}

func TestDateWindowContains(t *testing.T) {
	w := DateWindow{
		Start: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)), "start day is inclusive")
	assert.True(t, w.Contains(time.Date(2025, time.March, 31, 23, 0, 0, 0, time.UTC)), "end day is inclusive")
	assert.False(t, w.Contains(time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Time{}), "unparseable dates get the benefit of the doubt")
}

func TestDateWindowUnbounded(t *testing.T) {
	assert.True(t, DateWindow{}.Unbounded())
	assert.True(t, DateWindow{}.Contains(time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)
	w := LastNDays(7, now)

	assert.True(t, w.Contains(now))
	assert.True(t, w.Contains(now.AddDate(0, 0, -7)))
	assert.False(t, w.Contains(now.AddDate(0, 0, -8)))
}

func TestDateWindowExhaustedBy(t *testing.T) {
	w := LastNDays(7, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))

	assert.False(t, w.exhaustedBy(time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.exhaustedBy(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.exhaustedBy(time.Time{}))
	assert.False(t, DateWindow{}.exhaustedBy(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)), "unbounded window is never exhausted")
}
