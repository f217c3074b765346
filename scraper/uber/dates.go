package uber

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateWindow is an inclusive calendar-date range used to filter trip history.
// Zero bounds mean unbounded on that side.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// LastNDays builds a window covering the n days up to and including today.
func LastNDays(n int, now time.Time) DateWindow {
	return DateWindow{
		Start: truncateDay(now.AddDate(0, 0, -n)),
		End:   truncateDay(now),
	}
}

// Unbounded reports whether the window accepts every trip.
func (w DateWindow) Unbounded() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether a trip date falls inside the window. A zero trip
// date (card date could not be parsed) is given the benefit of the doubt and
// counts as inside.
func (w DateWindow) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	d := truncateDay(t)
	if !w.Start.IsZero() && d.Before(truncateDay(w.Start)) {
		return false
	}
	if !w.End.IsZero() && d.After(truncateDay(w.End)) {
		return false
	}
	return true
}

// exhaustedBy reports whether every trip older than t is guaranteed to be
// outside the window. Trip history is listed newest first, so once a card
// predates the window start there is no point loading more pages.
func (w DateWindow) exhaustedBy(t time.Time) bool {
	if w.Start.IsZero() || t.IsZero() {
		return false
	}
	return truncateDay(t).Before(truncateDay(w.Start))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Matches "Mar 6 • 2:25 PM", "March 6, 2025", "2:28 PM, Thursday March 6 2025".
var cardDateRegex = regexp.MustCompile(`(?i)\b(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+(\d{1,2})(?:,?\s+(\d{4}))?`)

// parseCardDate recovers a trip date from the free text of a trip card or
// detail page. Cards usually omit the year; we assume the current one and
// roll back a year when that would put the trip in the future, since history
// never contains future trips. Returns the zero time when no date is found.
func parseCardDate(text string, now time.Time) time.Time {
	m := cardDateRegex.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}

	month, ok := months[strings.ToLower(m[1][:3])]
	if !ok {
		return time.Time{}
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}
	}

	year := now.Year()
	if m[3] != "" {
		if y, err := strconv.Atoi(m[3]); err == nil {
			year = y
		}
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if m[3] == "" && d.After(now) {
		d = d.AddDate(-1, 0, 0)
	}
	return d
}
