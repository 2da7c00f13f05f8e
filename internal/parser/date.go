package parser

import "time"

// DateFromParts derives a calendar-checked publication date from separate
// year/month/day values, as both grammars supply them:
//
//   - missing (zero or negative) month and day default to 1
//   - a two-digit year is expanded into the current century, rolled back
//     one century if the result would be in the future
//   - a four-digit year later than the current year is clamped to the
//     current year
//   - a combination that fails the calendar check yields no date
//
// It returns nil rather than an error so callers can fall through to the
// next date source in the document.
func DateFromParts(year, month, day int) *time.Time {
	if year <= 0 {
		return nil
	}

	current := time.Now().Year()
	if year < 100 {
		year += (current / 100) * 100
		if year > current {
			year -= 100
		}
	} else if year > current {
		year = current
	}

	if month <= 0 {
		month = 1
	}
	if day <= 0 {
		day = 1
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components (e.g. April 31 becomes
	// May 1); a changed component means the input was not a real date.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return nil
	}
	return &t
}
