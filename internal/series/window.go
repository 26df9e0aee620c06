package series

import (
	"time"

	"MetalPulse/internal/model"
)

// RangeStart returns the inclusive start date ("YYYY-MM-DD") of a named
// relative range, computed from now in UTC calendar fields. Unrecognized
// codes fall back to the 5-year window instead of failing: a bad or missing
// control value must never break the chart.
func RangeStart(rangeCode string, now time.Time) string {
	y, m, d := now.UTC().Date()
	switch rangeCode {
	case "1d":
		return formatDate(y, m, d-1)
	case "3d":
		return formatDate(y, m, d-3)
	case "1w":
		return formatDate(y, m, d-7)
	case "1m":
		return minusMonths(y, m, d, 1)
	case "3m":
		return minusMonths(y, m, d, 3)
	case "6m":
		return minusMonths(y, m, d, 6)
	case "1y":
		return minusMonths(y, m, d, 12)
	case "ytd":
		return formatDate(y, time.January, 1)
	case "5y":
		return minusMonths(y, m, d, 60)
	default:
		return minusMonths(y, m, d, 60)
	}
}

// FilterByRange returns the ordered subsequence of rows on or after the
// range's start date. Input order is preserved; empty input yields empty
// output.
func FilterByRange(rows []model.Row, rangeCode string, now time.Time) []model.Row {
	start := RangeStart(rangeCode, now)
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if r.Date >= start {
			out = append(out, r)
		}
	}
	return out
}

// minusMonths subtracts whole calendar months, clamping the day-of-month to
// the target month's length (Mar 31 minus one month is Feb 28/29). Go's
// AddDate normalizes overflow instead of clamping, so this is explicit.
func minusMonths(y int, m time.Month, d, months int) string {
	total := y*12 + int(m) - 1 - months
	ty, tm := total/12, time.Month(total%12)+1
	if last := daysInMonth(ty, tm); d > last {
		d = last
	}
	return formatDate(ty, tm, d)
}

func daysInMonth(y int, m time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func formatDate(y int, m time.Month, d int) string {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(model.DateLayout)
}
