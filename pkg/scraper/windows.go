package scraper

import "time"

// window is a half-open [Start, End) search interval
type window struct {
	Start time.Time
	End   time.Time
}

// monthFloor truncates t to the first instant of its month in UTC
func monthFloor(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// addMonths advances t by n calendar months, keeping the day-of-month.
// Callers pass month-floored times, so normalization never shifts days.
func addMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

// monthWindows slices [start, end) into consecutive windows of the given
// month width. The last window is clamped to end. An empty or inverted
// range yields no windows.
func monthWindows(start, end time.Time, months int) []window {
	if months <= 0 || !start.Before(end) {
		return nil
	}

	var windows []window
	for cur := start; cur.Before(end); {
		next := addMonths(cur, months)
		if next.After(end) {
			next = end
		}
		windows = append(windows, window{Start: cur, End: next})
		cur = next
	}
	return windows
}
