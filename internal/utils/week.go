package utils

import "time"

const isoDate = "2006-01-02"

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekKey formats the Monday of t's week as YYYY-MM-DD.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(isoDate)
}

// ParseWeekKey parses a YYYY-MM-DD week key in loc and snaps it to Monday.
func ParseWeekKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(isoDate, key, loc)
	if err != nil {
		return time.Time{}, err
	}
	return WeekStart(t), nil
}

// WeekRange returns [start, end) for the week that starts at start.
func WeekRange(start time.Time) (time.Time, time.Time) {
	start = WeekStart(start)
	return start, start.AddDate(0, 0, 7)
}

// FormatWeekRange renders e.g. "Jan 6, 2025 - Jan 12, 2025".
func FormatWeekRange(start time.Time) string {
	start = WeekStart(start)
	end := start.AddDate(0, 0, 6)
	const layout = "Jan 2, 2006"
	return start.Format(layout) + " - " + end.Format(layout)
}
