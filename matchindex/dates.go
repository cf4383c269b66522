package matchindex

import "time"

// ExpandDates lists the dates an event applies to. A non-recurring event
// yields its start date only. A weekly recurrence yields every 7th day from
// start through recurrenceEnd inclusive, clamped to maxOccurrences so a
// malformed end date cannot expand without bound. Bounds are compared as
// calendar dates; the time of day on either side is ignored, so a start at
// 06:00 still reaches an end date given at midnight.
func ExpandDates(start time.Time, recurrenceEnd time.Time, maxOccurrences int) []string {
	if maxOccurrences <= 0 {
		maxOccurrences = 53
	}
	dates := []string{start.Format(DateLayout)}
	if recurrenceEnd.IsZero() {
		return dates
	}
	last := recurrenceEnd.Format(DateLayout)
	for d := start.AddDate(0, 0, 7); d.Format(DateLayout) <= last && len(dates) < maxOccurrences; d = d.AddDate(0, 0, 7) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}
