package timetable

import (
	"strings"
	"time"
)

// clockLayouts accepted when normalizing announced departure times. The
// routing service emits 12-hour clocks with a narrow no-break space before
// the meridiem; plain 24-hour clocks pass through unchanged.
var clockLayouts = []string{"3:04 PM", "3:04PM", "15:04", "15:04:05"}

var spaceNormalizer = strings.NewReplacer("\u202f", " ", "\u00a0", " ")

// NormalizeClockTime converts an announced wall-clock time to "HH:MM"
// 24-hour form. Narrow and regular no-break spaces are treated as plain
// spaces. When no known layout parses, the first five characters are
// returned as a best-effort prefix.
func NormalizeClockTime(text string) string {
	cleaned := strings.TrimSpace(spaceNormalizer.Replace(text))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("15:04")
		}
	}
	if len(cleaned) > 5 {
		return cleaned[:5]
	}
	return cleaned
}

// ResolveTrip picks the scheduled trip a live departure belongs to.
//
// A single candidate is returned as-is: with only one trip filed under the
// train number there is nothing to disambiguate, even if its times disagree.
// With several, the candidate whose scheduled departure at the boarding stop
// starts with the normalized announced time wins; ties go to the trip with
// the most stops, which favors the full service over short-turn variants.
func ResolveTrip(cands []*ScheduledTrip, depTimeText, depStopName string) *ScheduledTrip {
	if len(cands) == 0 {
		return nil
	}
	if len(cands) == 1 {
		return cands[0]
	}
	wanted := NormalizeClockTime(depTimeText)
	var best *ScheduledTrip
	for _, cand := range cands {
		idx, ok := FindStopIndex(cand, depStopName)
		if !ok {
			continue
		}
		if !strings.HasPrefix(cand.Stops[idx].DepartureTime, wanted) {
			continue
		}
		if best == nil || len(cand.Stops) > len(best.Stops) {
			best = cand
		}
	}
	return best
}
