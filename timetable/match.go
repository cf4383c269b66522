package timetable

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// stopMatchThreshold is the minimum partial-ratio score (0..100, inclusive)
// for a stop name to count as a match.
const stopMatchThreshold = 80

// FindStopIndex locates the stop on a trip whose name best matches the given
// name. Comparison is case-insensitive partial-ratio fuzzy matching, so
// "Milano Centrale" still matches a timetable entry named "MILANO CENTRALE FS".
// Returns the index of the first stop with the maximal score at or above the
// threshold, or ok=false when no stop clears it.
func FindStopIndex(trip *ScheduledTrip, name string) (int, bool) {
	if trip == nil || name == "" {
		return 0, false
	}
	wanted := strings.ToLower(name)
	best, bestIdx := 0, -1
	for i, s := range trip.Stops {
		score := fuzzy.PartialRatio(strings.ToLower(s.StopName), wanted)
		if score > best {
			best, bestIdx = score, i
		}
	}
	if best < stopMatchThreshold {
		return 0, false
	}
	return bestIdx, true
}
