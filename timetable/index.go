package timetable

import "strings"

// Index groups scheduled trips by train number for fast candidate lookup.
type Index struct {
	byShortName map[string][]*ScheduledTrip
	names       []string
}

// BuildIndex groups trips by trip short name. Trips without a short name are
// not indexed; they cannot be matched to an announced train number anyway.
func BuildIndex(trips []ScheduledTrip) *Index {
	ix := &Index{byShortName: make(map[string][]*ScheduledTrip)}
	for i := range trips {
		t := &trips[i]
		if t.TripShortName == "" {
			continue
		}
		if _, ok := ix.byShortName[t.TripShortName]; !ok {
			ix.names = append(ix.names, t.TripShortName)
		}
		ix.byShortName[t.TripShortName] = append(ix.byShortName[t.TripShortName], t)
	}
	return ix
}

// ByShortName returns all trips filed under the given train number. When no
// exact group exists it falls back to a substring scan in both directions, so
// "RE 4817" still finds a group filed as "4817" and vice versa. All matching
// groups are merged in index order.
func (ix *Index) ByShortName(name string) []*ScheduledTrip {
	if name == "" {
		return nil
	}
	if trips, ok := ix.byShortName[name]; ok {
		return trips
	}
	var out []*ScheduledTrip
	for _, key := range ix.names {
		if strings.Contains(key, name) || strings.Contains(name, key) {
			out = append(out, ix.byShortName[key]...)
		}
	}
	return out
}

// Len reports the number of distinct train numbers in the index.
func (ix *Index) Len() int { return len(ix.byShortName) }
