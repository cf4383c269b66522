package itinerary

import (
	"fmt"
	"time"

	"github.com/railmatch/railmatch/timetable"
)

// Leg is one rail segment of a candidate journey, bound to a resolved
// scheduled trip. Stops carry the full trip context, not just the traversed
// segment; From and To always reference members of Stops.
type Leg struct {
	TripID        string               `json:"trip_id"`
	TripShortName string               `json:"trip_short_name,omitempty"`
	Stops         []timetable.StopTime `json:"stops"`
	From          string               `json:"from"`
	To            string               `json:"to"`
}

// FromStop returns the stop time of the boarding stop.
func (l *Leg) FromStop() (timetable.StopTime, bool) {
	for _, s := range l.Stops {
		if s.StopID == l.From {
			return s, true
		}
	}
	return timetable.StopTime{}, false
}

// ToStop returns the stop time of the alighting stop.
func (l *Leg) ToStop() (timetable.StopTime, bool) {
	for _, s := range l.Stops {
		if s.StopID == l.To {
			return s, true
		}
	}
	return timetable.StopTime{}, false
}

// Itinerary is an ordered set of legs forming one complete candidate
// journey. Leg order is the order the legs are ridden; ordinals are implicit
// in the slice index, so contiguity holds by construction.
type Itinerary struct {
	Legs []Leg `json:"legs"`
}

// TripIDs lists the trips ridden, in leg order.
func (it *Itinerary) TripIDs() []string {
	ids := make([]string, len(it.Legs))
	for i, l := range it.Legs {
		ids[i] = l.TripID
	}
	return ids
}

// firstDeparture is the scheduled departure at the first leg's boarding
// stop, used as the sort key for option sets.
func (it *Itinerary) firstDeparture() (string, bool) {
	if len(it.Legs) == 0 {
		return "", false
	}
	st, ok := it.Legs[0].FromStop()
	if !ok || st.DepartureTime == "" {
		return "", false
	}
	return st.DepartureTime, true
}

// OptionsSet is the finalized itinerary list for one event window,
// persisted as a single JSON artifact.
type OptionsSet struct {
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Itineraries []Itinerary `json:"itineraries"`
}

// IntervalError records a failed sampling interval. Failures are collected,
// never fatal to the window; the aggregate result reports them alongside
// whatever itineraries the remaining intervals produced.
type IntervalError struct {
	At  time.Time
	Err error
}

func (e IntervalError) Error() string {
	return fmt.Sprintf("interval %s: %v", e.At.Format("15:04"), e.Err)
}

func (e IntervalError) Unwrap() error { return e.Err }
