package timetable

// StopTime is one scheduled call of a trip at a stop. Times are GTFS-style
// wall-clock strings (HH:MM:SS, hours may exceed 23 for after-midnight calls).
type StopTime struct {
	StopID        string `json:"stop_id"`
	StopName      string `json:"stop_name"`
	StopSequence  int    `json:"stop_sequence"`
	ArrivalTime   string `json:"arrival_time"`
	DepartureTime string `json:"departure_time"`
}

// ScheduledTrip is one flattened trip from the authoritative timetable.
// Immutable once loaded for a given run.
type ScheduledTrip struct {
	TripID        string     `json:"trip_id"`
	TripShortName string     `json:"trip_short_name,omitempty"`
	Stops         []StopTime `json:"stops"`
}

// StopTimeByID returns the trip's stop time for a stop id.
func (t *ScheduledTrip) StopTimeByID(stopID string) (StopTime, bool) {
	for _, s := range t.Stops {
		if s.StopID == stopID {
			return s, true
		}
	}
	return StopTime{}, false
}
