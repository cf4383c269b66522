package timetable

import "testing"

func TestNormalizeClockTime(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"12h with narrow no-break space", "6:32\u202fPM", "18:32"},
		{"12h with no-break space", "6:32\u00a0AM", "06:32"},
		{"12h with plain space", "11:05 PM", "23:05"},
		{"24h passthrough", "09:15", "09:15"},
		{"24h with seconds", "14:30:00", "14:30"},
		{"midnight", "12:00 AM", "00:00"},
		{"noon", "12:00 PM", "12:00"},
		{"unparseable falls back to prefix", "morningish", "morni"},
		{"short garbage kept whole", "n/a", "n/a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeClockTime(tc.in); got != tc.want {
				t.Fatalf("NormalizeClockTime(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestResolveTripSingleCandidate(t *testing.T) {
	only := &ScheduledTrip{TripID: "solo", Stops: []StopTime{
		{StopName: "Alpha", DepartureTime: "06:10:00"},
	}}
	// With one candidate there is nothing to disambiguate, even on mismatch.
	got := ResolveTrip([]*ScheduledTrip{only}, "9:99 PM", "Nowhere")
	if got != only {
		t.Fatal("single candidate must be returned unconditionally")
	}
}

func TestResolveTripByDepartureTime(t *testing.T) {
	morning := &ScheduledTrip{TripID: "morning", Stops: []StopTime{
		{StopName: "Alpha", DepartureTime: "06:32:00"},
		{StopName: "Beta", DepartureTime: "07:00:00"},
	}}
	evening := &ScheduledTrip{TripID: "evening", Stops: []StopTime{
		{StopName: "Alpha", DepartureTime: "18:32:00"},
		{StopName: "Beta", DepartureTime: "19:00:00"},
	}}
	got := ResolveTrip([]*ScheduledTrip{morning, evening}, "6:32\u202fPM", "Alpha")
	if got != evening {
		t.Fatalf("expected evening trip, got %v", got)
	}
}

func TestResolveTripMostStopsTieBreak(t *testing.T) {
	short := &ScheduledTrip{TripID: "short", Stops: []StopTime{
		{StopName: "Alpha", DepartureTime: "06:32:00"},
		{StopName: "Beta", DepartureTime: "06:50:00"},
	}}
	full := &ScheduledTrip{TripID: "full", Stops: []StopTime{
		{StopName: "Alpha", DepartureTime: "06:32:00"},
		{StopName: "Beta", DepartureTime: "06:50:00"},
		{StopName: "Gamma", DepartureTime: "07:10:00"},
	}}
	got := ResolveTrip([]*ScheduledTrip{short, full}, "6:32 AM", "Alpha")
	if got != full {
		t.Fatal("tie on departure time should prefer the trip with more stops")
	}
}

func TestResolveTripNoMatch(t *testing.T) {
	a := &ScheduledTrip{TripID: "a", Stops: []StopTime{{StopName: "Alpha", DepartureTime: "06:32:00"}}}
	b := &ScheduledTrip{TripID: "b", Stops: []StopTime{{StopName: "Alpha", DepartureTime: "07:32:00"}}}

	if got := ResolveTrip([]*ScheduledTrip{a, b}, "9:00 PM", "Alpha"); got != nil {
		t.Fatalf("expected nil when no departure time matches, got %s", got.TripID)
	}
	if got := ResolveTrip(nil, "6:32 AM", "Alpha"); got != nil {
		t.Fatal("expected nil for empty candidate set")
	}
}
