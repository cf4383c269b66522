package routing

// Wire types for the external directions service. Field names follow the
// provider's JSON; only the fields the reconciliation pipeline reads are
// declared.

// Response is the top-level directions payload.
type Response struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Routes       []Route `json:"routes"`
}

// Route is one alternative journey between origin and destination.
type Route struct {
	Summary string     `json:"summary,omitempty"`
	Legs    []RouteLeg `json:"legs"`
}

// RouteLeg spans origin to destination; transit journeys carry one.
type RouteLeg struct {
	DepartureTime *TimeText `json:"departure_time,omitempty"`
	ArrivalTime   *TimeText `json:"arrival_time,omitempty"`
	StartAddress  string    `json:"start_address,omitempty"`
	EndAddress    string    `json:"end_address,omitempty"`
	Steps         []Step    `json:"steps"`
}

// Step is a single movement: walking, or one transit ride.
type Step struct {
	TravelMode     string          `json:"travel_mode"`
	TransitDetails *TransitDetails `json:"transit_details,omitempty"`
}

// TransitDetails describes the ride taken during a TRANSIT step.
type TransitDetails struct {
	DepartureStop Stop     `json:"departure_stop"`
	ArrivalStop   Stop     `json:"arrival_stop"`
	DepartureTime TimeText `json:"departure_time"`
	ArrivalTime   TimeText `json:"arrival_time"`
	Headsign      string   `json:"headsign,omitempty"`
	NumStops      int      `json:"num_stops,omitempty"`
	Line          Line     `json:"line"`
}

// Line identifies the service operating a transit step.
type Line struct {
	Name      string   `json:"name,omitempty"`
	ShortName string   `json:"short_name,omitempty"`
	Vehicle   Vehicle  `json:"vehicle"`
	Agencies  []Agency `json:"agencies,omitempty"`
}

// Vehicle carries the provider's vehicle classification.
type Vehicle struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// Agency is the carrier named on a line.
type Agency struct {
	Name string `json:"name"`
}

// Stop is a named boarding or alighting point.
type Stop struct {
	Name string `json:"name"`
}

// TimeText is the provider's time representation: localized display text
// plus a unix timestamp.
type TimeText struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}
