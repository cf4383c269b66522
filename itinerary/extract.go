package itinerary

import (
	"log"
	"strings"

	"github.com/railmatch/railmatch/routing"
	"github.com/railmatch/railmatch/timetable"
)

// Extractor walks routing-service routes and keeps only the rail legs that
// reconcile against the authoritative timetable.
type Extractor struct {
	Index *timetable.Index
	// Operator is the authoritative rail carrier. A transit step run by any
	// other carrier voids the whole candidate route, not just the step.
	Operator string
}

// ExtractRoute reconciles one route alternative into an Itinerary.
// Returns ok=false when the route must be discarded: it touches a foreign
// operator, or no step survived reconciliation.
func (x *Extractor) ExtractRoute(route routing.Route) (Itinerary, bool) {
	var out Itinerary
	foreign := false
	for _, routeLeg := range route.Legs {
		for _, step := range routeLeg.Steps {
			if step.TravelMode != "TRANSIT" || step.TransitDetails == nil {
				continue
			}
			td := step.TransitDetails
			if !x.operatorMatches(td.Line.Agencies) {
				foreign = true
				continue
			}
			if td.Line.Vehicle.Type != "HEAVY_RAIL" {
				continue
			}
			leg, ok := x.reconcileStep(td)
			if !ok {
				continue
			}
			out.Legs = append(out.Legs, leg)
		}
	}
	if foreign || len(out.Legs) == 0 {
		return Itinerary{}, false
	}
	return out, true
}

// reconcileStep binds a transit step to a scheduled trip and its boarding
// and alighting stops. Any miss drops the step, logged, and processing
// continues with the next one.
func (x *Extractor) reconcileStep(td *routing.TransitDetails) (Leg, bool) {
	cands := x.Index.ByShortName(td.Line.ShortName)
	trip := timetable.ResolveTrip(cands, td.DepartureTime.Text, td.DepartureStop.Name)
	if trip == nil {
		log.Printf("unmatched trip %q departing %q at %s", td.Line.ShortName, td.DepartureStop.Name, td.DepartureTime.Text)
		return Leg{}, false
	}
	fromIdx, ok := timetable.FindStopIndex(trip, td.DepartureStop.Name)
	if !ok {
		log.Printf("trip %s: no stop matching %q", trip.TripID, td.DepartureStop.Name)
		return Leg{}, false
	}
	toIdx, ok := timetable.FindStopIndex(trip, td.ArrivalStop.Name)
	if !ok {
		log.Printf("trip %s: no stop matching %q", trip.TripID, td.ArrivalStop.Name)
		return Leg{}, false
	}
	return Leg{
		TripID:        trip.TripID,
		TripShortName: trip.TripShortName,
		Stops:         trip.Stops,
		From:          trip.Stops[fromIdx].StopID,
		To:            trip.Stops[toIdx].StopID,
	}, true
}

func (x *Extractor) operatorMatches(agencies []routing.Agency) bool {
	op := strings.ToLower(x.Operator)
	for _, ag := range agencies {
		name := strings.ToLower(ag.Name)
		if strings.Contains(name, op) || strings.Contains(op, name) {
			return true
		}
	}
	return false
}
