package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/railmatch/railmatch/routing"
	"github.com/railmatch/railmatch/timetable"
)

// Planner is the slice of the directions client the sampler needs.
type Planner interface {
	TransitRoutes(ctx context.Context, origin, destination string, arriveBy time.Time) (*routing.Response, error)
}

// ResponseArchive persists raw routing responses for later inspection.
// Optional; a nil archive disables archiving.
type ResponseArchive interface {
	Put(ctx context.Context, path string, data []byte) error
}

// Sampler issues one routing query per sub-interval of an event window and
// aggregates the reconciled itineraries.
//
// The loop is strictly sequential. One interval's failure is recorded and
// the next interval proceeds; there is no retry.
type Sampler struct {
	Planner   Planner
	Extractor *Extractor
	// Step between samples. Zero falls back to 30 minutes.
	Step time.Duration

	Archive       ResponseArchive
	ArchivePrefix string
}

// Sample walks the window [start, end] inclusive and returns the finalized
// option set plus the per-interval error list. The success flag of the whole
// run is the error list being empty; itineraries from successful intervals
// are returned regardless.
func (s *Sampler) Sample(ctx context.Context, origin, destination string, start, end time.Time) (OptionsSet, []IntervalError) {
	step := s.Step
	if step <= 0 {
		step = 30 * time.Minute
	}
	out := OptionsSet{Origin: origin, Destination: destination}
	var errs []IntervalError
	for t := start; !t.After(end); t = t.Add(step) {
		resp, err := s.Planner.TransitRoutes(ctx, origin, destination, t)
		if err != nil {
			errs = append(errs, IntervalError{At: t, Err: err})
			continue
		}
		s.archive(ctx, t, resp)
		for _, route := range resp.Routes {
			if it, ok := s.Extractor.ExtractRoute(route); ok {
				out.Itineraries = append(out.Itineraries, it)
			}
		}
	}
	out.Itineraries = Finalize(out.Itineraries, start, end)
	return out, errs
}

func (s *Sampler) archive(ctx context.Context, t time.Time, resp *routing.Response) {
	if s.Archive == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	path := fmt.Sprintf("%s_%s.json", s.ArchivePrefix, t.Format("2006-01-02T15-04"))
	if err := s.Archive.Put(ctx, path, data); err != nil {
		log.Printf("archive %s: %v", path, err)
	}
}

// Finalize dedupes, window-filters, and sorts accumulated itineraries.
// Idempotent: finalizing an already finalized list is a no-op.
func Finalize(its []Itinerary, start, end time.Time) []Itinerary {
	its = dedupe(its)
	its = filterWindow(its, start, end)
	sortByFirstDeparture(its)
	return its
}

// dedupe drops itineraries whose full structural content repeats, keeping
// the first occurrence in place.
func dedupe(its []Itinerary) []Itinerary {
	seen := make(map[string]struct{}, len(its))
	out := its[:0]
	for _, it := range its {
		key, err := json.Marshal(it)
		if err != nil {
			out = append(out, it)
			continue
		}
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, it)
	}
	return out
}

// filterWindow drops itineraries with a boarding or alighting stop whose
// scheduled arrival falls outside the window's wall-clock bounds, both ends
// inclusive. Stops without a parseable arrival time pass the filter.
func filterWindow(its []Itinerary, start, end time.Time) []Itinerary {
	startSec := secondsOfDay(start)
	endSec := secondsOfDay(end)
	inside := func(sec int) bool {
		if startSec <= endSec {
			return sec >= startSec && sec <= endSec
		}
		// window spans midnight
		return sec >= startSec || sec <= endSec
	}
	stopInside := func(st timetable.StopTime, found bool) bool {
		if !found {
			return true
		}
		sec, ok := clockSeconds(st.ArrivalTime)
		if !ok {
			return true
		}
		return inside(sec)
	}
	out := its[:0]
	for _, it := range its {
		keep := true
		for _, leg := range it.Legs {
			if !stopInside(leg.FromStop()) || !stopInside(leg.ToStop()) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

func sortByFirstDeparture(its []Itinerary) {
	sort.SliceStable(its, func(i, j int) bool {
		di, iok := its[i].firstDeparture()
		dj, jok := its[j].firstDeparture()
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		si, _ := clockSeconds(di)
		sj, _ := clockSeconds(dj)
		return si < sj
	})
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// clockSeconds parses HH:MM[:SS] into seconds since midnight of the service
// day. GTFS hours past 23 mark stops after midnight; they stay unwrapped so
// a 24:30 stop orders after 23:59 in the filter and the sort.
func clockSeconds(s string) (int, bool) {
	var h, m, sec int
	if n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil || n < 2 {
		if n2, err2 := fmt.Sscanf(s, "%d:%d", &h, &m); err2 != nil || n2 != 2 {
			return 0, false
		}
		sec = 0
	}
	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}
