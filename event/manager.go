package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/railmatch/railmatch/itinerary"
	"github.com/railmatch/railmatch/matchindex"
)

// Windower samples an event window into candidate itineraries.
type Windower interface {
	Sample(ctx context.Context, origin, destination string, start, end time.Time) (itinerary.OptionsSet, []itinerary.IntervalError)
}

// Manager runs the pipeline in response to event lifecycle triggers and
// serves the read-side day view. Invocations are independent; all shared
// state lives in the stores.
type Manager struct {
	Sampler   Windower
	Writer    *matchindex.Writer
	Annotator *matchindex.Annotator
	Events    Store
	Blobs     Blobs

	OptionsPrefix  string
	DayPrefix      string
	MaxOccurrences int
}

func (m *Manager) optionsPath(eventID string) string {
	return fmt.Sprintf("%s_%s.json", m.OptionsPrefix, eventID)
}

func (m *Manager) dates(ev Event) []string {
	end := time.Time{}
	if ev.Recurring {
		end = ev.RecurrenceEnd
	}
	return matchindex.ExpandDates(ev.Start, end, m.MaxOccurrences)
}

// HandleCreated computes and publishes itineraries for a new event. The
// result carries best-effort data even when intervals failed; Success is
// false in that case.
func (m *Manager) HandleCreated(ctx context.Context, ev Event) (Result, error) {
	if err := ev.Validate(); err != nil {
		return Result{}, err
	}
	if err := m.Events.Put(ctx, ev); err != nil {
		return Result{}, err
	}
	set, errs := m.Sampler.Sample(ctx, ev.Origin, ev.Destination, ev.Start, ev.End)
	res := Result{EventID: ev.ID, Options: set, Errors: errs, Path: m.optionsPath(ev.ID)}

	data, err := json.Marshal(set)
	if err != nil {
		return res, err
	}
	if err := m.Blobs.Put(ctx, res.Path, data); err != nil {
		return res, err
	}
	if err := m.Writer.Publish(ctx, set.Itineraries, ev.ID, ev.OwnerID, m.dates(ev)); err != nil {
		return res, err
	}
	return res, nil
}

// HandleUpdated recomputes only when the change invalidates prior output.
// Prior MatchRecords for the old shape are cleared first, then the create
// path runs against the new shape.
func (m *Manager) HandleUpdated(ctx context.Context, ev Event) (Result, error) {
	if err := ev.Validate(); err != nil {
		return Result{}, err
	}
	prev, err := m.Events.Get(ctx, ev.ID)
	if err == nil && !ev.MaterialChange(prev) {
		if err := m.Events.Put(ctx, ev); err != nil {
			return Result{}, err
		}
		return Result{EventID: ev.ID, Path: m.optionsPath(ev.ID)}, nil
	}
	if err == nil {
		if err := m.Writer.Unpublish(ctx, prev.ID, prev.OwnerID, m.dates(prev)); err != nil {
			return Result{}, err
		}
	} else {
		log.Printf("update for unknown event %s, treating as create", ev.ID)
	}
	return m.HandleCreated(ctx, ev)
}

// HandleDeleted clears the event's MatchRecords and summaries, then drops
// the event record itself.
func (m *Manager) HandleDeleted(ctx context.Context, eventID string) error {
	ev, err := m.Events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if err := m.Writer.Unpublish(ctx, ev.ID, ev.OwnerID, m.dates(ev)); err != nil {
		return err
	}
	return m.Events.Delete(ctx, eventID)
}

// DayView merges the friend-annotated option sets of every event the user
// has on a date, keyed by event id. The merged document is also archived
// under the day prefix.
func (m *Manager) DayView(ctx context.Context, userID, date string) (map[string][]matchindex.AnnotatedItinerary, error) {
	if _, err := time.Parse(matchindex.DateLayout, date); err != nil {
		return nil, &InputError{Msg: "bad date " + date}
	}
	events, err := m.Events.ForUserOnDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	view := make(map[string][]matchindex.AnnotatedItinerary, len(events))
	for _, ev := range events {
		data, err := m.Blobs.Get(ctx, m.optionsPath(ev.ID))
		if err != nil {
			log.Printf("day view: no options for event %s: %v", ev.ID, err)
			continue
		}
		var set itinerary.OptionsSet
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("day view: corrupt options for event %s: %w", ev.ID, err)
		}
		annotated, err := m.Annotator.Annotate(ctx, date, userID, set.Itineraries)
		if err != nil {
			return nil, err
		}
		view[ev.ID] = annotated
	}
	if data, err := json.Marshal(view); err == nil {
		path := fmt.Sprintf("%s_%s_%s.json", m.DayPrefix, userID, date)
		if err := m.Blobs.Put(ctx, path, data); err != nil {
			log.Printf("day view: archive %s: %v", path, err)
		}
	}
	return view, nil
}

// OneOffOptions samples a window without touching the matching index, for
// exploratory queries. The artifact lands at a random path under the
// options prefix.
func (m *Manager) OneOffOptions(ctx context.Context, origin, destination string, start, end time.Time) (Result, error) {
	if origin == "" || destination == "" {
		return Result{}, &InputError{Msg: "missing origin or destination"}
	}
	if end.Before(start) {
		return Result{}, &InputError{Msg: "window ends before it starts"}
	}
	set, errs := m.Sampler.Sample(ctx, origin, destination, start, end)
	res := Result{Options: set, Errors: errs, Path: fmt.Sprintf("%s_%s.json", m.OptionsPrefix, uuid.NewString())}
	data, err := json.Marshal(set)
	if err != nil {
		return res, err
	}
	if err := m.Blobs.Put(ctx, res.Path, data); err != nil {
		return res, err
	}
	return res, nil
}
