package event

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/railmatch/railmatch/itinerary"
	"github.com/railmatch/railmatch/matchindex"
	"github.com/railmatch/railmatch/timetable"
)

type fakeSampler struct {
	calls int
	set   itinerary.OptionsSet
	errs  []itinerary.IntervalError
}

func (f *fakeSampler) Sample(ctx context.Context, origin, destination string, start, end time.Time) (itinerary.OptionsSet, []itinerary.IntervalError) {
	f.calls++
	set := f.set
	set.Origin, set.Destination = origin, destination
	return set, f.errs
}

type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: make(map[string][]byte)} }

func (m *memBlobs) Put(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = data
	return nil
}

func (m *memBlobs) Get(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[path]
	if !ok {
		return nil, errors.New("no blob at " + path)
	}
	return data, nil
}

type memEvents struct {
	events map[string]Event
}

func newMemEvents() *memEvents { return &memEvents{events: make(map[string]Event)} }

func (m *memEvents) Get(ctx context.Context, id string) (Event, error) {
	ev, ok := m.events[id]
	if !ok {
		return Event{}, errors.New("no event " + id)
	}
	return ev, nil
}

func (m *memEvents) Put(ctx context.Context, ev Event) error {
	m.events[ev.ID] = ev
	return nil
}

func (m *memEvents) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *memEvents) ForUserOnDate(ctx context.Context, userID, date string) ([]Event, error) {
	day, err := time.Parse(matchindex.DateLayout, date)
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, ev := range m.events {
		if ev.OwnerID != userID {
			continue
		}
		if ev.Start.Format(matchindex.DateLayout) == date {
			out = append(out, ev)
			continue
		}
		if ev.Recurring && !ev.Start.After(day) && !ev.RecurrenceEnd.Before(day) && ev.Start.Weekday() == day.Weekday() {
			out = append(out, ev)
		}
	}
	return out, nil
}

type memMatches struct {
	matches   map[string]matchindex.MatchRecord
	summaries map[string][][]string
}

func newMemMatches() *memMatches {
	return &memMatches{
		matches:   make(map[string]matchindex.MatchRecord),
		summaries: make(map[string][][]string),
	}
}

func (m *memMatches) Upsert(ctx context.Context, rec matchindex.MatchRecord) error {
	m.matches[rec.Date+"|"+rec.TripID+"|"+rec.UserID] = rec
	return nil
}

func (m *memMatches) Delete(ctx context.Context, date, tripID, userID string) error {
	delete(m.matches, date+"|"+tripID+"|"+userID)
	return nil
}

func (m *memMatches) UsersOn(ctx context.Context, date, tripID string) ([]matchindex.MatchRecord, error) {
	var out []matchindex.MatchRecord
	for _, rec := range m.matches {
		if rec.Date == date && rec.TripID == tripID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memMatches) Replace(ctx context.Context, eventID, userID string, routes [][]string) error {
	m.summaries[eventID+"|"+userID] = routes
	return nil
}

func (m *memMatches) Routes(ctx context.Context, eventID, userID string) ([][]string, error) {
	return m.summaries[eventID+"|"+userID], nil
}

type memFriends struct {
	friends map[string][]matchindex.Friend
}

func (m *memFriends) MutualFriends(ctx context.Context, userID string) ([]matchindex.Friend, error) {
	return m.friends[userID], nil
}

func oneItinerary(tripID string) itinerary.Itinerary {
	return itinerary.Itinerary{Legs: []itinerary.Leg{{
		TripID: tripID,
		From:   "a",
		To:     "b",
		Stops: []timetable.StopTime{
			{StopID: "a", StopName: "Alpha", StopSequence: 1, DepartureTime: "06:32:00"},
			{StopID: "b", StopName: "Beta", StopSequence: 2, ArrivalTime: "07:10:00"},
		},
	}}}
}

type fixture struct {
	manager *Manager
	sampler *fakeSampler
	blobs   *memBlobs
	events  *memEvents
	matches *memMatches
}

func newFixture(tripID string) *fixture {
	sampler := &fakeSampler{set: itinerary.OptionsSet{Itineraries: []itinerary.Itinerary{oneItinerary(tripID)}}}
	blobs := newMemBlobs()
	events := newMemEvents()
	matches := newMemMatches()
	return &fixture{
		manager: &Manager{
			Sampler:        sampler,
			Writer:         &matchindex.Writer{Matches: matches, Summaries: matches},
			Annotator:      &matchindex.Annotator{Matches: matches, Friends: &memFriends{friends: map[string][]matchindex.Friend{}}},
			Events:         events,
			Blobs:          blobs,
			OptionsPrefix:  "maps/events/event_options",
			DayPrefix:      "maps/day_events",
			MaxOccurrences: 53,
		},
		sampler: sampler,
		blobs:   blobs,
		events:  events,
		matches: matches,
	}
}

func weeklyEvent() Event {
	return Event{
		ID:            "ev1",
		OwnerID:       "u1",
		Origin:        "Ponte San Pietro",
		Destination:   "Treviglio Ovest",
		Start:         time.Date(2025, 5, 6, 6, 0, 0, 0, time.UTC),
		End:           time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
		Recurring:     true,
		RecurrenceEnd: time.Date(2025, 5, 27, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleCreated(t *testing.T) {
	f := newFixture("T1")
	ctx := context.Background()

	res, err := f.manager.HandleCreated(ctx, weeklyEvent())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success() {
		t.Fatal("expected success with no interval errors")
	}
	if res.Path != "maps/events/event_options_ev1.json" {
		t.Fatalf("unexpected artifact path %q", res.Path)
	}
	data, err := f.blobs.Get(ctx, res.Path)
	if err != nil {
		t.Fatal(err)
	}
	var set itinerary.OptionsSet
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatal(err)
	}
	if len(set.Itineraries) != 1 {
		t.Fatalf("artifact should carry the option set, got %+v", set)
	}
	// Weekly recurrence through 2025-05-27 expands to four Tuesdays.
	if len(f.matches.matches) != 4 {
		t.Fatalf("expected 4 match records, got %d", len(f.matches.matches))
	}
	for _, date := range []string{"2025-05-06", "2025-05-13", "2025-05-20", "2025-05-27"} {
		if _, ok := f.matches.matches[date+"|T1|u1"]; !ok {
			t.Fatalf("missing record for %s", date)
		}
	}
}

func TestHandleCreatedPartialFailure(t *testing.T) {
	f := newFixture("T1")
	f.sampler.errs = []itinerary.IntervalError{{At: time.Now(), Err: errors.New("boom")}}

	res, err := f.manager.HandleCreated(context.Background(), weeklyEvent())
	if err != nil {
		t.Fatal(err)
	}
	if res.Success() {
		t.Fatal("any failed interval must flip the success flag")
	}
	// Best-effort data is still published.
	if len(f.matches.matches) == 0 {
		t.Fatal("itineraries from good intervals must still be published")
	}
}

func TestHandleCreatedInvalid(t *testing.T) {
	f := newFixture("T1")
	ev := weeklyEvent()
	ev.Origin = ""
	_, err := f.manager.HandleCreated(context.Background(), ev)
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InputError, got %v", err)
	}
	if f.sampler.calls != 0 {
		t.Fatal("invalid events must not reach the sampler")
	}
}

func TestHandleUpdatedImmaterial(t *testing.T) {
	f := newFixture("T1")
	ctx := context.Background()
	ev := weeklyEvent()
	if _, err := f.manager.HandleCreated(ctx, ev); err != nil {
		t.Fatal(err)
	}
	calls := f.sampler.calls

	if _, err := f.manager.HandleUpdated(ctx, ev); err != nil {
		t.Fatal(err)
	}
	if f.sampler.calls != calls {
		t.Fatal("an immaterial update must not recompute")
	}
}

func TestHandleUpdatedMaterial(t *testing.T) {
	f := newFixture("T1")
	ctx := context.Background()
	ev := weeklyEvent()
	if _, err := f.manager.HandleCreated(ctx, ev); err != nil {
		t.Fatal(err)
	}
	// New destination resolves to a different trip.
	f.sampler.set = itinerary.OptionsSet{Itineraries: []itinerary.Itinerary{oneItinerary("T2")}}
	changed := ev
	changed.Destination = "Bergamo"

	if _, err := f.manager.HandleUpdated(ctx, changed); err != nil {
		t.Fatal(err)
	}
	for key := range f.matches.matches {
		if strings.Contains(key, "|T1|") {
			t.Fatalf("stale record survived the update: %s", key)
		}
	}
	if _, ok := f.matches.matches["2025-05-06|T2|u1"]; !ok {
		t.Fatal("new records missing after material update")
	}
}

func TestHandleDeleted(t *testing.T) {
	f := newFixture("T1")
	ctx := context.Background()
	if _, err := f.manager.HandleCreated(ctx, weeklyEvent()); err != nil {
		t.Fatal(err)
	}
	if err := f.manager.HandleDeleted(ctx, "ev1"); err != nil {
		t.Fatal(err)
	}
	if len(f.matches.matches) != 0 {
		t.Fatalf("match records must be cleared on delete, got %v", f.matches.matches)
	}
	if _, err := f.events.Get(ctx, "ev1"); err == nil {
		t.Fatal("event record must be gone")
	}
}

func TestDayView(t *testing.T) {
	f := newFixture("T1")
	ctx := context.Background()
	if _, err := f.manager.HandleCreated(ctx, weeklyEvent()); err != nil {
		t.Fatal(err)
	}
	// A friend riding T1 on a recurrence date shows up in the view.
	f.manager.Annotator.Friends = &memFriends{friends: map[string][]matchindex.Friend{
		"u1": {{UserID: "u2", Username: "ada"}},
	}}
	f.matches.Upsert(ctx, matchindex.MatchRecord{Date: "2025-05-13", TripID: "T1", UserID: "u2", From: "a", To: "b"})

	view, err := f.manager.DayView(ctx, "u1", "2025-05-13")
	if err != nil {
		t.Fatal(err)
	}
	its, ok := view["ev1"]
	if !ok || len(its) != 1 {
		t.Fatalf("expected the recurring event in the day view, got %v", view)
	}
	friends := its[0].Legs[0].Friends
	if len(friends) != 1 || friends[0].UserID != "u2" {
		t.Fatalf("expected friend annotation, got %+v", friends)
	}
	// The merged view is archived.
	if _, err := f.blobs.Get(ctx, "maps/day_events_u1_2025-05-13.json"); err != nil {
		t.Fatal("day view artifact missing")
	}
}

func TestDayViewBadDate(t *testing.T) {
	f := newFixture("T1")
	_, err := f.manager.DayView(context.Background(), "u1", "13/05/2025")
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestOneOffOptions(t *testing.T) {
	f := newFixture("T1")
	ctx := context.Background()
	start := time.Date(2025, 5, 6, 6, 0, 0, 0, time.UTC)

	res, err := f.manager.OneOffOptions(ctx, "A", "B", start, start.Add(3*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Path, "maps/events/event_options_") {
		t.Fatalf("unexpected path %q", res.Path)
	}
	if _, err := f.blobs.Get(ctx, res.Path); err != nil {
		t.Fatal("one-off artifact missing")
	}
	// No match records: one-off queries never touch the index.
	if len(f.matches.matches) != 0 {
		t.Fatal("one-off options must not publish match records")
	}
}
