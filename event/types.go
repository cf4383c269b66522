package event

import (
	"context"
	"time"

	"github.com/railmatch/railmatch/itinerary"
)

// Event is a user's planned attendance at something reachable by train.
// Start and End bound the arrival window itineraries are sampled over.
type Event struct {
	ID            string    `json:"event_id"`
	OwnerID       string    `json:"owner_id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Start         time.Time `json:"event_start"`
	End           time.Time `json:"event_end"`
	Recurring     bool      `json:"recurring"`
	RecurrenceEnd time.Time `json:"recurrence_end,omitempty"`
}

// MaterialChange reports whether an update invalidates previously computed
// itineraries. Cosmetic edits (title, notes) never reach this struct.
func (e Event) MaterialChange(prev Event) bool {
	return e.Origin != prev.Origin ||
		e.Destination != prev.Destination ||
		!e.Start.Equal(prev.Start) ||
		!e.End.Equal(prev.End) ||
		e.Recurring != prev.Recurring ||
		!e.RecurrenceEnd.Equal(prev.RecurrenceEnd)
}

// InputError rejects a malformed trigger payload. It aborts the single
// operation immediately; there is no retry.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return "input: " + e.Msg }

// Validate checks the fields the pipeline cannot run without.
func (e Event) Validate() error {
	switch {
	case e.ID == "":
		return &InputError{Msg: "missing event id"}
	case e.OwnerID == "":
		return &InputError{Msg: "missing owner id"}
	case e.Origin == "":
		return &InputError{Msg: "missing origin"}
	case e.Destination == "":
		return &InputError{Msg: "missing destination"}
	case e.Start.IsZero() || e.End.IsZero():
		return &InputError{Msg: "missing event window"}
	case e.End.Before(e.Start):
		return &InputError{Msg: "event window ends before it starts"}
	}
	return nil
}

// Store is the persistence surface for event records.
type Store interface {
	Get(ctx context.Context, id string) (Event, error)
	Put(ctx context.Context, ev Event) error
	Delete(ctx context.Context, id string) error
	// ForUserOnDate lists the user's events applying to a date, recurrence
	// included.
	ForUserOnDate(ctx context.Context, userID, date string) ([]Event, error)
}

// Blobs is the slice of the artifact store the manager writes to.
type Blobs interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
}

// Result is the outcome of one pipeline run. Per the all-or-nothing
// convention, Success reports false whenever any interval failed, even
// though Options still carries whatever the good intervals produced.
type Result struct {
	EventID string                    `json:"event_id"`
	Options itinerary.OptionsSet      `json:"options"`
	Errors  []itinerary.IntervalError `json:"-"`
	Path    string                    `json:"path,omitempty"`
}

func (r *Result) Success() bool { return len(r.Errors) == 0 }
