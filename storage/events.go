package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/railmatch/railmatch/event"
)

// PGEventStore persists event records. It implements event.Store.
type PGEventStore struct {
	DB *sql.DB
}

func (s *PGEventStore) Get(ctx context.Context, id string) (event.Event, error) {
	var ev event.Event
	var recurrenceEnd sql.NullTime
	err := s.DB.QueryRowContext(ctx,
		`SELECT event_id, owner_id, origin, destination, event_start, event_end, recurring, recurrence_end
		 FROM events WHERE event_id = $1`, id).
		Scan(&ev.ID, &ev.OwnerID, &ev.Origin, &ev.Destination, &ev.Start, &ev.End, &ev.Recurring, &recurrenceEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, ErrNotFound
	}
	if err != nil {
		return event.Event{}, &PersistenceError{Op: fmt.Sprintf("get event %s", id), Err: err}
	}
	if recurrenceEnd.Valid {
		ev.RecurrenceEnd = recurrenceEnd.Time
	}
	return ev, nil
}

func (s *PGEventStore) Put(ctx context.Context, ev event.Event) error {
	recurrenceEnd := sql.NullTime{Time: ev.RecurrenceEnd, Valid: !ev.RecurrenceEnd.IsZero()}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO events (event_id, owner_id, origin, destination, event_start, event_end, recurring, recurrence_end)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (event_id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			origin = EXCLUDED.origin,
			destination = EXCLUDED.destination,
			event_start = EXCLUDED.event_start,
			event_end = EXCLUDED.event_end,
			recurring = EXCLUDED.recurring,
			recurrence_end = EXCLUDED.recurrence_end`,
		ev.ID, ev.OwnerID, ev.Origin, ev.Destination, ev.Start, ev.End, ev.Recurring, recurrenceEnd)
	if err != nil {
		return &PersistenceError{Op: fmt.Sprintf("put event %s", ev.ID), Err: err}
	}
	return nil
}

func (s *PGEventStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE event_id = $1`, id)
	if err != nil {
		return &PersistenceError{Op: fmt.Sprintf("delete event %s", id), Err: err}
	}
	return nil
}

// ForUserOnDate lists the user's events applying to a date: either starting
// on it, or weekly-recurring from an earlier date on the same weekday with
// the recurrence still open.
func (s *PGEventStore) ForUserOnDate(ctx context.Context, userID, date string) ([]event.Event, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT event_id, owner_id, origin, destination, event_start, event_end, recurring, recurrence_end
		 FROM events
		 WHERE owner_id = $1
		   AND (event_start::date = $2::date
		     OR (recurring
		       AND event_start::date <= $2::date
		       AND (recurrence_end IS NULL OR recurrence_end::date >= $2::date)
		       AND EXTRACT(DOW FROM event_start) = EXTRACT(DOW FROM $2::date)))
		 ORDER BY event_start`,
		userID, date)
	if err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("query events for %s on %s", userID, date), Err: err}
	}
	defer rows.Close()
	var out []event.Event
	for rows.Next() {
		var ev event.Event
		var recurrenceEnd sql.NullTime
		if err := rows.Scan(&ev.ID, &ev.OwnerID, &ev.Origin, &ev.Destination, &ev.Start, &ev.End, &ev.Recurring, &recurrenceEnd); err != nil {
			return nil, &PersistenceError{Op: "scan event", Err: err}
		}
		if recurrenceEnd.Valid {
			ev.RecurrenceEnd = recurrenceEnd.Time
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate events", Err: err}
	}
	return out, nil
}
