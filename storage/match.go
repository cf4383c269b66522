package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/railmatch/railmatch/matchindex"
)

// PGMatchStore persists MatchRecords and route summaries in Postgres. It
// implements matchindex.MatchStore and matchindex.SummaryStore.
type PGMatchStore struct {
	DB *sql.DB
}

func (s *PGMatchStore) Upsert(ctx context.Context, rec matchindex.MatchRecord) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO train_matches (date, trip_id, user_id, from_stop, to_stop, confirmed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (date, trip_id, user_id)
		 DO UPDATE SET from_stop = EXCLUDED.from_stop, to_stop = EXCLUDED.to_stop, confirmed = EXCLUDED.confirmed`,
		rec.Date, rec.TripID, rec.UserID, rec.From, rec.To, rec.Confirmed)
	if err != nil {
		return &PersistenceError{Op: fmt.Sprintf("upsert match (%s, %s, %s)", rec.Date, rec.TripID, rec.UserID), Err: err}
	}
	return nil
}

func (s *PGMatchStore) Delete(ctx context.Context, date, tripID, userID string) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM train_matches WHERE date = $1 AND trip_id = $2 AND user_id = $3`,
		date, tripID, userID)
	if err != nil {
		return &PersistenceError{Op: fmt.Sprintf("delete match (%s, %s, %s)", date, tripID, userID), Err: err}
	}
	return nil
}

func (s *PGMatchStore) UsersOn(ctx context.Context, date, tripID string) ([]matchindex.MatchRecord, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT date, trip_id, user_id, from_stop, to_stop, confirmed
		 FROM train_matches WHERE date = $1 AND trip_id = $2 ORDER BY user_id`,
		date, tripID)
	if err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("query matches (%s, %s)", date, tripID), Err: err}
	}
	defer rows.Close()
	var out []matchindex.MatchRecord
	for rows.Next() {
		var rec matchindex.MatchRecord
		if err := rows.Scan(&rec.Date, &rec.TripID, &rec.UserID, &rec.From, &rec.To, &rec.Confirmed); err != nil {
			return nil, &PersistenceError{Op: "scan match", Err: err}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate matches", Err: err}
	}
	return out, nil
}

// Replace swaps the summary rows for (eventID, userID) in one transaction.
// Delete-then-insert keeps a shrink in itinerary count from leaving stale
// routes behind.
func (s *PGMatchStore) Replace(ctx context.Context, eventID, userID string, routes [][]string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "begin summary replace", Err: err}
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM route_summaries WHERE event_id = $1 AND user_id = $2`, eventID, userID); err != nil {
		return &PersistenceError{Op: fmt.Sprintf("clear summaries for event %s", eventID), Err: err}
	}
	for i, trips := range routes {
		encoded, err := json.Marshal(trips)
		if err != nil {
			return &PersistenceError{Op: "encode summary", Err: err}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO route_summaries (event_id, user_id, position, trip_ids) VALUES ($1, $2, $3, $4)`,
			eventID, userID, i, string(encoded)); err != nil {
			return &PersistenceError{Op: fmt.Sprintf("insert summary %d for event %s", i, eventID), Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit summary replace", Err: err}
	}
	return nil
}

func (s *PGMatchStore) Routes(ctx context.Context, eventID, userID string) ([][]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT trip_ids FROM route_summaries WHERE event_id = $1 AND user_id = $2 ORDER BY position`,
		eventID, userID)
	if err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("query summaries for event %s", eventID), Err: err}
	}
	defer rows.Close()
	var out [][]string
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, &PersistenceError{Op: "scan summary", Err: err}
		}
		var trips []string
		if err := json.Unmarshal([]byte(encoded), &trips); err != nil {
			return nil, &PersistenceError{Op: "decode summary", Err: err}
		}
		out = append(out, trips)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate summaries", Err: err}
	}
	return out, nil
}
