package matchindex

import (
	"context"
	"fmt"

	"github.com/railmatch/railmatch/itinerary"
)

// Writer publishes finalized itineraries into the matching index.
//
// Publish is idempotent: replaying the same input converges on the same
// stored state. A store failure aborts the publish and surfaces; records
// written before the failure stay in place, and re-publishing is the
// recovery path.
type Writer struct {
	Matches   MatchStore
	Summaries SummaryStore
}

// Publish upserts one MatchRecord per (leg, date) and replaces the event's
// route summaries for the user.
func (w *Writer) Publish(ctx context.Context, its []itinerary.Itinerary, eventID, userID string, dates []string) error {
	for _, it := range its {
		for _, leg := range it.Legs {
			for _, date := range dates {
				rec := MatchRecord{
					Date:   date,
					TripID: leg.TripID,
					UserID: userID,
					From:   leg.From,
					To:     leg.To,
				}
				if err := w.Matches.Upsert(ctx, rec); err != nil {
					return fmt.Errorf("publish match (%s, %s, %s): %w", date, leg.TripID, userID, err)
				}
			}
		}
	}
	routes := make([][]string, len(its))
	for i := range its {
		routes[i] = its[i].TripIDs()
	}
	if err := w.Summaries.Replace(ctx, eventID, userID, routes); err != nil {
		return fmt.Errorf("publish summaries for event %s: %w", eventID, err)
	}
	return nil
}

// Unpublish removes the user's MatchRecords for the event's dates and clears
// the summaries. Absent records delete as no-ops, so unpublishing twice is
// safe.
func (w *Writer) Unpublish(ctx context.Context, eventID, userID string, dates []string) error {
	routes, err := w.Summaries.Routes(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("unpublish: read summaries for event %s: %w", eventID, err)
	}
	for _, trips := range routes {
		for _, tripID := range trips {
			for _, date := range dates {
				if err := w.Matches.Delete(ctx, date, tripID, userID); err != nil {
					return fmt.Errorf("unpublish match (%s, %s, %s): %w", date, tripID, userID, err)
				}
			}
		}
	}
	if err := w.Summaries.Replace(ctx, eventID, userID, nil); err != nil {
		return fmt.Errorf("unpublish summaries for event %s: %w", eventID, err)
	}
	return nil
}
