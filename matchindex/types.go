package matchindex

import (
	"context"

	"github.com/railmatch/railmatch/itinerary"
)

// DateLayout is the wire form of index dates.
const DateLayout = "2006-01-02"

// MatchRecord is the atomic unit of the matching index: one user riding one
// trip on one date. From and To are stop ids on that trip.
type MatchRecord struct {
	Date      string `json:"date"`
	TripID    string `json:"trip_id"`
	UserID    string `json:"user_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Confirmed bool   `json:"confirmed"`
}

// Friend is a directory entry for annotation.
type Friend struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Picture  string `json:"picture"`
}

// LegFriend is one friend found riding the same trip as a leg.
type LegFriend struct {
	Friend
	From      string `json:"from"`
	To        string `json:"to"`
	Confirmed bool   `json:"confirmed"`
}

// AnnotatedLeg is a Leg augmented with the friends sharing it. Computed at
// read time, never persisted.
type AnnotatedLeg struct {
	itinerary.Leg
	Friends []LegFriend `json:"friends"`
}

// AnnotatedItinerary mirrors itinerary.Itinerary with annotated legs.
type AnnotatedItinerary struct {
	Legs []AnnotatedLeg `json:"legs"`
}

// MatchStore is the persistence surface for MatchRecords.
type MatchStore interface {
	Upsert(ctx context.Context, rec MatchRecord) error
	// Delete is a no-op when the record is already absent.
	Delete(ctx context.Context, date, tripID, userID string) error
	UsersOn(ctx context.Context, date, tripID string) ([]MatchRecord, error)
}

// SummaryStore keeps the compact per-user route summaries of an event.
type SummaryStore interface {
	// Replace swaps the full summary set for (eventID, userID); stale routes
	// from a prior computation never survive a shrink.
	Replace(ctx context.Context, eventID, userID string, routes [][]string) error
	Routes(ctx context.Context, eventID, userID string) ([][]string, error)
}

// FriendDirectory resolves a user's usable friends: mutual, and ghosted in
// neither direction.
type FriendDirectory interface {
	MutualFriends(ctx context.Context, userID string) ([]Friend, error)
}
