package matchindex

import (
	"context"
	"testing"

	"github.com/railmatch/railmatch/itinerary"
)

type memFriends struct {
	friends map[string][]Friend
}

func (m *memFriends) MutualFriends(ctx context.Context, userID string) ([]Friend, error) {
	return m.friends[userID], nil
}

func TestAnnotate(t *testing.T) {
	store := newMemIndex()
	ctx := context.Background()
	for _, rec := range []MatchRecord{
		{Date: "2025-05-06", TripID: "T1", UserID: "me", From: "a", To: "b"},
		{Date: "2025-05-06", TripID: "T1", UserID: "friend", From: "a", To: "c", Confirmed: true},
		{Date: "2025-05-06", TripID: "T1", UserID: "stranger", From: "a", To: "b"},
		{Date: "2025-05-13", TripID: "T1", UserID: "friend", From: "a", To: "c"},
	} {
		store.Upsert(ctx, rec)
	}
	dir := &memFriends{friends: map[string][]Friend{
		"me": {{UserID: "friend", Username: "ada", Picture: "p.png"}},
	}}
	a := &Annotator{Matches: store, Friends: dir}

	its := []itinerary.Itinerary{{Legs: []itinerary.Leg{{TripID: "T1", From: "a", To: "b"}}}}
	got, err := a.Annotate(ctx, "2025-05-06", "me", its)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0].Legs) != 1 {
		t.Fatalf("unexpected shape: %+v", got)
	}
	friends := got[0].Legs[0].Friends
	// The stranger and the requesting user are excluded; only the mutual
	// friend riding the same (date, trip) is attached.
	if len(friends) != 1 {
		t.Fatalf("expected 1 friend, got %+v", friends)
	}
	f := friends[0]
	if f.UserID != "friend" || f.Username != "ada" || f.To != "c" || !f.Confirmed {
		t.Fatalf("unexpected annotation: %+v", f)
	}
}

func TestAnnotateOtherDateNotAttached(t *testing.T) {
	store := newMemIndex()
	ctx := context.Background()
	store.Upsert(ctx, MatchRecord{Date: "2025-05-13", TripID: "T1", UserID: "friend"})
	dir := &memFriends{friends: map[string][]Friend{
		"me": {{UserID: "friend", Username: "ada"}},
	}}
	a := &Annotator{Matches: store, Friends: dir}

	its := []itinerary.Itinerary{{Legs: []itinerary.Leg{{TripID: "T1"}}}}
	got, err := a.Annotate(ctx, "2025-05-06", "me", its)
	if err != nil {
		t.Fatal(err)
	}
	if len(got[0].Legs[0].Friends) != 0 {
		t.Fatalf("friend on a different date must not be attached: %+v", got[0].Legs[0].Friends)
	}
}
