package matchindex

import (
	"context"
	"fmt"

	"github.com/railmatch/railmatch/itinerary"
)

// Annotator decorates itineraries with the friends riding each leg.
type Annotator struct {
	Matches MatchStore
	Friends FriendDirectory
}

// Annotate attaches, per leg, the requesting user's mutual non-ghosted
// friends that hold a MatchRecord on the same (date, trip).
func (a *Annotator) Annotate(ctx context.Context, date, userID string, its []itinerary.Itinerary) ([]AnnotatedItinerary, error) {
	friends, err := a.Friends.MutualFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("annotate: friends of %s: %w", userID, err)
	}
	byID := make(map[string]Friend, len(friends))
	for _, f := range friends {
		byID[f.UserID] = f
	}

	out := make([]AnnotatedItinerary, len(its))
	for i, it := range its {
		out[i].Legs = make([]AnnotatedLeg, len(it.Legs))
		for j, leg := range it.Legs {
			out[i].Legs[j] = AnnotatedLeg{Leg: leg}
			recs, err := a.Matches.UsersOn(ctx, date, leg.TripID)
			if err != nil {
				return nil, fmt.Errorf("annotate: matches on (%s, %s): %w", date, leg.TripID, err)
			}
			for _, rec := range recs {
				friend, ok := byID[rec.UserID]
				if !ok || rec.UserID == userID {
					continue
				}
				out[i].Legs[j].Friends = append(out[i].Legs[j].Friends, LegFriend{
					Friend:    friend,
					From:      rec.From,
					To:        rec.To,
					Confirmed: rec.Confirmed,
				})
			}
		}
	}
	return out, nil
}
