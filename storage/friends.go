package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/railmatch/railmatch/matchindex"
)

// PGFriendDirectory reads friendships from Postgres. It implements
// matchindex.FriendDirectory.
type PGFriendDirectory struct {
	DB *sql.DB
}

// MutualFriends lists users befriended in both directions with neither side
// ghosting the other.
func (s *PGFriendDirectory) MutualFriends(ctx context.Context, userID string) ([]matchindex.Friend, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT u.user_id, u.username, u.picture
		 FROM friendships f
		 JOIN friendships r ON r.user_id = f.friend_id AND r.friend_id = f.user_id
		 JOIN users u ON u.user_id = f.friend_id
		 WHERE f.user_id = $1 AND NOT f.ghosted AND NOT r.ghosted
		 ORDER BY u.user_id`,
		userID)
	if err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("query friends of %s", userID), Err: err}
	}
	defer rows.Close()
	var out []matchindex.Friend
	for rows.Next() {
		var f matchindex.Friend
		if err := rows.Scan(&f.UserID, &f.Username, &f.Picture); err != nil {
			return nil, &PersistenceError{Op: "scan friend", Err: err}
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate friends", Err: err}
	}
	return out, nil
}
