package match

import (
	"context"
	"time"

	"github.com/mityasmirnov/AnyMatch/internal/db"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
)

// GroupMembership resolves the stored member set of a group.
type GroupMembership struct {
	Groups *repository.GroupRepository
}

func (g *GroupMembership) CurrentMembers(ctx context.Context, groupID uint64) ([]ActorID, error) {
	ids, err := g.Groups.MemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	actors := make([]ActorID, len(ids))
	for i, id := range ids {
		actors[i] = UserActor(id)
	}
	return actors, nil
}

// GroupVotes sources `right`-direction swipes on the item, restricted to the
// current member set. Super-likes deliberately do not count here: in the
// group variant `up` only broadcasts a notification.
type GroupVotes struct {
	Swipes *repository.SwipeRepository
}

func (g *GroupVotes) Votes(ctx context.Context, _ uint64, movieID string, members []ActorID) ([]Vote, error) {
	userIDs := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := m.UserID()
		if err != nil {
			continue // non-numeric actors cannot occur in groups
		}
		userIDs = append(userIDs, id)
	}

	swipes, err := g.Swipes.RightSwipes(ctx, movieID, userIDs)
	if err != nil {
		return nil, err
	}

	votes := make([]Vote, len(swipes))
	for i, s := range swipes {
		votes[i] = Vote{Actor: UserActor(s.UserID), Affirmative: true}
	}
	return votes, nil
}

// SessionMembership derives a guest session's membership from its swipes:
// every distinct guest identifier that has recorded at least one swipe, in
// any direction, is a participant.
type SessionMembership struct {
	Guests *repository.GuestRepository
}

func (s *SessionMembership) CurrentMembers(ctx context.Context, sessionID uint64) ([]ActorID, error) {
	swipes, err := s.Guests.SessionSwipes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var members []ActorID
	seen := make(map[string]bool, len(swipes))
	for _, sw := range swipes {
		if !seen[sw.GuestID] {
			seen[sw.GuestID] = true
			members = append(members, ActorID(sw.GuestID))
		}
	}
	return members, nil
}

// SessionVotes sources every guest's decision on the item; `right` and `up`
// are both affirmative, `left` is negative and `down` stays private.
type SessionVotes struct {
	Guests *repository.GuestRepository
}

func (s *SessionVotes) Votes(ctx context.Context, sessionID uint64, movieID string, _ []ActorID) ([]Vote, error) {
	swipes, err := s.Guests.SessionSwipes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var votes []Vote
	for _, sw := range swipes {
		if sw.MovieID != movieID {
			continue
		}
		if sw.Direction == db.DirectionDown {
			continue
		}
		votes = append(votes, Vote{
			Actor:       ActorID(sw.GuestID),
			Affirmative: sw.Direction.Affirmative(),
		})
	}
	return votes, nil
}

// GuestMatch is one recomputed (never persisted) guest-session match.
type GuestMatch struct {
	MovieID     string
	MovieTitle  string
	MoviePoster string
	MovieType   db.ContentType
	MovieGenres []int64
	MovieRating int
	MatchedBy   []string
	MatchedAt   time.Time
}

// ComputeGuestMatches re-scans all swipes in the session, groups them by
// content item and applies the quorum policy per item. O(total swipes in the
// session) per call; acceptable because sessions are short-lived.
func ComputeGuestMatches(swipes []db.GuestSwipe, policy Policy) []GuestMatch {
	byMovie := make(map[string][]db.GuestSwipe)
	var order []string
	for _, sw := range swipes {
		if sw.Direction == db.DirectionDown {
			continue
		}
		if _, ok := byMovie[sw.MovieID]; !ok {
			order = append(order, sw.MovieID)
		}
		byMovie[sw.MovieID] = append(byMovie[sw.MovieID], sw)
	}

	var matches []GuestMatch
	for _, movieID := range order {
		group := byMovie[movieID]
		votes := make([]Vote, len(group))
		latest := group[0].CreatedAt
		for i, sw := range group {
			votes[i] = Vote{Actor: ActorID(sw.GuestID), Affirmative: sw.Direction.Affirmative()}
			if sw.CreatedAt.After(latest) {
				latest = sw.CreatedAt
			}
		}

		res := policy.Evaluate(nil, votes)
		if !res.Matched {
			continue
		}

		matchedBy := make([]string, len(res.MatchedBy))
		for i, a := range res.MatchedBy {
			matchedBy[i] = string(a)
		}

		first := group[0]
		matches = append(matches, GuestMatch{
			MovieID:     first.MovieID,
			MovieTitle:  first.MovieTitle,
			MoviePoster: first.MoviePoster,
			MovieType:   first.MovieType,
			MovieGenres: first.MovieGenres,
			MovieRating: first.MovieRating,
			MatchedBy:   matchedBy,
			MatchedAt:   latest,
		})
	}
	return matches
}
