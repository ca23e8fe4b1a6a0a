package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mityasmirnov/AnyMatch/internal/db"
)

//
// Policy tests
//

func TestExactMembership_AllApproved(t *testing.T) {
	members := []ActorID{"1", "2", "3"}
	votes := []Vote{
		{Actor: "1", Affirmative: true},
		{Actor: "2", Affirmative: true},
		{Actor: "3", Affirmative: true},
	}

	res := ExactMembership{}.Evaluate(members, votes)
	require.True(t, res.Matched)
	assert.Equal(t, members, res.MatchedBy)
}

func TestExactMembership_OneMemberMissing(t *testing.T) {
	members := []ActorID{"1", "2", "3"}
	votes := []Vote{
		{Actor: "1", Affirmative: true},
		{Actor: "2", Affirmative: true},
	}

	res := ExactMembership{}.Evaluate(members, votes)
	assert.False(t, res.Matched)
}

func TestExactMembership_StrangerVoteDoesNotCount(t *testing.T) {
	// a vote from someone outside the member set cannot stand in for a member
	members := []ActorID{"1", "2"}
	votes := []Vote{
		{Actor: "1", Affirmative: true},
		{Actor: "99", Affirmative: true},
	}

	res := ExactMembership{}.Evaluate(members, votes)
	assert.False(t, res.Matched)
}

func TestExactMembership_EmptyMembership(t *testing.T) {
	res := ExactMembership{}.Evaluate(nil, nil)
	assert.False(t, res.Matched)
}

func TestQuorumOfVoters_TwoAffirmative(t *testing.T) {
	votes := []Vote{
		{Actor: "guest-a", Affirmative: true},
		{Actor: "guest-b", Affirmative: true},
	}

	res := QuorumOfVoters{Min: 2}.Evaluate(nil, votes)
	require.True(t, res.Matched)
	assert.Equal(t, []ActorID{"guest-a", "guest-b"}, res.MatchedBy)
}

func TestQuorumOfVoters_SingleVoterIsNoMatch(t *testing.T) {
	votes := []Vote{{Actor: "guest-a", Affirmative: true}}

	res := QuorumOfVoters{Min: 2}.Evaluate(nil, votes)
	assert.False(t, res.Matched)
}

func TestQuorumOfVoters_AnyNegativeBlocks(t *testing.T) {
	votes := []Vote{
		{Actor: "guest-a", Affirmative: true},
		{Actor: "guest-b", Affirmative: true},
		{Actor: "guest-c", Affirmative: false},
	}

	res := QuorumOfVoters{Min: 2}.Evaluate(nil, votes)
	assert.False(t, res.Matched)
}

func TestQuorumOfVoters_NonVotersNotRequired(t *testing.T) {
	// guest-c swiped elsewhere in the session but never on this item;
	// their silence does not block the other two
	members := []ActorID{"guest-a", "guest-b", "guest-c"}
	votes := []Vote{
		{Actor: "guest-a", Affirmative: true},
		{Actor: "guest-b", Affirmative: true},
	}

	res := QuorumOfVoters{Min: 2}.Evaluate(members, votes)
	assert.True(t, res.Matched)
}

//
// Detector tests with stub resolvers
//

type stubMembers struct {
	members []ActorID
	err     error
}

func (s stubMembers) CurrentMembers(context.Context, uint64) ([]ActorID, error) {
	return s.members, s.err
}

type stubVotes struct {
	votes []Vote
	err   error
	calls int
}

func (s *stubVotes) Votes(context.Context, uint64, string, []ActorID) ([]Vote, error) {
	s.calls++
	return s.votes, s.err
}

func TestDetector_EmptyMembershipShortCircuits(t *testing.T) {
	votes := &stubVotes{}
	d := NewDetector(stubMembers{}, votes, ExactMembership{})

	res, err := d.Evaluate(context.Background(), 1, "603")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Zero(t, votes.calls, "votes must not be fetched for an empty context")
}

func TestDetector_MembershipErrorSurfaced(t *testing.T) {
	boom := errors.New("store down")
	d := NewDetector(stubMembers{err: boom}, &stubVotes{}, ExactMembership{})

	_, err := d.Evaluate(context.Background(), 1, "603")
	assert.ErrorIs(t, err, boom)
}

func TestDetector_VoteErrorSurfaced(t *testing.T) {
	boom := errors.New("store down")
	d := NewDetector(
		stubMembers{members: []ActorID{"1"}},
		&stubVotes{err: boom},
		ExactMembership{},
	)

	_, err := d.Evaluate(context.Background(), 1, "603")
	assert.ErrorIs(t, err, boom)
}

func TestDetector_MatchFlow(t *testing.T) {
	d := NewDetector(
		stubMembers{members: []ActorID{"1", "2"}},
		&stubVotes{votes: []Vote{
			{Actor: "1", Affirmative: true},
			{Actor: "2", Affirmative: true},
		}},
		ExactMembership{},
	)

	res, err := d.Evaluate(context.Background(), 1, "603")
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, []ActorID{"1", "2"}, res.MatchedBy)
}

//
// Recomputed guest matches
//

func guestSwipe(guest, movie string, dir db.Direction, at time.Time) db.GuestSwipe {
	return db.GuestSwipe{
		SessionID:  1,
		GuestID:    guest,
		MovieID:    movie,
		MovieTitle: "title-" + movie,
		MovieType:  db.ContentMovie,
		Direction:  dir,
		CreatedAt:  at,
	}
}

func TestComputeGuestMatches(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	swipes := []db.GuestSwipe{
		// "603": both guests like it → match
		guestSwipe("a", "603", db.DirectionRight, base),
		guestSwipe("b", "603", db.DirectionUp, base.Add(time.Minute)),
		// "604": one like, one dislike → no match
		guestSwipe("a", "604", db.DirectionRight, base),
		guestSwipe("b", "604", db.DirectionLeft, base),
		// "605": only one voter → below quorum
		guestSwipe("a", "605", db.DirectionRight, base),
	}

	matches := ComputeGuestMatches(swipes, QuorumOfVoters{Min: 2})
	require.Len(t, matches, 1)
	assert.Equal(t, "603", matches[0].MovieID)
	assert.Equal(t, []string{"a", "b"}, matches[0].MatchedBy)
	assert.Equal(t, base.Add(time.Minute), matches[0].MatchedAt)
}

func TestComputeGuestMatches_DownSwipesStayPrivate(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	swipes := []db.GuestSwipe{
		guestSwipe("a", "603", db.DirectionRight, base),
		guestSwipe("b", "603", db.DirectionRight, base),
		// a save-for-later on the same item neither blocks nor joins the match
		guestSwipe("c", "603", db.DirectionDown, base),
	}

	matches := ComputeGuestMatches(swipes, QuorumOfVoters{Min: 2})
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"a", "b"}, matches[0].MatchedBy)
}

func TestActorIDRoundTrip(t *testing.T) {
	id, err := UserActor(42).UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	_, err = ActorID("guest-uuid").UserID()
	assert.Error(t, err)
}
