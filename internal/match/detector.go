// Package match implements unanimity detection for collaborative contexts.
//
// The core loop is written once and parameterized two ways, per context kind:
//   - who counts toward unanimity (MembershipResolver: stored group membership
//     vs. membership derived from guest swipes), and
//   - what unanimity means (Policy: every current member must have voted yes,
//     vs. unanimous among those who voted with a quorum of two).
package match

import (
	"context"
	"strconv"
)

// ActorID identifies a swiping actor within a collaborative context: a
// registered user id in decimal form, or an opaque guest identifier.
type ActorID string

// UserActor converts a registered user id to an ActorID.
func UserActor(userID uint64) ActorID {
	return ActorID(strconv.FormatUint(userID, 10))
}

// UserID converts a registered-user ActorID back to its numeric id.
func (a ActorID) UserID() (uint64, error) {
	return strconv.ParseUint(string(a), 10, 64)
}

// Vote is one recorded decision on a content item. The ledger keeps one row
// per (actor, item), so each actor appears at most once.
type Vote struct {
	Actor       ActorID
	Affirmative bool
}

// Result of one unanimity evaluation.
type Result struct {
	Matched bool
	// MatchedBy is the actor set whose approval caused the match. It is a
	// point-in-time fact: callers persist it and never recompute it.
	MatchedBy []ActorID
}

// Policy decides unanimity given the current membership and the votes
// recorded for one content item.
type Policy interface {
	Evaluate(members []ActorID, votes []Vote) Result
}

// MembershipResolver returns the current set of actors who count toward
// unanimity in the given context. An empty set means "no match possible",
// never an error.
type MembershipResolver interface {
	CurrentMembers(ctx context.Context, contextID uint64) ([]ActorID, error)
}

// VoteSource returns the recorded votes for one content item within a
// context. Implementations may restrict to the given member set (groups do,
// guest sessions count all voters).
type VoteSource interface {
	Votes(ctx context.Context, contextID uint64, movieID string, members []ActorID) ([]Vote, error)
}

// Detector runs the unanimity check for one (context, item) pair. It performs
// no locking; exactly-once match materialization is the caller's concern and
// rests on the store's uniqueness constraint.
type Detector struct {
	members MembershipResolver
	votes   VoteSource
	policy  Policy
}

func NewDetector(members MembershipResolver, votes VoteSource, policy Policy) *Detector {
	return &Detector{members: members, votes: votes, policy: policy}
}

// Evaluate re-checks unanimity for the pair. A failed membership or vote
// fetch is surfaced, not swallowed; only empty membership maps to a clean
// "no match".
func (d *Detector) Evaluate(ctx context.Context, contextID uint64, movieID string) (Result, error) {
	members, err := d.members.CurrentMembers(ctx, contextID)
	if err != nil {
		return Result{}, err
	}
	if len(members) == 0 {
		return Result{}, nil
	}

	votes, err := d.votes.Votes(ctx, contextID, movieID, members)
	if err != nil {
		return Result{}, err
	}

	return d.policy.Evaluate(members, votes), nil
}

// ExactMembership is the group rule: a content item matches iff every current
// member has an affirmative vote on it. Members who joined after others
// swiped still count against unanimity; the set is always the current one.
type ExactMembership struct{}

func (ExactMembership) Evaluate(members []ActorID, votes []Vote) Result {
	if len(members) == 0 {
		return Result{}
	}

	approved := make(map[ActorID]bool, len(votes))
	for _, v := range votes {
		if v.Affirmative {
			approved[v.Actor] = true
		}
	}

	for _, m := range members {
		if !approved[m] {
			return Result{}
		}
	}

	// all current members approved; the match belongs to the whole set
	return Result{Matched: true, MatchedBy: members}
}

// QuorumOfVoters is the guest-session rule: a content item matches iff at
// least Min distinct actors voted on it and every one of those votes is
// affirmative. Actors who never voted on the item are not required to.
type QuorumOfVoters struct {
	Min int
}

func (q QuorumOfVoters) Evaluate(_ []ActorID, votes []Vote) Result {
	if len(votes) == 0 {
		return Result{}
	}

	voters := make([]ActorID, 0, len(votes))
	seen := make(map[ActorID]bool, len(votes))
	for _, v := range votes {
		if !v.Affirmative {
			return Result{}
		}
		if !seen[v.Actor] {
			seen[v.Actor] = true
			voters = append(voters, v.Actor)
		}
	}

	if len(voters) < q.Min {
		return Result{}
	}

	return Result{Matched: true, MatchedBy: voters}
}
