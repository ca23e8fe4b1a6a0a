package swipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
	"github.com/mityasmirnov/AnyMatch/internal/match"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
	"github.com/mityasmirnov/AnyMatch/internal/service/notifications"

	"gorm.io/gorm"
)

// Service records swipes and drives group match detection off them.
// Each call is one self-contained read-then-conditionally-write sequence;
// concurrency safety comes from the storage-level upserts, not from locks.
type Service struct {
	appCtx    *app.AppContext
	swipeRepo *repository.SwipeRepository
	groupRepo *repository.GroupRepository
	matchRepo *repository.MatchRepository
	savedRepo *repository.SavedMovieRepository
	userRepo  *repository.UserRepository
	notifier  *notifications.Service
	detector  *match.Detector
}

// NewService creates the swipes service with dependencies from AppContext.
// The detector is wired with the group variant: stored membership and the
// exact-membership unanimity rule.
func NewService(appCtx *app.AppContext, notifier *notifications.Service) *Service {
	swipeRepo := repository.NewSwipeRepository(appCtx.DB)
	groupRepo := repository.NewGroupRepository(appCtx.DB)
	return &Service{
		appCtx:    appCtx,
		swipeRepo: swipeRepo,
		groupRepo: groupRepo,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		savedRepo: repository.NewSavedMovieRepository(appCtx.DB),
		userRepo:  repository.NewUserRepository(appCtx.DB),
		notifier:  notifier,
		detector: match.NewDetector(
			&match.GroupMembership{Groups: groupRepo},
			&match.GroupVotes{Swipes: swipeRepo},
			match.ExactMembership{},
		),
	}
}

// RecordSwipeRequest carries one swipe plus the metadata snapshot captured
// at swipe time.
type RecordSwipeRequest struct {
	UserID      uint64
	MovieID     string
	MovieTitle  string
	MoviePoster string
	MovieType   db.ContentType
	MovieGenres []int64
	MovieRating int
	Direction   db.Direction
	// GroupID, when set, puts the swipe in a collaborative context and makes
	// it eligible for match detection.
	GroupID uint64
}

// RecordSwipeResult reports whether the swipe completed a match.
type RecordSwipeResult struct {
	Matched bool
}

// RecordSwipe upserts the swipe and, in a group context, re-evaluates
// unanimity for the (group, movie) pair.
//
// Behavior:
//   - The swipe row is durable regardless of what happens afterwards.
//   - direction `right` + group → unanimity check; on the first detection the
//     Match is upserted (exactly-once via the unique pair index) and every
//     other member is notified.
//   - direction `up` + group → no unanimity check, the other members get a
//     super-like notification immediately.
//   - direction `down` → additionally materialized as a private SavedMovie.
func (s *Service) RecordSwipe(ctx context.Context, req RecordSwipeRequest) (RecordSwipeResult, error) {
	if err := validateSwipe(req); err != nil {
		return RecordSwipeResult{}, err
	}

	swipe := &db.Swipe{
		UserID:      req.UserID,
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		MoviePoster: req.MoviePoster,
		MovieType:   req.MovieType,
		MovieGenres: req.MovieGenres,
		MovieRating: req.MovieRating,
		Direction:   req.Direction,
	}
	if err := s.swipeRepo.CreateOrUpdateSwipe(ctx, swipe); err != nil {
		return RecordSwipeResult{}, err
	}

	contextKind := "solo"
	if req.GroupID != 0 {
		contextKind = "group"
	}
	s.appCtx.Metrics.RecordSwipe(contextKind, string(req.Direction))

	if req.Direction == db.DirectionDown {
		saved := &db.SavedMovie{
			UserID:      req.UserID,
			MovieID:     req.MovieID,
			MovieTitle:  req.MovieTitle,
			MoviePoster: req.MoviePoster,
			MovieType:   req.MovieType,
			MovieGenres: req.MovieGenres,
			MovieRating: req.MovieRating,
		}
		if err := s.savedRepo.Save(ctx, saved); err != nil {
			return RecordSwipeResult{}, err
		}
	}

	if req.GroupID == 0 {
		return RecordSwipeResult{}, nil
	}

	switch req.Direction {
	case db.DirectionRight:
		return s.checkForMatch(ctx, req)
	case db.DirectionUp:
		s.broadcastSuperLike(ctx, req)
	}

	return RecordSwipeResult{}, nil
}

// checkForMatch re-evaluates unanimity after an affirmative swipe and
// materializes the Match exactly once.
func (s *Service) checkForMatch(ctx context.Context, req RecordSwipeRequest) (RecordSwipeResult, error) {
	res, err := s.detector.Evaluate(ctx, req.GroupID, req.MovieID)
	if err != nil {
		// a failed membership fetch is surfaced, never treated as "no match"
		return RecordSwipeResult{}, err
	}
	if !res.Matched {
		return RecordSwipeResult{}, nil
	}

	memberIDs := make([]uint64, 0, len(res.MatchedBy))
	for _, actor := range res.MatchedBy {
		id, err := actor.UserID()
		if err != nil {
			continue
		}
		memberIDs = append(memberIDs, id)
	}

	m := &db.Match{
		GroupID:     req.GroupID,
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		MoviePoster: req.MoviePoster,
		MovieType:   req.MovieType,
		MovieGenres: req.MovieGenres,
		MovieRating: req.MovieRating,
		MatchedBy:   memberIDs,
	}
	if err := s.matchRepo.UpsertMatch(ctx, m); err != nil {
		return RecordSwipeResult{}, err
	}
	s.appCtx.Metrics.RecordMatch("group")

	groupRef := notifications.FormatUserID(req.GroupID)
	for _, memberID := range memberIDs {
		if memberID == req.UserID {
			continue
		}
		s.notifier.Push(ctx, memberID,
			db.NotificationMatch,
			"New Match!",
			fmt.Sprintf("Your group matched on %q", req.MovieTitle),
			groupRef,
		)
	}

	s.appCtx.Logger.Info("group match detected",
		"group", req.GroupID, "movie", req.MovieID, "members", len(memberIDs))

	return RecordSwipeResult{Matched: true}, nil
}

// broadcastSuperLike notifies every other member. Super-likes never create a
// Match in the group variant.
func (s *Service) broadcastSuperLike(ctx context.Context, req RecordSwipeRequest) {
	memberIDs, err := s.groupRepo.MemberIDs(ctx, req.GroupID)
	if err != nil {
		s.appCtx.Logger.Error("super-like broadcast failed", "group", req.GroupID, "err", err)
		return
	}

	name := s.userRepo.UsernameByID(ctx, req.UserID)
	for _, memberID := range memberIDs {
		if memberID == req.UserID {
			continue
		}
		s.notifier.Push(ctx, memberID,
			db.NotificationSuperLike,
			"Super Like!",
			fmt.Sprintf("%s super liked %q", name, req.MovieTitle),
			req.MovieID,
		)
	}
}

// Undo removes the actor's most recent swipe entirely and returns it.
// No swipes on record is a user-visible error, not a silent no-op.
func (s *Service) Undo(ctx context.Context, userID uint64) (db.Swipe, error) {
	if userID == 0 {
		return db.Swipe{}, svcErr.InvalidInput("user_id is required")
	}

	last, err := s.swipeRepo.Latest(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Swipe{}, svcErr.ErrNoSwipes
	}
	if err != nil {
		return db.Swipe{}, err
	}

	if err := s.swipeRepo.Delete(ctx, userID, last.MovieID); err != nil {
		return db.Swipe{}, err
	}
	return last, nil
}

// History returns the actor's swipes, most recent first.
func (s *Service) History(ctx context.Context, userID uint64, paginationToken *string, limit int) ([]db.Swipe, *string, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.swipeRepo.History(ctx, userID, paginationToken, limit)
}

// SavedMovies lists the actor's private save-for-later entries.
func (s *Service) SavedMovies(ctx context.Context, userID uint64) ([]db.SavedMovie, error) {
	return s.savedRepo.ListForUser(ctx, userID)
}

// RemoveSaved deletes one save-for-later entry.
func (s *Service) RemoveSaved(ctx context.Context, userID uint64, movieID string) error {
	if movieID == "" {
		return svcErr.InvalidInput("movie_id is required")
	}
	return s.savedRepo.Remove(ctx, userID, movieID)
}

func validateSwipe(req RecordSwipeRequest) error {
	if req.UserID == 0 {
		return svcErr.InvalidInput("user_id is required")
	}
	if req.MovieID == "" {
		return svcErr.InvalidInput("movie_id is required")
	}
	if req.MovieTitle == "" {
		return svcErr.InvalidInput("movie_title is required")
	}
	if !req.Direction.Valid() {
		return svcErr.InvalidInput("direction must be one of left, right, up, down")
	}
	if req.MovieType != db.ContentMovie && req.MovieType != db.ContentTV {
		return svcErr.InvalidInput("movie_type must be movie or tv")
	}
	return nil
}
