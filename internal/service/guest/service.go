package guest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
	"github.com/mityasmirnov/AnyMatch/internal/match"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
	"github.com/mityasmirnov/AnyMatch/internal/utils/joincode"

	"gorm.io/gorm"
)

// SessionTTL is how long a guest session stays joinable after creation.
const SessionTTL = 24 * time.Hour

// minQuorum is the smallest number of distinct guests whose agreement
// counts as a match. A single guest agreeing with themselves is not one.
const minQuorum = 2

// Service manages ephemeral guest sessions. Unlike groups, sessions have no
// member table: membership is derived from swipes, and matches are
// recomputed on every read instead of being persisted.
type Service struct {
	appCtx    *app.AppContext
	guestRepo *repository.GuestRepository
	codes     *joincode.Generator
	policy    match.Policy
	now       func() time.Time
}

// NewService creates the guest service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return NewServiceWithGenerator(appCtx, joincode.NewGenerator())
}

// NewServiceWithGenerator lets tests inject a seeded code generator.
func NewServiceWithGenerator(appCtx *app.AppContext, gen *joincode.Generator) *Service {
	return &Service{
		appCtx:    appCtx,
		guestRepo: repository.NewGuestRepository(appCtx.DB),
		codes:     gen,
		policy:    match.QuorumOfVoters{Min: minQuorum},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession opens a new session with a unique 6-digit code and a fixed
// 24-hour expiry. A code held by an expired row awaiting the sweep still
// counts as taken; session_code is globally unique in the store.
func (s *Service) CreateSession(ctx context.Context) (db.GuestSession, error) {
	now := s.now()
	code, err := joincode.Unique(ctx, s.codes.SessionCode, s.guestRepo.SessionCodeExists)
	if err != nil {
		return db.GuestSession{}, err
	}

	session := &db.GuestSession{
		SessionCode: code,
		ExpiresAt:   now.Add(SessionTTL),
	}
	if err := s.guestRepo.CreateSession(ctx, session); err != nil {
		return db.GuestSession{}, err
	}

	s.appCtx.Logger.Info("guest session created",
		"session", session.ID, "expires_at", session.ExpiresAt)
	return *session, nil
}

// JoinSession resolves a code to a live session. The lookup checks code and
// expiry together, so an expired session answers exactly like an unknown
// code and callers learn nothing from probing.
func (s *Service) JoinSession(ctx context.Context, code string) (db.GuestSession, error) {
	code = joincode.Normalize(code)
	if !joincode.ValidSessionCode(code) {
		return db.GuestSession{}, svcErr.InvalidInput("session code must be exactly 6 digits")
	}

	session, err := s.guestRepo.SessionByCode(ctx, code, s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.GuestSession{}, svcErr.ErrNotFound
	}
	if err != nil {
		return db.GuestSession{}, err
	}
	return session, nil
}

// SessionInfo is a session plus its derived participant count.
type SessionInfo struct {
	db.GuestSession
	Participants int64
}

// GetSession returns the live session behind a code along with how many
// distinct guests have swiped in it.
func (s *Service) GetSession(ctx context.Context, code string) (SessionInfo, error) {
	session, err := s.JoinSession(ctx, code)
	if err != nil {
		return SessionInfo{}, err
	}
	count, err := s.Participants(ctx, session.ID)
	if err != nil {
		return SessionInfo{}, err
	}
	return SessionInfo{GuestSession: session, Participants: count}, nil
}

// RecordSwipeRequest carries one guest decision plus its metadata snapshot.
// GuestID may be empty; a fresh identifier is minted and echoed back so the
// client can keep using it for the rest of the session.
type RecordSwipeRequest struct {
	SessionID   uint64
	GuestID     string
	MovieID     string
	MovieTitle  string
	MoviePoster string
	MovieType   db.ContentType
	MovieGenres []int64
	MovieRating int
	Direction   db.Direction
}

// RecordSwipeResult reports the (possibly minted) guest id and whether the
// swipe completed a match on that item.
type RecordSwipeResult struct {
	GuestID string
	Matched bool
}

// RecordSwipe upserts the guest's decision and re-evaluates the session's
// matches for that item. The session must still be alive; a session that
// expired mid-use answers NotFound, same as one that never existed.
func (s *Service) RecordSwipe(ctx context.Context, req RecordSwipeRequest) (RecordSwipeResult, error) {
	if err := validateSwipe(req); err != nil {
		return RecordSwipeResult{}, err
	}

	if _, err := s.guestRepo.SessionByID(ctx, req.SessionID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordSwipeResult{}, svcErr.ErrNotFound
		}
		return RecordSwipeResult{}, err
	}

	guestID := req.GuestID
	if guestID == "" {
		guestID = uuid.NewString()
	}

	swipe := &db.GuestSwipe{
		SessionID:   req.SessionID,
		GuestID:     guestID,
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		MoviePoster: req.MoviePoster,
		MovieType:   req.MovieType,
		MovieGenres: req.MovieGenres,
		MovieRating: req.MovieRating,
		Direction:   req.Direction,
	}
	if err := s.guestRepo.CreateOrUpdateSwipe(ctx, swipe); err != nil {
		return RecordSwipeResult{}, err
	}
	s.appCtx.Metrics.RecordSwipe("guest", string(req.Direction))

	// The swipe may have changed the participant set; drop the cached count.
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForParticipantCount(req.SessionID))

	res := RecordSwipeResult{GuestID: guestID}
	if !req.Direction.Affirmative() {
		return res, nil
	}

	matched, err := s.itemMatched(ctx, req.SessionID, req.MovieID)
	if err != nil {
		return RecordSwipeResult{}, err
	}
	if matched {
		s.appCtx.Metrics.RecordMatch("guest")
		s.appCtx.Logger.Info("guest match detected",
			"session", req.SessionID, "movie", req.MovieID)
	}
	res.Matched = matched
	return res, nil
}

// itemMatched recomputes the match state of one item from the full swipe set.
func (s *Service) itemMatched(ctx context.Context, sessionID uint64, movieID string) (bool, error) {
	swipes, err := s.guestRepo.SessionSwipes(ctx, sessionID)
	if err != nil {
		return false, err
	}
	for _, m := range match.ComputeGuestMatches(swipes, s.policy) {
		if m.MovieID == movieID {
			return true, nil
		}
	}
	return false, nil
}

// Matches recomputes every current match in the session. Nothing is
// persisted: when the session expires the matches disappear with it.
func (s *Service) Matches(ctx context.Context, sessionID uint64) ([]match.GuestMatch, error) {
	if _, err := s.guestRepo.SessionByID(ctx, sessionID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrNotFound
		}
		return nil, err
	}
	swipes, err := s.guestRepo.SessionSwipes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return match.ComputeGuestMatches(swipes, s.policy), nil
}

// Participants returns the number of distinct guests that have swiped in the
// session, cache-first with a DB fallback.
func (s *Service) Participants(ctx context.Context, sessionID uint64) (int64, error) {
	key := s.appCtx.RedisCache.KeyForParticipantCount(sessionID)
	if count, ok, err := s.appCtx.RedisCache.GetCount(ctx, key); err == nil && ok {
		return count, nil
	}

	swipes, err := s.guestRepo.SessionSwipes(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(swipes))
	for _, sw := range swipes {
		seen[sw.GuestID] = true
	}
	count := int64(len(seen))

	if err := s.appCtx.RedisCache.SetCount(ctx, key, count); err != nil {
		s.appCtx.Logger.Warn("participant count cache write failed",
			"session", sessionID, "err", err)
	}
	return count, nil
}

// Sweep deletes every expired session and its swipes. Run periodically by
// an external job; the service itself never schedules it.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	removed, err := s.guestRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.appCtx.Metrics.RecordSessionsSwept(removed)
		s.appCtx.Logger.Info("expired guest sessions removed", "count", removed)
	}
	return removed, nil
}

func validateSwipe(req RecordSwipeRequest) error {
	if req.SessionID == 0 {
		return svcErr.InvalidInput("session_id is required")
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
