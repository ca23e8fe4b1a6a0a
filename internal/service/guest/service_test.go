package guest_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/cache"
	"github.com/mityasmirnov/AnyMatch/internal/config"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
	"github.com/mityasmirnov/AnyMatch/internal/logger"
	"github.com/mityasmirnov/AnyMatch/internal/metrics"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
	"github.com/mityasmirnov/AnyMatch/internal/service/guest"
	"github.com/mityasmirnov/AnyMatch/internal/utils/joincode"
)

func setupService(t *testing.T) (*guest.Service, *app.AppContext) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	collector, _ := metrics.NewDefault()
	appCtx := app.New(dbase, cache.NewRedisCache(cfg), collector, logger.Discard())
	return guest.NewService(appCtx), appCtx
}

func guestSwipe(sessionID uint64, guestID, movieID string, dir db.Direction) guest.RecordSwipeRequest {
	return guest.RecordSwipeRequest{
		SessionID:  sessionID,
		GuestID:    guestID,
		MovieID:    movieID,
		MovieTitle: "title-" + movieID,
		MovieType:  db.ContentMovie,
		Direction:  dir,
	}
}

func TestCreateAndJoinSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.True(t, joincode.ValidSessionCode(session.SessionCode))
	assert.WithinDuration(t, time.Now().UTC().Add(guest.SessionTTL), session.ExpiresAt, time.Minute)

	joined, err := svc.JoinSession(ctx, session.SessionCode)
	require.NoError(t, err)
	assert.Equal(t, session.ID, joined.ID)
}

func TestCreateRetriesWhenExpiredRowHoldsCode(t *testing.T) {
	ctx := context.Background()
	_, appCtx := setupService(t)

	// occupy the first code a seed-7 generator emits with a session that has
	// expired but not yet been swept; the unique index still holds the code
	takenCode := joincode.NewSeededGenerator(7).SessionCode()
	guestRepo := repository.NewGuestRepository(appCtx.DB)
	require.NoError(t, guestRepo.CreateSession(ctx, &db.GuestSession{
		SessionCode: takenCode,
		ExpiresAt:   time.Now().UTC().Add(-time.Minute),
	}))

	svc := guest.NewServiceWithGenerator(appCtx, joincode.NewSeededGenerator(7))
	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, takenCode, session.SessionCode)
	assert.True(t, joincode.ValidSessionCode(session.SessionCode))
}

func TestJoinRejectsMalformedAndUnknownCodes(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.JoinSession(ctx, "12345")
	assert.Error(t, err)

	_, err = svc.JoinSession(ctx, "246813")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

// TestExpiredSessionLooksUnknown: once past expiry, joining and swiping
// answer NotFound exactly as if the code never existed, even though the row
// still sits in the store until the sweep runs.
func TestExpiredSessionLooksUnknown(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	expired := &db.GuestSession{SessionCode: "246813", ExpiresAt: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, appCtx.DB.Create(expired).Error)

	_, err := svc.JoinSession(ctx, "246813")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = svc.RecordSwipe(ctx, guestSwipe(expired.ID, "guest-a", "603", db.DirectionRight))
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = svc.Matches(ctx, expired.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestSwipeMintsGuestID(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	res, err := svc.RecordSwipe(ctx, guestSwipe(session.ID, "", "603", db.DirectionRight))
	require.NoError(t, err)
	assert.NotEmpty(t, res.GuestID, "a fresh identifier is minted for first-time guests")

	// the echoed id is reusable
	res2, err := svc.RecordSwipe(ctx, guestSwipe(session.ID, res.GuestID, "604", db.DirectionLeft))
	require.NoError(t, err)
	assert.Equal(t, res.GuestID, res2.GuestID)
}

// TestQuorumMatching exercises the guest rule: unanimity among those who
// voted, with at least two distinct voters.
func TestQuorumMatching(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	// a single enthusiastic guest is not a match
	res, err := svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-a", "603", db.DirectionRight))
	require.NoError(t, err)
	assert.False(t, res.Matched)

	// a second agreeing guest is
	res, err = svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-b", "603", db.DirectionUp))
	require.NoError(t, err)
	assert.True(t, res.Matched)

	matches, err := svc.Matches(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "603", matches[0].MovieID)
	assert.ElementsMatch(t, []string{"guest-a", "guest-b"}, matches[0].MatchedBy)
}

// TestDislikeBlocksGuestMatch: any negative vote on the item kills the
// match, and a later re-swipe revives it because matches are recomputed.
func TestDislikeBlocksGuestMatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-a", "603", db.DirectionRight))
	require.NoError(t, err)
	_, err = svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-b", "603", db.DirectionLeft))
	require.NoError(t, err)
	_, err = svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-c", "603", db.DirectionRight))
	require.NoError(t, err)

	matches, err := svc.Matches(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, matches, "one dislike vetoes the item")

	// guest-b reconsiders; the recomputed view now shows the match
	res, err := svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-b", "603", db.DirectionRight))
	require.NoError(t, err)
	assert.True(t, res.Matched)

	matches, err = svc.Matches(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestParticipantsDerivedFromSwipes(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	count, err := svc.Participants(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-a", "603", db.DirectionRight))
	require.NoError(t, err)
	_, err = svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-a", "604", db.DirectionLeft))
	require.NoError(t, err)
	_, err = svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-b", "603", db.DirectionDown))
	require.NoError(t, err)

	// two distinct guests, regardless of swipe count or direction
	count, err = svc.Participants(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	info, err := svc.GetSession(ctx, session.SessionCode)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Participants)
}

// TestSweepRemovesExpiredSessions: the sweep deletes expired sessions with
// their swipes and reports the count; matches vanish with the session.
func TestSweepRemovesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	live, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.RecordSwipe(ctx, guestSwipe(live.ID, "guest-a", "603", db.DirectionRight))
	require.NoError(t, err)

	expired := &db.GuestSession{SessionCode: "135792", ExpiresAt: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, appCtx.DB.Create(expired).Error)
	require.NoError(t, appCtx.DB.Create(&db.GuestSwipe{
		SessionID: expired.ID, GuestID: "guest-x", MovieID: "603",
		MovieTitle: "t", MovieType: db.ContentMovie, Direction: db.DirectionRight,
	}).Error)

	removed, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	// the live session survived intact
	matches, err := svc.Matches(ctx, live.ID)
	require.NoError(t, err)
	assert.Empty(t, matches)

	var orphans int64
	require.NoError(t, appCtx.DB.Model(&db.GuestSwipe{}).Where("session_id = ?", expired.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestDownSwipeIsPrivateInSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-a", "603", db.DirectionRight))
	require.NoError(t, err)
	// a save-for-later does not join the vote set
	res, err := svc.RecordSwipe(ctx, guestSwipe(session.ID, "guest-b", "603", db.DirectionDown))
	require.NoError(t, err)
	assert.False(t, res.Matched)

	matches, err := svc.Matches(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
