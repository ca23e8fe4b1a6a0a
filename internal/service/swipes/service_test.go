package swipes_test

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
	"github.com/mityasmirnov/AnyMatch/internal/service/notifications"
	"github.com/mityasmirnov/AnyMatch/internal/service/swipes"
)

//
// Test helpers
//

type fixture struct {
	svc    *swipes.Service
	appCtx *app.AppContext
	dbase  *gorm.DB
}

// setupService spins up an in-memory SQLite DB, applies migrations, starts a
// miniredis, and wires everything into a swipes Service instance.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) fixture {
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
	svc := swipes.NewService(appCtx, notifications.NewService(appCtx))
	return fixture{svc: svc, appCtx: appCtx, dbase: dbase}
}

// seedGroup creates a group with the given member ids and returns its id.
func seedGroup(t *testing.T, dbase *gorm.DB, code string, memberIDs ...uint64) uint64 {
	t.Helper()

	group := &db.Group{Name: "Movie Night", JoinCode: code, CreatedBy: memberIDs[0], FilterType: db.ContentBoth}
	require.NoError(t, dbase.Create(group).Error)
	for i, id := range memberIDs {
		role := db.RoleMember
		if i == 0 {
			role = db.RoleOwner
		}
		require.NoError(t, dbase.Create(&db.GroupMember{GroupID: group.ID, UserID: id, Role: role}).Error)
	}
	return group.ID
}

func rightSwipe(userID, groupID uint64, movieID string) swipes.RecordSwipeRequest {
	return swipes.RecordSwipeRequest{
		UserID:     userID,
		MovieID:    movieID,
		MovieTitle: "title-" + movieID,
		MovieType:  db.ContentMovie,
		Direction:  db.DirectionRight,
		GroupID:    groupID,
	}
}

//
// Tests
//

// TestGroupUnanimity walks the two-member scenario end to end: the first
// right swipe does not match, the second one does, and the resulting match
// carries both member ids.
func TestGroupUnanimity(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	groupID := seedGroup(t, f.dbase, "AB23CD", 42, 7)

	res, err := f.svc.RecordSwipe(ctx, rightSwipe(42, groupID, "603"))
	require.NoError(t, err)
	assert.False(t, res.Matched, "one of two members is not unanimity")

	res, err = f.svc.RecordSwipe(ctx, rightSwipe(7, groupID, "603"))
	require.NoError(t, err)
	assert.True(t, res.Matched)

	m, err := repository.NewMatchRepository(f.dbase).MatchByPair(ctx, groupID, "603")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{42, 7}, m.MatchedBy)

	// the swiper's fellow member got a notification, the swiper did not
	unread, err := repository.NewNotificationRepository(f.dbase).CountUnread(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	unread, err = repository.NewNotificationRepository(f.dbase).CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

// TestNewMemberInvalidatesPendingMatch verifies that unanimity is measured
// against the membership at evaluation time: a member who joins after the
// others swiped blocks the match until they swipe too.
func TestNewMemberInvalidatesPendingMatch(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	groupID := seedGroup(t, f.dbase, "AB23CD", 1, 2)

	_, err := f.svc.RecordSwipe(ctx, rightSwipe(1, groupID, "603"))
	require.NoError(t, err)

	// third member joins before user 2's deciding swipe
	require.NoError(t, f.dbase.Create(&db.GroupMember{GroupID: groupID, UserID: 3}).Error)

	res, err := f.svc.RecordSwipe(ctx, rightSwipe(2, groupID, "603"))
	require.NoError(t, err)
	assert.False(t, res.Matched)

	// once the newcomer agrees, the match completes
	res, err = f.svc.RecordSwipe(ctx, rightSwipe(3, groupID, "603"))
	require.NoError(t, err)
	assert.True(t, res.Matched)
}

// TestMatchIsExactlyOnce re-runs the deciding swipe and checks that the
// match row is not duplicated and MatchedAt refreshes instead.
func TestMatchIsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	groupID := seedGroup(t, f.dbase, "AB23CD", 1, 2)

	_, err := f.svc.RecordSwipe(ctx, rightSwipe(1, groupID, "603"))
	require.NoError(t, err)
	_, err = f.svc.RecordSwipe(ctx, rightSwipe(2, groupID, "603"))
	require.NoError(t, err)

	// user 2 swipes the same title again
	_, err = f.svc.RecordSwipe(ctx, rightSwipe(2, groupID, "603"))
	require.NoError(t, err)

	count, err := repository.NewMatchRepository(f.dbase).CountForPair(ctx, groupID, "603")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// TestReswipeOverwrites checks last-write-wins: a left swipe over a previous
// right removes the approval, so the group can no longer match on the title.
func TestReswipeOverwrites(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	groupID := seedGroup(t, f.dbase, "AB23CD", 1, 2)

	_, err := f.svc.RecordSwipe(ctx, rightSwipe(1, groupID, "603"))
	require.NoError(t, err)

	// user 1 changes their mind
	req := rightSwipe(1, groupID, "603")
	req.Direction = db.DirectionLeft
	_, err = f.svc.RecordSwipe(ctx, req)
	require.NoError(t, err)

	res, err := f.svc.RecordSwipe(ctx, rightSwipe(2, groupID, "603"))
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

// TestSoloSwipeNeverMatches confirms swipes without a group context are
// recorded but never evaluated.
func TestSoloSwipeNeverMatches(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	res, err := f.svc.RecordSwipe(ctx, rightSwipe(1, 0, "603"))
	require.NoError(t, err)
	assert.False(t, res.Matched)

	history, _, err := f.svc.History(ctx, 1, nil, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

// TestSuperLikeBroadcastsWithoutMatching verifies `up` notifies the other
// members but never counts toward group unanimity.
func TestSuperLikeBroadcastsWithoutMatching(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	groupID := seedGroup(t, f.dbase, "AB23CD", 1, 2)

	_, err := f.svc.RecordSwipe(ctx, rightSwipe(2, groupID, "603"))
	require.NoError(t, err)

	req := rightSwipe(1, groupID, "603")
	req.Direction = db.DirectionUp
	res, err := f.svc.RecordSwipe(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.Matched, "a super like is not an approval in group matching")

	unread, err := repository.NewNotificationRepository(f.dbase).CountUnread(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

// TestDownSwipeSavesPrivately verifies `down` lands in the saved list and
// stays invisible to the rest of the group.
func TestDownSwipeSavesPrivately(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	groupID := seedGroup(t, f.dbase, "AB23CD", 1, 2)

	req := rightSwipe(1, groupID, "603")
	req.Direction = db.DirectionDown
	_, err := f.svc.RecordSwipe(ctx, req)
	require.NoError(t, err)

	saved, err := f.svc.SavedMovies(ctx, 1)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "603", saved[0].MovieID)

	unread, err := repository.NewNotificationRepository(f.dbase).CountUnread(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, unread, "saving for later must not notify anyone")
}

// TestUndo removes the most recent swipe and errors when nothing is left.
func TestUndo(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.svc.RecordSwipe(ctx, rightSwipe(1, 0, "603"))
	require.NoError(t, err)

	undone, err := f.svc.Undo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "603", undone.MovieID)

	history, _, err := f.svc.History(ctx, 1, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	// nothing left to undo is a loud failure, not a no-op
	_, err = f.svc.Undo(ctx, 1)
	assert.ErrorIs(t, err, svcErr.ErrNoSwipes)
}

// TestRecordSwipeValidation rejects malformed input before touching the store.
func TestRecordSwipeValidation(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	cases := []struct {
		name string
		mut  func(*swipes.RecordSwipeRequest)
	}{
		{"missing user", func(r *swipes.RecordSwipeRequest) { r.UserID = 0 }},
		{"missing movie", func(r *swipes.RecordSwipeRequest) { r.MovieID = "" }},
		{"missing title", func(r *swipes.RecordSwipeRequest) { r.MovieTitle = "" }},
		{"bad direction", func(r *swipes.RecordSwipeRequest) { r.Direction = "sideways" }},
		{"bad type", func(r *swipes.RecordSwipeRequest) { r.MovieType = "podcast" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := rightSwipe(1, 0, "603")
			tc.mut(&req)
			_, err := f.svc.RecordSwipe(ctx, req)
			assert.Error(t, err)
		})
	}
}

// TestEmptyGroupNeverMatches: a swipe referencing a group with no members
// records fine and reports no match.
func TestEmptyGroupNeverMatches(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	group := &db.Group{Name: "empty", JoinCode: "ZZZZZZ", CreatedBy: 1, FilterType: db.ContentBoth}
	require.NoError(t, f.dbase.Create(group).Error)

	res, err := f.svc.RecordSwipe(ctx, rightSwipe(1, group.ID, "603"))
	require.NoError(t, err)
	assert.False(t, res.Matched)
}
