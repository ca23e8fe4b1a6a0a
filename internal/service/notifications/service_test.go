package notifications_test

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
	"github.com/mityasmirnov/AnyMatch/internal/logger"
	"github.com/mityasmirnov/AnyMatch/internal/metrics"
	"github.com/mityasmirnov/AnyMatch/internal/service/notifications"
)

func setupService(t *testing.T) (*notifications.Service, *app.AppContext, *miniredis.Miniredis) {
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
	return notifications.NewService(appCtx), appCtx, mr
}

func TestPushAndUnreadCount(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	svc.Push(ctx, 1, db.NotificationMatch, "New Match!", `Your group matched on "The Matrix"`, "10")
	svc.Push(ctx, 1, db.NotificationSuperLike, "Super Like!", `alice super liked "The Matrix"`, "603")
	svc.Push(ctx, 2, db.NotificationMatch, "New Match!", "msg", "10")

	count, err := svc.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = svc.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// TestUnreadCountFallsBackToDB flushes the cache between writes and the
// read, forcing the DB path, then reads again to hit the freshly warmed
// cache.
func TestUnreadCountFallsBackToDB(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, mr := setupService(t)

	svc.Push(ctx, 1, db.NotificationMatch, "New Match!", "msg", "10")
	mr.FlushAll()

	// first call → DB
	count, err := svc.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// the DB read warmed the cache
	cached, ok, err := appCtx.RedisCache.GetCount(ctx, appCtx.RedisCache.KeyForUnreadCount(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), cached)
}

func TestMarkReadInvalidatesCounter(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)

	svc.Push(ctx, 1, db.NotificationMatch, "New Match!", "msg", "10")
	svc.Push(ctx, 1, db.NotificationMatch, "New Match!", "msg2", "11")

	var first db.Notification
	require.NoError(t, appCtx.DB.Where("user_id = ?", 1).Order("id ASC").First(&first).Error)

	require.NoError(t, svc.MarkRead(ctx, 1, first.ID))

	count, err := svc.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// unknown notification id is an error
	assert.Error(t, svc.MarkRead(ctx, 1, 9999))
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	svc.Push(ctx, 1, db.NotificationMatch, "New Match!", "msg", "10")
	svc.Push(ctx, 1, db.NotificationSuperLike, "Super Like!", "msg", "603")

	require.NoError(t, svc.MarkAllRead(ctx, 1))

	count, err := svc.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	for i := 0; i < 5; i++ {
		svc.Push(ctx, 1, db.NotificationMatch, "New Match!", fmt.Sprintf("msg-%d", i), "10")
	}

	page1, token, err := svc.List(ctx, 1, nil, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotNil(t, token)

	page2, token2, err := svc.List(ctx, 1, token, 3)
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.Nil(t, token2)
}
