package preferences_test

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
	"github.com/mityasmirnov/AnyMatch/internal/service/preferences"
)

func setupService(t *testing.T) *preferences.Service {
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
	return preferences.NewService(appCtx)
}

func TestGetDefaultsWhenUnset(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	pref, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, db.ContentBoth, pref.PreferredContentType)
	assert.Zero(t, pref.MinRating)
	assert.Empty(t, pref.FavoriteGenres)
}

func TestUpdateThenGet(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Update(ctx, preferences.UpdateRequest{
		UserID:               1,
		FavoriteGenres:       []int64{28, 878},
		DislikedGenres:       []int64{27},
		PreferredContentType: db.ContentMovie,
		MinRating:            60,
	})
	require.NoError(t, err)

	pref, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{28, 878}, pref.FavoriteGenres)
	assert.Equal(t, []int64{27}, pref.DislikedGenres)
	assert.Equal(t, db.ContentMovie, pref.PreferredContentType)
	assert.Equal(t, 60, pref.MinRating)
}

func TestUpdateOverwritesExistingRow(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Update(ctx, preferences.UpdateRequest{UserID: 1, MinRating: 60, PreferredContentType: db.ContentMovie})
	require.NoError(t, err)
	_, err = svc.Update(ctx, preferences.UpdateRequest{UserID: 1, MinRating: 30, PreferredContentType: db.ContentTV})
	require.NoError(t, err)

	pref, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, pref.MinRating)
	assert.Equal(t, db.ContentTV, pref.PreferredContentType)
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Update(ctx, preferences.UpdateRequest{UserID: 0})
	assert.Error(t, err)

	_, err = svc.Update(ctx, preferences.UpdateRequest{UserID: 1, PreferredContentType: "podcast"})
	assert.Error(t, err)

	_, err = svc.Update(ctx, preferences.UpdateRequest{UserID: 1, MinRating: 150})
	assert.Error(t, err)
}
