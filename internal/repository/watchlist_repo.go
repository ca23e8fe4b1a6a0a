package repository

import (
	"context"

	"github.com/mityasmirnov/AnyMatch/internal/db"

	"gorm.io/gorm"
)

// WatchlistRepository provides data access for explicit watchlist entries.
type WatchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new repository bound to the given DB connection.
func NewWatchlistRepository(database *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: database}
}

// Add inserts the entry unless the user already has the movie listed.
// Returns added=false when the entry already existed; not an error. The
// unique index on (user_id, movie_id) settles concurrent adds, so both
// callers see "already listed" instead of a surfaced conflict.
func (r *WatchlistRepository) Add(ctx context.Context, item *db.WatchlistItem) (added bool, err error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListForUser returns the user's watchlist, most recent first.
func (r *WatchlistRepository) ListForUser(ctx context.Context, userID uint64) ([]db.WatchlistItem, error) {
	var items []db.WatchlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// Remove deletes the entry for (user, movie).
func (r *WatchlistRepository) Remove(ctx context.Context, userID uint64, movieID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&db.WatchlistItem{}).Error
}

// MarkWatched flips the watched flag on the entry for (user, movie).
func (r *WatchlistRepository) MarkWatched(ctx context.Context, userID uint64, movieID string, watched bool) error {
	res := r.db.WithContext(ctx).
		Model(&db.WatchlistItem{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Update("watched", watched)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the user's watchlist size.
func (r *WatchlistRepository) Count(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.WatchlistItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
