package repository

import (
	"context"
	"time"

	"github.com/mityasmirnov/AnyMatch/internal/db"
	"github.com/mityasmirnov/AnyMatch/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SwipeRepository provides data access for the swipe ledger.
// One row per (user, movie); re-swipes overwrite in place.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// CreateOrUpdateSwipe inserts or overwrites the swipe for (user_id, movie_id).
//
// Behavior:
//   - If the pair exists → direction and created_at are updated (last-write-wins).
//   - If it doesn't → a new row is inserted with the metadata snapshot.
//   - The unique index makes the upsert atomic at the storage layer, so two
//     simultaneous swipes on the same pair cannot produce duplicate rows.
func (r *SwipeRepository) CreateOrUpdateSwipe(ctx context.Context, swipe *db.Swipe) error {
	// millisecond precision matches what pagination cursors encode
	swipe.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "created_at"}),
		}).
		Create(swipe).Error
}

// Latest returns the actor's most recent swipe.
// Returns gorm.ErrRecordNotFound when the actor has no swipes.
func (r *SwipeRepository) Latest(ctx context.Context, userID uint64) (db.Swipe, error) {
	var swipe db.Swipe
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&swipe).Error
	return swipe, err
}

// Delete removes the swipe row for (user, movie) entirely. Used by undo.
func (r *SwipeRepository) Delete(ctx context.Context, userID uint64, movieID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&db.Swipe{}).Error
}

// DeleteAllForUser removes every swipe by the actor. Account-removal path.
func (r *SwipeRepository) DeleteAllForUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&db.Swipe{}).Error
}

// History returns the actor's swipes, most recent first, with cursor-based
// pagination over (created_at DESC, id DESC).
func (r *SwipeRepository) History(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	var swipes []db.Swipe

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if cursor.RowID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.RowID,
		)
	}

	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			RowID:       last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}

// SwipedMovieIDs returns every movie id the actor has decided on.
// Used to filter already-seen titles out of discovery.
func (r *SwipeRepository) SwipedMovieIDs(ctx context.Context, userID uint64) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("user_id = ?", userID).
		Pluck("movie_id", &ids).Error
	return ids, err
}

// RightSwipes returns the `right`-direction swipes on movieID restricted to
// the given member set. The unanimity check compares its length against the
// membership size.
func (r *SwipeRepository) RightSwipes(ctx context.Context, movieID string, userIDs []uint64) ([]db.Swipe, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var swipes []db.Swipe
	err := r.db.WithContext(ctx).
		Where("movie_id = ? AND direction = ? AND user_id IN ?", movieID, db.DirectionRight, userIDs).
		Find(&swipes).Error
	return swipes, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
