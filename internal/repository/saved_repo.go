package repository

import (
	"context"
	"time"

	"github.com/mityasmirnov/AnyMatch/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedMovieRepository provides data access for private save-for-later entries.
type SavedMovieRepository struct {
	db *gorm.DB
}

// NewSavedMovieRepository creates a new repository bound to the given DB connection.
func NewSavedMovieRepository(database *gorm.DB) *SavedMovieRepository {
	return &SavedMovieRepository{db: database}
}

// Save upserts the entry for (user_id, movie_id), refreshing saved_at.
// Re-saving is not an error.
func (r *SavedMovieRepository) Save(ctx context.Context, saved *db.SavedMovie) error {
	saved.SavedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"saved_at"}),
		}).
		Create(saved).Error
}

// ListForUser returns the user's saved movies, most recent first.
func (r *SavedMovieRepository) ListForUser(ctx context.Context, userID uint64) ([]db.SavedMovie, error) {
	var saved []db.SavedMovie
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("saved_at DESC").
		Find(&saved).Error
	return saved, err
}

// Remove deletes the entry for (user, movie).
func (r *SavedMovieRepository) Remove(ctx context.Context, userID uint64, movieID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&db.SavedMovie{}).Error
}
