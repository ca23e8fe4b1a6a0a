package repository

import (
	"context"

	"github.com/mityasmirnov/AnyMatch/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository provides data access for per-user discovery filters.
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new repository bound to the given DB connection.
func NewPreferenceRepository(database *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: database}
}

// Get fetches the user's preferences.
// Returns gorm.ErrRecordNotFound when none have been saved yet.
func (r *PreferenceRepository) Get(ctx context.Context, userID uint64) (db.UserPreference, error) {
	var pref db.UserPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	return pref, err
}

// Upsert inserts or overwrites the user's preference row.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *db.UserPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"favorite_genres", "disliked_genres", "preferred_content_type", "min_rating", "updated_at",
			}),
		}).
		Create(pref).Error
}
