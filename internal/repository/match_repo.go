package repository

import (
	"context"
	"time"

	"github.com/mityasmirnov/AnyMatch/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository provides data access for materialized group matches.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// UpsertMatch inserts the match or, if (group_id, movie_id) already exists,
// refreshes matched_by and matched_at instead of creating a duplicate row.
//
// This is the exactly-once guard: two near-simultaneous deciding swipes both
// reach this call, and the unique index collapses them into one row.
func (r *MatchRepository) UpsertMatch(ctx context.Context, match *db.Match) error {
	match.MatchedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"matched_by", "matched_at"}),
		}).
		Create(match).Error
}

// MatchesForGroup lists the group's matches, most recent first.
func (r *MatchRepository) MatchesForGroup(ctx context.Context, groupID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("matched_at DESC").
		Find(&matches).Error
	return matches, err
}

// MatchByID fetches a match by primary key.
func (r *MatchRepository) MatchByID(ctx context.Context, matchID uint64) (db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).First(&match, matchID).Error
	return match, err
}

// MatchByPair fetches the single match row for (group, movie), if any.
func (r *MatchRepository) MatchByPair(ctx context.Context, groupID uint64, movieID string) (db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND movie_id = ?", groupID, movieID).
		First(&match).Error
	return match, err
}

// CountForPair returns the row count for (group, movie). Exists for tests
// asserting the exactly-once property.
func (r *MatchRepository) CountForPair(ctx context.Context, groupID uint64, movieID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("group_id = ? AND movie_id = ?", groupID, movieID).
		Count(&count).Error
	return count, err
}

// MarkWatched sets the watched flag and timestamp. The rest of the match row
// is immutable after creation.
func (r *MatchRepository) MarkWatched(ctx context.Context, matchID uint64) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{"watched": true, "watched_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
