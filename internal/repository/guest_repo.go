package repository

import (
	"context"
	"time"

	"github.com/mityasmirnov/AnyMatch/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuestRepository provides data access for guest sessions and their swipes.
// Sessions have no member table; membership is derived from swipes.
type GuestRepository struct {
	db *gorm.DB
}

// NewGuestRepository creates a new repository bound to the given DB connection.
func NewGuestRepository(database *gorm.DB) *GuestRepository {
	return &GuestRepository{db: database}
}

// CreateSession inserts a new guest session row.
func (r *GuestRepository) CreateSession(ctx context.Context, session *db.GuestSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// SessionByCode looks a session up by code AND expiry in the same query, so
// an expired session is indistinguishable from a nonexistent one.
func (r *GuestRepository) SessionByCode(ctx context.Context, code string, now time.Time) (db.GuestSession, error) {
	var session db.GuestSession
	err := r.db.WithContext(ctx).
		Where("session_code = ? AND expires_at > ?", code, now).
		First(&session).Error
	return session, err
}

// SessionByID fetches a live session by id, with the same expiry conflation.
func (r *GuestRepository) SessionByID(ctx context.Context, sessionID uint64, now time.Time) (db.GuestSession, error) {
	var session db.GuestSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", sessionID, now).
		First(&session).Error
	return session, err
}

// SessionCodeExists reports whether any session row holds the code. Expired
// rows count too: session_code is globally unique, so until the sweep removes
// them they would still fail the insert.
func (r *GuestRepository) SessionCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.GuestSession{}).
		Where("session_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// CreateOrUpdateSwipe upserts the guest's decision for
// (session_id, guest_id, movie_id); re-swipes overwrite direction in place.
func (r *GuestRepository) CreateOrUpdateSwipe(ctx context.Context, swipe *db.GuestSwipe) error {
	swipe.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "guest_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "created_at"}),
		}).
		Create(swipe).Error
}

// SessionSwipes returns every swipe recorded in the session. Guest match
// detection re-scans this set on every evaluation.
func (r *GuestRepository) SessionSwipes(ctx context.Context, sessionID uint64) ([]db.GuestSwipe, error) {
	var swipes []db.GuestSwipe
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&swipes).Error
	return swipes, err
}

// DeleteExpired removes sessions whose expiry has passed, and their swipes.
// Returns the number of sessions removed. Run by the periodic sweep.
func (r *GuestRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint64
		if err := tx.Model(&db.GuestSession{}).
			Where("expires_at <= ?", now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("session_id IN ?", ids).Delete(&db.GuestSwipe{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&db.GuestSession{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}
