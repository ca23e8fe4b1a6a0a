package repository

import (
	"context"

	"github.com/mityasmirnov/AnyMatch/internal/db"

	"gorm.io/gorm"
)

// UserRepository provides the user lookups the core needs (display names for
// notification messages). Account management itself lives elsewhere.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// ByID fetches a user by primary key.
func (r *UserRepository) ByID(ctx context.Context, userID uint64) (db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	return user, err
}

// UsernameByID returns the user's display name, or "Someone" when the
// lookup fails. Used in notification messages only.
func (r *UserRepository) UsernameByID(ctx context.Context, userID uint64) string {
	user, err := r.ByID(ctx, userID)
	if err != nil || user.Username == "" {
		return "Someone"
	}
	return user.Username
}
