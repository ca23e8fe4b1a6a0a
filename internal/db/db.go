package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mityasmirnov/AnyMatch/internal/config"
)

// NewDB initializes the database connection using DSN from config.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		// surface duplicate-key violations as gorm.ErrDuplicatedKey so the
		// idempotent-join path can recognize them
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// AutoMigrate ensures schema is in sync with models.
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// Migrate syncs the full schema. Also used by tests against SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&UserPreference{},
		&Group{},
		&GroupMember{},
		&Swipe{},
		&Match{},
		&SavedMovie{},
		&WatchlistItem{},
		&Notification{},
		&GuestSession{},
		&GuestSwipe{},
	)
}
