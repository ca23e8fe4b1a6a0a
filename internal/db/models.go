package db

import (
	"time"
)

// Swipe direction. `left` is never affirmative; `right` and `up` both count
// toward matching; `down` is a private save-for-later action.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

// Affirmative reports whether the direction counts toward unanimity.
func (d Direction) Affirmative() bool {
	return d == DirectionRight || d == DirectionUp
}

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionLeft, DirectionRight, DirectionUp, DirectionDown:
		return true
	}
	return false
}

// Content type tag for externally-sourced catalog items.
type ContentType string

const (
	ContentMovie ContentType = "movie"
	ContentTV    ContentType = "tv"
	ContentBoth  ContentType = "both" // filter value only, never stored on a swipe
)

// Notification kinds.
const (
	NotificationMatch       = "match"
	NotificationSuperLike   = "super_like"
	NotificationGroupInvite = "group_invite"
)

// Group member roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// User table
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:320;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// UserPreference holds per-user discovery filters.
// One row per user (unique index on user_id); written by upsert.
type UserPreference struct {
	ID                   uint64      `gorm:"primaryKey;autoIncrement"`
	UserID               uint64      `gorm:"uniqueIndex:idx_pref_user;not null"`
	FavoriteGenres       []int64     `gorm:"serializer:json"`
	DislikedGenres       []int64     `gorm:"serializer:json"`
	PreferredContentType ContentType `gorm:"size:8;default:both;not null"`
	MinRating            int         `gorm:"default:0"`
	CreatedAt            time.Time   `gorm:"autoCreateTime"`
	UpdatedAt            time.Time   `gorm:"autoUpdateTime"`
}

// Group is a durable collaborative context for registered users.
// JoinCode is a 6-character human-entered code, unique among groups.
// Groups never expire.
type Group struct {
	ID           uint64      `gorm:"primaryKey;autoIncrement"`
	Name         string      `gorm:"size:255;not null"`
	JoinCode     string      `gorm:"uniqueIndex;size:10;not null"`
	CreatedBy    uint64      `gorm:"not null"`
	MinRating    int         `gorm:"default:0"`
	FilterGenres []int64     `gorm:"serializer:json"`
	FilterType   ContentType `gorm:"size:8;default:both;not null"`
	CreatedAt    time.Time   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime"`
}

// GroupMember ties a user to a group.
//
// Unique index on (group_id, user_id) backs the idempotent join: a second
// join attempt reads the existing row instead of inserting a duplicate.
type GroupMember struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement"`
	GroupID  uint64    `gorm:"uniqueIndex:idx_group_user,priority:1;not null"`
	UserID   uint64    `gorm:"uniqueIndex:idx_group_user,priority:2;not null"`
	Role     string    `gorm:"size:16;default:member;not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// Swipe is one decision per (user, content item).
//
// Unique index on (user_id, movie_id) gives the overwrite guarantee: re-swiping
// updates direction and timestamp in place, no history is kept.
// Movie metadata is a snapshot taken at swipe time and never re-fetched.
type Swipe struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement"`
	UserID      uint64      `gorm:"uniqueIndex:idx_user_movie,priority:1;index:idx_user_created,priority:1;not null"`
	MovieID     string      `gorm:"uniqueIndex:idx_user_movie,priority:2;index:idx_movie_direction,priority:1;size:50;not null"`
	MovieTitle  string      `gorm:"not null"`
	MoviePoster string      ``
	MovieType   ContentType `gorm:"size:8;not null"`
	MovieGenres []int64     `gorm:"serializer:json"`
	MovieRating int         `gorm:"default:0"`
	Direction   Direction   `gorm:"size:8;index:idx_movie_direction,priority:2;not null"`
	CreatedAt   time.Time   `gorm:"autoCreateTime;index:idx_user_created,priority:2,sort:desc"`
}

// Match is the materialized record of a group's unanimous like.
//
// Unique index on (group_id, movie_id) makes match creation exactly-once:
// concurrent deciding swipes collapse into one row via upsert.
// MatchedBy is the member set at detection time and is never recomputed.
type Match struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement"`
	GroupID     uint64      `gorm:"uniqueIndex:idx_group_movie,priority:1;not null"`
	MovieID     string      `gorm:"uniqueIndex:idx_group_movie,priority:2;size:50;not null"`
	MovieTitle  string      `gorm:"not null"`
	MoviePoster string      ``
	MovieType   ContentType `gorm:"size:8;not null"`
	MovieGenres []int64     `gorm:"serializer:json"`
	MovieRating int         `gorm:"default:0"`
	MatchedBy   []uint64    `gorm:"serializer:json;not null"`
	Watched     bool        `gorm:"default:false;not null"`
	WatchedAt   *time.Time
	MatchedAt   time.Time `gorm:"autoCreateTime"`
}

// SavedMovie is a private save-for-later entry (a `down` swipe materialized).
type SavedMovie struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement"`
	UserID      uint64      `gorm:"uniqueIndex:idx_user_saved_movie,priority:1;not null"`
	MovieID     string      `gorm:"uniqueIndex:idx_user_saved_movie,priority:2;size:50;not null"`
	MovieTitle  string      `gorm:"not null"`
	MoviePoster string      ``
	MovieType   ContentType `gorm:"size:8;not null"`
	MovieGenres []int64     `gorm:"serializer:json"`
	MovieRating int         `gorm:"default:0"`
	SavedAt     time.Time   `gorm:"autoCreateTime"`
}

// WatchlistItem is an explicit watchlist entry, added from swipes, matches,
// search or browse.
type WatchlistItem struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement"`
	UserID      uint64      `gorm:"uniqueIndex:idx_user_watch_movie,priority:1;not null"`
	MovieID     string      `gorm:"uniqueIndex:idx_user_watch_movie,priority:2;size:50;not null"`
	MovieTitle  string      `gorm:"not null"`
	MoviePoster string      ``
	MovieType   ContentType `gorm:"size:8;not null"`
	MovieGenres []int64     `gorm:"serializer:json"`
	MovieRating int         `gorm:"default:0"`
	AddedFrom   string      `gorm:"size:16;default:browse;not null"`
	Watched     bool        `gorm:"default:false;not null"`
	CreatedAt   time.Time   `gorm:"autoCreateTime"`
}

// Notification is one row per (recipient, triggering event).
// Generated as a side effect of match creation, super-like or group invite;
// never generated retroactively.
type Notification struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index:idx_notif_user_created,priority:1;not null"`
	Type      string    `gorm:"size:16;not null"`
	Title     string    `gorm:"size:255;not null"`
	Message   string    `gorm:"not null"`
	RelatedID string    `gorm:"size:50"`
	Read      bool      `gorm:"default:false;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_notif_user_created,priority:2,sort:desc"`
}

// GuestSession is an ephemeral collaborative context with a 6-digit code.
// Membership is derived from guest swipes, there is no member table.
// A session is unjoinable once ExpiresAt has passed; the sweep deletes it.
type GuestSession struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	SessionCode string    `gorm:"uniqueIndex;size:6;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// GuestSwipe is one decision per (session, guest, content item).
type GuestSwipe struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement"`
	SessionID   uint64      `gorm:"uniqueIndex:idx_session_guest_movie,priority:1;not null"`
	GuestID     string      `gorm:"uniqueIndex:idx_session_guest_movie,priority:2;size:64;not null"`
	MovieID     string      `gorm:"uniqueIndex:idx_session_guest_movie,priority:3;size:50;not null"`
	MovieTitle  string      `gorm:"not null"`
	MoviePoster string      ``
	MovieType   ContentType `gorm:"size:8;not null"`
	MovieGenres []int64     `gorm:"serializer:json"`
	MovieRating int         `gorm:"default:0"`
	Direction   Direction   `gorm:"size:8;not null"`
	CreatedAt   time.Time   `gorm:"autoCreateTime"`
}
