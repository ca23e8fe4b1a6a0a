package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedMovies = []struct {
	ID     string
	Title  string
	Type   ContentType
	Genres []int64
	Rating int
}{
	{"603", "The Matrix", ContentMovie, []int64{28, 878}, 82},
	{"27205", "Inception", ContentMovie, []int64{28, 878, 12}, 83},
	{"155", "The Dark Knight", ContentMovie, []int64{18, 28, 80}, 85},
	{"1396", "Breaking Bad", ContentTV, []int64{18, 80}, 89},
	{"1399", "Game of Thrones", ContentTV, []int64{10765, 18}, 84},
	{"680", "Pulp Fiction", ContentMovie, []int64{53, 80}, 85},
	{"13", "Forrest Gump", ContentMovie, []int64{35, 18, 10749}, 85},
	{"278", "The Shawshank Redemption", ContentMovie, []int64{18, 80}, 87},
}

// SeedTestData resets the database and populates it with demo users, groups,
// swipes and one guest session.
//
// Behavior:
//  1. Clears all tables.
//  2. Creates 8 users with hashed passwords, two groups, and memberships.
//  3. Generates swipes over a small movie catalog with ~70% likes.
//  4. Creates a guest session with two seeded guests.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	tables := []string{
		"guest_swipes", "guest_sessions", "notifications", "watchlist_items",
		"saved_movies", "matches", "swipes", "group_members", "groups",
		"user_preferences", "users",
	}
	for _, tbl := range tables {
		if err := db.Exec("DELETE FROM " + tbl).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", tbl, err)
		}
		if db.Dialector.Name() == "sqlite" {
			db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", tbl)
		}
	}
	log.Println("Cleared existing data")

	// --- Users ---
	for i := 1; i <= 8; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 8 users.")

	// --- Groups ---
	groups := []Group{
		{Name: "Movie Night", JoinCode: "AB23CD", CreatedBy: 1, FilterType: ContentBoth},
		{Name: "Horror Club", JoinCode: "XY45ZW", CreatedBy: 5, MinRating: 60, FilterType: ContentMovie},
	}
	if err := db.Create(&groups).Error; err != nil {
		return fmt.Errorf("failed to seed groups: %w", err)
	}

	members := []GroupMember{
		{GroupID: groups[0].ID, UserID: 1, Role: RoleOwner},
		{GroupID: groups[0].ID, UserID: 2, Role: RoleMember},
		{GroupID: groups[0].ID, UserID: 3, Role: RoleMember},
		{GroupID: groups[1].ID, UserID: 5, Role: RoleOwner},
		{GroupID: groups[1].ID, UserID: 6, Role: RoleMember},
	}
	if err := db.Create(&members).Error; err != nil {
		return fmt.Errorf("failed to seed members: %w", err)
	}

	// --- Swipes (~70% likes) ---
	for userID := uint64(1); userID <= 8; userID++ {
		for _, m := range seedMovies {
			if r.Intn(100) < 25 {
				continue // not every user sees every title
			}
			dir := DirectionLeft
			if r.Intn(100) < 70 {
				dir = DirectionRight
			}
			swipe := Swipe{
				UserID:      userID,
				MovieID:     m.ID,
				MovieTitle:  m.Title,
				MovieType:   m.Type,
				MovieGenres: m.Genres,
				MovieRating: m.Rating,
				Direction:   dir,
			}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"direction", "created_at"}),
			}).Create(&swipe).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}
		}
	}
	log.Println("Seeded swipes.")

	// --- Guest session with two participants ---
	session := GuestSession{
		SessionCode: "246813",
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}
	if err := db.Create(&session).Error; err != nil {
		return fmt.Errorf("failed to seed guest session: %w", err)
	}
	guests := []string{uuid.NewString(), uuid.NewString()}
	for _, g := range guests {
		for _, m := range seedMovies[:4] {
			dir := DirectionRight
			if r.Intn(100) < 30 {
				dir = DirectionLeft
			}
			gs := GuestSwipe{
				SessionID:   session.ID,
				GuestID:     g,
				MovieID:     m.ID,
				MovieTitle:  m.Title,
				MovieType:   m.Type,
				MovieGenres: m.Genres,
				MovieRating: m.Rating,
				Direction:   dir,
			}
			if err := db.Create(&gs).Error; err != nil {
				return fmt.Errorf("failed to seed guest swipe: %w", err)
			}
		}
	}
	log.Println("Seeded guest session.")

	return nil
}
