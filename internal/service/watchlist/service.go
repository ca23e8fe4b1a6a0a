package watchlist

import (
	"context"
	"errors"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
	"github.com/mityasmirnov/AnyMatch/internal/repository"

	"gorm.io/gorm"
)

// Known watchlist sources.
const (
	SourceBrowse = "browse"
	SourceSwipe  = "swipe"
	SourceMatch  = "match"
	SourceSearch = "search"
)

// Service manages the explicit per-user watchlist.
type Service struct {
	appCtx   *app.AppContext
	listRepo *repository.WatchlistRepository
}

// NewService creates the watchlist service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		listRepo: repository.NewWatchlistRepository(appCtx.DB),
	}
}

// AddRequest carries one watchlist entry with its metadata snapshot.
type AddRequest struct {
	UserID      uint64
	MovieID     string
	MovieTitle  string
	MoviePoster string
	MovieType   db.ContentType
	MovieGenres []int64
	MovieRating int
	AddedFrom   string
}

// AddResult reports whether the entry was new. Re-adding an existing entry
// succeeds without duplicating the row.
type AddResult struct {
	Added         bool
	AlreadyExists bool
}

// Add puts a content item on the actor's watchlist.
func (s *Service) Add(ctx context.Context, req AddRequest) (AddResult, error) {
	if err := validateAdd(req); err != nil {
		return AddResult{}, err
	}

	source := req.AddedFrom
	switch source {
	case "":
		source = SourceBrowse
	case SourceBrowse, SourceSwipe, SourceMatch, SourceSearch:
	default:
		return AddResult{}, svcErr.InvalidInput("added_from must be browse, swipe, match or search")
	}

	added, err := s.listRepo.Add(ctx, &db.WatchlistItem{
		UserID:      req.UserID,
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		MoviePoster: req.MoviePoster,
		MovieType:   req.MovieType,
		MovieGenres: req.MovieGenres,
		MovieRating: req.MovieRating,
		AddedFrom:   source,
	})
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{Added: added, AlreadyExists: !added}, nil
}

// List returns the actor's watchlist, most recent first.
func (s *Service) List(ctx context.Context, userID uint64) ([]db.WatchlistItem, error) {
	return s.listRepo.ListForUser(ctx, userID)
}

// Remove deletes one entry. Removing an absent entry is a no-op.
func (s *Service) Remove(ctx context.Context, userID uint64, movieID string) error {
	if movieID == "" {
		return svcErr.InvalidInput("movie_id is required")
	}
	return s.listRepo.Remove(ctx, userID, movieID)
}

// MarkWatched flips the watched flag on one entry.
func (s *Service) MarkWatched(ctx context.Context, userID uint64, movieID string, watched bool) error {
	if movieID == "" {
		return svcErr.InvalidInput("movie_id is required")
	}
	err := s.listRepo.MarkWatched(ctx, userID, movieID, watched)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.ErrNotFound
	}
	return err
}

func validateAdd(req AddRequest) error {
	if req.UserID == 0 {
		return svcErr.InvalidInput("user_id is required")
	}
	if req.MovieID == "" {
		return svcErr.InvalidInput("movie_id is required")
	}
	if req.MovieTitle == "" {
		return svcErr.InvalidInput("movie_title is required")
	}
	if req.MovieType != db.ContentMovie && req.MovieType != db.ContentTV {
		return svcErr.InvalidInput("movie_type must be movie or tv")
	}
	return nil
}
