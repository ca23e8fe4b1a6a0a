package preferences

import (
	"context"
	"errors"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
	"github.com/mityasmirnov/AnyMatch/internal/repository"

	"gorm.io/gorm"
)

// Service manages per-user discovery preferences.
type Service struct {
	appCtx   *app.AppContext
	prefRepo *repository.PreferenceRepository
}

// NewService creates the preferences service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		prefRepo: repository.NewPreferenceRepository(appCtx.DB),
	}
}

// Get returns the user's preferences, falling back to defaults when none
// have been saved yet. A user without a row is not an error.
func (s *Service) Get(ctx context.Context, userID uint64) (db.UserPreference, error) {
	if userID == 0 {
		return db.UserPreference{}, svcErr.InvalidInput("user_id is required")
	}

	pref, err := s.prefRepo.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.UserPreference{
			UserID:               userID,
			PreferredContentType: db.ContentBoth,
		}, nil
	}
	return pref, err
}

// UpdateRequest replaces the user's preferences wholesale.
type UpdateRequest struct {
	UserID               uint64
	FavoriteGenres       []int64
	DislikedGenres       []int64
	PreferredContentType db.ContentType
	MinRating            int
}

// Update upserts the user's preference row.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (db.UserPreference, error) {
	if req.UserID == 0 {
		return db.UserPreference{}, svcErr.InvalidInput("user_id is required")
	}
	if req.PreferredContentType == "" {
		req.PreferredContentType = db.ContentBoth
	}
	switch req.PreferredContentType {
	case db.ContentMovie, db.ContentTV, db.ContentBoth:
	default:
		return db.UserPreference{}, svcErr.InvalidInput("content_type must be movie, tv or both")
	}
	if req.MinRating < 0 || req.MinRating > 100 {
		return db.UserPreference{}, svcErr.InvalidInput("min_rating must be between 0 and 100")
	}

	pref := &db.UserPreference{
		UserID:               req.UserID,
		FavoriteGenres:       req.FavoriteGenres,
		DislikedGenres:       req.DislikedGenres,
		PreferredContentType: req.PreferredContentType,
		MinRating:            req.MinRating,
	}
	if err := s.prefRepo.Upsert(ctx, pref); err != nil {
		return db.UserPreference{}, err
	}
	return *pref, nil
}
