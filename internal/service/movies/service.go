package movies

import (
	"context"
	"errors"
	"strconv"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
	"github.com/mityasmirnov/AnyMatch/internal/tmdb"

	"gorm.io/gorm"
)

// Service serves the discovery catalog: provider results filtered by the
// actor's stored preferences and purged of items they already swiped on.
type Service struct {
	appCtx    *app.AppContext
	client    *tmdb.Client
	swipeRepo *repository.SwipeRepository
	prefRepo  *repository.PreferenceRepository
}

// NewService creates the movies service around the given metadata client.
func NewService(appCtx *app.AppContext, client *tmdb.Client) *Service {
	return &Service{
		appCtx:    appCtx,
		client:    client,
		swipeRepo: repository.NewSwipeRepository(appCtx.DB),
		prefRepo:  repository.NewPreferenceRepository(appCtx.DB),
	}
}

// DiscoverRequest selects a page of the catalog. Zero-valued filters fall
// back to the actor's stored preferences; UserID 0 means an anonymous
// browse with no preference lookup and no already-swiped filtering.
type DiscoverRequest struct {
	UserID      uint64
	ContentType db.ContentType
	Page        int
	Genres      []int64
	MinRating   int
}

// Discover returns one provider page, normalized and with the actor's
// already-swiped items removed.
func (s *Service) Discover(ctx context.Context, req DiscoverRequest) ([]tmdb.Media, error) {
	contentType := req.ContentType
	params := tmdb.DiscoverParams{
		Page:      req.Page,
		Genres:    req.Genres,
		MinRating: req.MinRating,
	}

	if req.UserID != 0 && (contentType == "" || len(params.Genres) == 0 || params.MinRating == 0) {
		pref, err := s.prefRepo.Get(ctx, req.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			if contentType == "" {
				contentType = pref.PreferredContentType
			}
			if len(params.Genres) == 0 {
				params.Genres = pref.FavoriteGenres
			}
			if params.MinRating == 0 {
				params.MinRating = pref.MinRating
			}
		}
	}
	if contentType == "" {
		contentType = db.ContentBoth
	}

	var results []tmdb.Media
	switch contentType {
	case db.ContentMovie:
		page, err := s.client.DiscoverMovies(ctx, params)
		if err != nil {
			return nil, err
		}
		results = normalizePage(page, db.ContentMovie)
	case db.ContentTV:
		page, err := s.client.DiscoverTV(ctx, params)
		if err != nil {
			return nil, err
		}
		results = normalizePage(page, db.ContentTV)
	case db.ContentBoth:
		moviePage, err := s.client.DiscoverMovies(ctx, params)
		if err != nil {
			return nil, err
		}
		tvPage, err := s.client.DiscoverTV(ctx, params)
		if err != nil {
			return nil, err
		}
		results = append(normalizePage(moviePage, db.ContentMovie), normalizePage(tvPage, db.ContentTV)...)
	default:
		return nil, svcErr.InvalidInput("type must be movie, tv or both")
	}

	return s.withoutSwiped(ctx, req.UserID, results)
}

// Search runs a combined movie/TV search. Swiped items stay in search
// results; hiding them there would make lookups confusing.
func (s *Service) Search(ctx context.Context, query string, page int) ([]tmdb.Media, error) {
	if query == "" {
		return nil, svcErr.InvalidInput("query is required")
	}

	res, err := s.client.SearchMulti(ctx, query, page)
	if err != nil {
		return nil, err
	}

	results := make([]tmdb.Media, 0, len(res.Results))
	for _, m := range res.Results {
		// search/multi also returns people; they carry no media_type we handle
		if m.MediaType != "movie" && m.MediaType != "tv" {
			continue
		}
		results = append(results, tmdb.Normalize(m, db.ContentMovie))
	}
	return results, nil
}

// Details fetches one item by id and type.
func (s *Service) Details(ctx context.Context, id string, contentType db.ContentType) (tmdb.Media, error) {
	providerID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return tmdb.Media{}, svcErr.InvalidInput("id must be numeric")
	}

	var raw tmdb.Movie
	switch contentType {
	case db.ContentTV:
		raw, err = s.client.TVDetails(ctx, providerID)
	default:
		raw, err = s.client.MovieDetails(ctx, providerID)
		contentType = db.ContentMovie
	}
	if err != nil {
		return tmdb.Media{}, err
	}
	return tmdb.Normalize(raw, contentType), nil
}

// GenreList is the combined genre catalog, split by content type.
type GenreList struct {
	Movie []tmdb.Genre `json:"movie"`
	TV    []tmdb.Genre `json:"tv"`
}

// Genres returns both genre lists.
func (s *Service) Genres(ctx context.Context) (GenreList, error) {
	movie, err := s.client.MovieGenres(ctx)
	if err != nil {
		return GenreList{}, err
	}
	tv, err := s.client.TVGenres(ctx)
	if err != nil {
		return GenreList{}, err
	}
	return GenreList{Movie: movie, TV: tv}, nil
}

// withoutSwiped removes items the actor has already decided on.
func (s *Service) withoutSwiped(ctx context.Context, userID uint64, results []tmdb.Media) ([]tmdb.Media, error) {
	if userID == 0 || len(results) == 0 {
		return results, nil
	}

	ids, err := s.swipeRepo.SwipedMovieIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return results, nil
	}

	swiped := make(map[string]bool, len(ids))
	for _, id := range ids {
		swiped[id] = true
	}

	filtered := results[:0]
	for _, m := range results {
		if !swiped[m.ID] {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func normalizePage(page tmdb.Page, contentType db.ContentType) []tmdb.Media {
	out := make([]tmdb.Media, len(page.Results))
	for i, m := range page.Results {
		out[i] = tmdb.Normalize(m, contentType)
	}
	return out
}
