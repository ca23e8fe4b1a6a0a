package movies

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
)

// Handler exposes catalog discovery over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Discover handles GET /api/movies/discover.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID, _ := strconv.ParseUint(q.Get("user_id"), 10, 64)
	page, _ := strconv.Atoi(q.Get("page"))
	minRating, _ := strconv.Atoi(q.Get("min_rating"))

	var genres []int64
	if raw := q.Get("genres"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				genres = append(genres, id)
			}
		}
	}

	results, err := h.service.Discover(r.Context(), DiscoverRequest{
		UserID:      userID,
		ContentType: db.ContentType(q.Get("type")),
		Page:        page,
		Genres:      genres,
		MinRating:   minRating,
	})
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"results": results})
}

// Search handles GET /api/movies/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	results, err := h.service.Search(r.Context(), r.URL.Query().Get("query"), page)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"results": results})
}

// Details handles GET /api/movies/{movieID}.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	media, err := h.service.Details(r.Context(),
		chi.URLParam(r, "movieID"),
		db.ContentType(r.URL.Query().Get("type")))
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, media)
}

// Genres handles GET /api/movies/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.Genres(r.Context())
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, genres)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
