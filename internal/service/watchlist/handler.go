package watchlist

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
)

// Handler exposes the watchlist over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addRequest struct {
	UserID      uint64  `json:"user_id"`
	MovieID     string  `json:"movie_id"`
	MovieTitle  string  `json:"movie_title"`
	MoviePoster string  `json:"movie_poster"`
	MovieType   string  `json:"movie_type"`
	MovieGenres []int64 `json:"movie_genres"`
	MovieRating int     `json:"movie_rating"`
	AddedFrom   string  `json:"added_from,omitempty"`
}

// Add handles POST /api/watchlist.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	res, err := h.service.Add(r.Context(), AddRequest{
		UserID:      req.UserID,
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		MoviePoster: req.MoviePoster,
		MovieType:   db.ContentType(req.MovieType),
		MovieGenres: req.MovieGenres,
		MovieRating: req.MovieRating,
		AddedFrom:   req.AddedFrom,
	})
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"success":        true,
		"added":          res.Added,
		"already_exists": res.AlreadyExists,
	})
}

// List handles GET /api/watchlist.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"watchlist": items})
}

// Remove handles DELETE /api/watchlist/{movieID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	if err := h.service.Remove(r.Context(), userID, chi.URLParam(r, "movieID")); err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

// MarkWatched handles POST /api/watchlist/{movieID}/watched.
func (h *Handler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  uint64 `json:"user_id"`
		Watched *bool  `json:"watched"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}
	if req.UserID == 0 {
		svcErr.Write(w, svcErr.InvalidInput("user_id is required"))
		return
	}

	watched := true
	if req.Watched != nil {
		watched = *req.Watched
	}

	if err := h.service.MarkWatched(r.Context(), req.UserID, chi.URLParam(r, "movieID"), watched); err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func queryUserID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidInput("user_id must be a valid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
