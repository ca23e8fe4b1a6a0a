package swipes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
)

// Handler exposes the swipe ledger over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type recordSwipeRequest struct {
	UserID      uint64  `json:"user_id"`
	MovieID     string  `json:"movie_id"`
	MovieTitle  string  `json:"movie_title"`
	MoviePoster string  `json:"movie_poster"`
	MovieType   string  `json:"movie_type"`
	MovieGenres []int64 `json:"movie_genres"`
	MovieRating int     `json:"movie_rating"`
	Direction   string  `json:"direction"`
	GroupID     uint64  `json:"group_id,omitempty"`
}

// Record handles POST /api/swipes.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordSwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	res, err := h.service.RecordSwipe(r.Context(), RecordSwipeRequest{
		UserID:      req.UserID,
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		MoviePoster: req.MoviePoster,
		MovieType:   db.ContentType(req.MovieType),
		MovieGenres: req.MovieGenres,
		MovieRating: req.MovieRating,
		Direction:   db.Direction(req.Direction),
		GroupID:     req.GroupID,
	})
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "matched": res.Matched})
}

// Undo handles POST /api/swipes/undo.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	swipe, err := h.service.Undo(r.Context(), req.UserID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	writeJSON(w, map[string]any{"success": true, "movie": swipe})
}

// History handles GET /api/swipes/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	var token *string
	if t := r.URL.Query().Get("token"); t != "" {
		token = &t
	}

	swipes, nextToken, err := h.service.History(r.Context(), userID, token, limit)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	resp := map[string]any{"swipes": swipes}
	if nextToken != nil {
		resp["next_token"] = *nextToken
	}
	writeJSON(w, resp)
}

// ListSaved handles GET /api/saved.
func (h *Handler) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	saved, err := h.service.SavedMovies(r.Context(), userID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"saved": saved})
}

// RemoveSaved handles DELETE /api/saved/{movieID}.
func (h *Handler) RemoveSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	if err := h.service.RemoveSaved(r.Context(), userID, chi.URLParam(r, "movieID")); err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

// queryUserID parses the user_id query parameter.
// Auth is handled upstream; the id arrives already resolved.
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
