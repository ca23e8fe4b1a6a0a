package guest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
)

// Handler exposes guest sessions over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /api/sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CreateSession(r.Context())
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"session": session})
}

// Join handles POST /api/sessions/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	session, err := h.service.JoinSession(r.Context(), req.Code)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"session": session})
}

// Get handles GET /api/sessions/code/{code}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetSession(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"session":      info.GuestSession,
		"participants": info.Participants,
	})
}

type guestSwipeRequest struct {
	GuestID     string  `json:"guest_id,omitempty"`
	MovieID     string  `json:"movie_id"`
	MovieTitle  string  `json:"movie_title"`
	MoviePoster string  `json:"movie_poster"`
	MovieType   string  `json:"movie_type"`
	MovieGenres []int64 `json:"movie_genres"`
	MovieRating int     `json:"movie_rating"`
	Direction   string  `json:"direction"`
}

// Swipe handles POST /api/sessions/{sessionID}/swipes.
func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	var req guestSwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	res, err := h.service.RecordSwipe(r.Context(), RecordSwipeRequest{
		SessionID:   sessionID,
		GuestID:     req.GuestID,
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		MoviePoster: req.MoviePoster,
		MovieType:   db.ContentType(req.MovieType),
		MovieGenres: req.MovieGenres,
		MovieRating: req.MovieRating,
		Direction:   db.Direction(req.Direction),
	})
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"success":  true,
		"guest_id": res.GuestID,
		"matched":  res.Matched,
	})
}

// Matches handles GET /api/sessions/{sessionID}/matches.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	matches, err := h.service.Matches(r.Context(), sessionID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"matches": matches})
}

// Participants handles GET /api/sessions/{sessionID}/participants.
func (h *Handler) Participants(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	count, err := h.service.Participants(r.Context(), sessionID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"participants": count})
}

func pathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidInput(name + " must be a valid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
