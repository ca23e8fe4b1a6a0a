package groups

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
)

// Handler exposes group lifecycle and matches over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /api/groups.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uint64 `json:"user_id"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	res, err := h.service.Create(r.Context(), req.UserID, req.Name)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"group_id": res.GroupID, "join_code": res.JoinCode})
}

// Join handles POST /api/groups/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   uint64 `json:"user_id"`
		JoinCode string `json:"join_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	res, err := h.service.Join(r.Context(), req.UserID, req.JoinCode)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"group_id": res.GroupID, "already_member": res.AlreadyMember})
}

// List handles GET /api/groups.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	groups, err := h.service.List(r.Context(), userID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"groups": groups})
}

// Get handles GET /api/groups/{groupID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	groupID, err := pathID(r, "groupID")
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	detail, err := h.service.Get(r.Context(), userID, groupID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, detail)
}

// UpdateFilters handles PATCH /api/groups/{groupID}/filters.
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	var req struct {
		UserID       uint64  `json:"user_id"`
		MinRating    *int    `json:"min_rating"`
		FilterGenres []int64 `json:"filter_genres"`
		FilterType   *string `json:"filter_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	filters := repository.GroupFilters{
		MinRating:    req.MinRating,
		FilterGenres: req.FilterGenres,
	}
	if req.FilterType != nil {
		ct := db.ContentType(*req.FilterType)
		filters.FilterType = &ct
	}

	if err := h.service.UpdateFilters(r.Context(), req.UserID, groupID, filters); err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

// Matches handles GET /api/groups/{groupID}/matches.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	groupID, err := pathID(r, "groupID")
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	matches, err := h.service.Matches(r.Context(), userID, groupID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"matches": matches})
}

// MarkWatched handles POST /api/matches/{matchID}/watched.
func (h *Handler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "matchID")
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	var req struct {
		UserID uint64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	if err := h.service.MarkWatched(r.Context(), req.UserID, matchID); err != nil {
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
