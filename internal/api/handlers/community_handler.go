package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kllinic/marketplace/internal/api/middleware"
	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
)

// CommunityHandler handles the forum, health events, and groups
type CommunityHandler struct {
	community *services.CommunityService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(community *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{community: community}
}

// ListPosts handles GET /api/community/posts
func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	views, err := h.community.ListPosts(r.Context(), communityLimit(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"posts": views,
		"count": len(views),
	})
}

// CreatePost handles POST /api/community/posts
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var post entities.CommunityPost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post.AuthorID = session.UserID

	if err := h.community.CreatePost(r.Context(), &post); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, post)
}

// LikePost handles POST /api/community/posts/{id}/like
func (h *CommunityHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "post ID is required")
		return
	}

	if err := h.community.LikePost(r.Context(), id, session.UserID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "liked"})
}

// ListEvents handles GET /api/community/events
func (h *CommunityHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.community.ListEvents(r.Context(), communityLimit(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// CreateEvent handles POST /api/community/events
func (h *CommunityHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	var event entities.HealthEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event.OrganizerID = session.UserID

	if err := h.community.CreateEvent(r.Context(), &event); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, event)
}

// JoinEvent handles POST /api/community/events/{id}/join
func (h *CommunityHandler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "event ID is required")
		return
	}

	if err := h.community.JoinEvent(r.Context(), id, session.UserID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// ListGroups handles GET /api/community/groups
func (h *CommunityHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	userID := ""
	if session != nil {
		userID = session.UserID
	}

	groups, err := h.community.ListGroups(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"groups": groups,
		"count":  len(groups),
	})
}

// CreateGroup handles POST /api/community/groups
func (h *CommunityHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var group entities.CommunityGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.community.CreateGroup(r.Context(), &group); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, group)
}

// JoinGroup handles POST /api/community/groups/{id}/join
func (h *CommunityHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "group ID is required")
		return
	}

	if err := h.community.JoinGroup(r.Context(), id, session.UserID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

func communityLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 50
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 50
	}
	return limit
}
