package feed

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/marcosgperez/social-media/cmd/utils"
	"github.com/marcosgperez/social-media/service/gateway"
	"github.com/marcosgperez/social-media/service/ws"
)

const defaultTimelineLimit = 50

type Handler struct {
	gw  gateway.Gateway
	hub *ws.Hub
}

func NewHandler(gw gateway.Gateway, hub *ws.Hub) *Handler {
	return &Handler{gw: gw, hub: hub}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/feed", utils.AuthMiddleware(h.GetFeed)).Methods("GET")
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.GetPost)).Methods("GET")
	router.HandleFunc("/posts/{id}/like", utils.AuthMiddleware(h.ToggleLike)).Methods("POST")
	router.HandleFunc("/user/likes", utils.AuthMiddleware(h.GetUserLikes)).Methods("GET")
}

// GetFeed returns the timeline, newest first.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = defaultTimelineLimit
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	details, err := h.gw.Timeline(r.Context(), limit, offset)
	if err != nil {
		log.Printf("Error retrieving timeline: %v", err)
		http.Error(w, "Error retrieving posts", http.StatusInternalServerError)
		return
	}

	posts := make([]Post, 0, len(details))
	for _, detail := range details {
		posts = append(posts, Project(detail))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

// CreatePost creates a new post owned by the authenticated user.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var createRequest struct {
		Content  string `json:"content"`
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(createRequest.Content) == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	var mediaURL *string
	if createRequest.ImageURL != "" {
		mediaURL = &createRequest.ImageURL
	}

	detail, err := h.gw.CreatePost(r.Context(), userID, createRequest.Content, mediaURL)
	if err != nil {
		log.Printf("Error creating post: %v", err)
		http.Error(w, "Error creating post", http.StatusInternalServerError)
		return
	}

	post := Project(*detail)
	h.hub.Broadcast(ws.EventPost, post)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

// GetPost returns the authoritative state of one post, with recomputed
// aggregate counts. Clients use it as the convergence point after an
// optimistic like.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID := vars["id"]

	detail, err := h.gw.PostByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		log.Printf("Error retrieving post %s: %v", postID, err)
		http.Error(w, "Error retrieving post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Project(*detail))
}

// ToggleLike flips the viewer's like on a post. The server decides the
// resulting state from what is persisted, not from what the client claims.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	postID := vars["id"]

	if _, err := h.gw.PostByID(r.Context(), postID); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		log.Printf("Error retrieving post %s: %v", postID, err)
		http.Error(w, "Error toggling like", http.StatusInternalServerError)
		return
	}

	liked, err := h.gw.HasLiked(r.Context(), userID, postID)
	if err != nil {
		log.Printf("Error checking like on post %s: %v", postID, err)
		http.Error(w, "Error toggling like", http.StatusInternalServerError)
		return
	}

	if liked {
		err = h.gw.Unlike(r.Context(), userID, postID)
	} else {
		err = h.gw.Like(r.Context(), userID, postID)
	}
	if err != nil {
		log.Printf("Error toggling like on post %s: %v", postID, err)
		http.Error(w, "Error toggling like", http.StatusInternalServerError)
		return
	}

	if detail, err := h.gw.PostByID(r.Context(), postID); err == nil {
		h.hub.Broadcast(ws.EventLike, Project(*detail))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"liked":   !liked,
	})
}

// GetUserLikes returns the ids of every post the viewer has liked.
func (h *Handler) GetUserLikes(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ids, err := h.gw.LikedPostIDs(r.Context(), userID)
	if err != nil {
		log.Printf("Error retrieving likes for user %s: %v", userID, err)
		http.Error(w, "Error retrieving likes", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{
		"likedPostIds": ids,
	})
}
