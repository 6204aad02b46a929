package upload

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/marcosgperez/social-media/cmd/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/upload/image", utils.AuthMiddleware(h.UploadImage)).Methods("POST")
}

// UploadImage stores a multipart image and returns its URL.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "No image provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imageURL, err := utils.SaveImage(file, header)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"url":     imageURL,
	})
}
