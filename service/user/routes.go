package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/gorilla/mux"
	"github.com/marcosgperez/social-media/cmd/models"
	"github.com/marcosgperez/social-media/cmd/utils"
	"github.com/marcosgperez/social-media/service/gateway"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

type Handler struct {
	gw gateway.Gateway
}

func NewHandler(gw gateway.Gateway) *Handler {
	return &Handler{gw: gw}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/register", h.HandleRegister).Methods("POST")
	router.HandleFunc("/login", h.HandleLogin).Methods("POST")
	router.HandleFunc("/me", utils.AuthMiddleware(h.HandleMe)).Methods("GET")
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	resp := userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Name:     u.Name,
	}
	if u.ImageURL != nil {
		resp.Avatar = *u.ImageURL
	}
	return resp
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var registerRequest struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
		http.Error(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}

	if registerRequest.Name == "" || registerRequest.Username == "" ||
		registerRequest.Email == "" || registerRequest.Password == "" {
		http.Error(w, "All fields are required", http.StatusBadRequest)
		return
	}
	if !emailPattern.MatchString(registerRequest.Email) {
		http.Error(w, "Invalid email", http.StatusBadRequest)
		return
	}
	if len(registerRequest.Username) < 3 || len(registerRequest.Username) > 20 {
		http.Error(w, "Username must be between 3 and 20 characters", http.StatusBadRequest)
		return
	}
	if !usernamePattern.MatchString(registerRequest.Username) {
		http.Error(w, "Username may only contain letters, numbers and underscores", http.StatusBadRequest)
		return
	}
	if len(registerRequest.Password) < 6 {
		http.Error(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	if _, err := h.gw.UserByEmail(r.Context(), registerRequest.Email); err == nil {
		http.Error(w, "Email is already registered", http.StatusConflict)
		return
	} else if !errors.Is(err, gateway.ErrNotFound) {
		log.Printf("Error checking email: %v", err)
		http.Error(w, "Error registering user", http.StatusInternalServerError)
		return
	}

	if _, err := h.gw.UserByUsername(r.Context(), registerRequest.Username); err == nil {
		http.Error(w, "Username is already taken", http.StatusConflict)
		return
	} else if !errors.Is(err, gateway.ErrNotFound) {
		log.Printf("Error checking username: %v", err)
		http.Error(w, "Error registering user", http.StatusInternalServerError)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registerRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Name:         registerRequest.Name,
		Username:     registerRequest.Username,
		Email:        registerRequest.Email,
		PasswordHash: string(passwordHash),
		Provider:     "credentials",
	}
	if err := h.gw.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, gateway.ErrDuplicate) {
			http.Error(w, "Email or username is already in use", http.StatusConflict)
			return
		}
		log.Printf("Error creating user: %v", err)
		http.Error(w, "Error registering user", http.StatusInternalServerError)
		return
	}

	token, err := utils.GenerateToken(user.ID, tokenTTL)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"token":   token,
		"user":    toUserResponse(&user),
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if loginRequest.Email == "" || loginRequest.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.gw.UserByEmail(r.Context(), loginRequest.Email)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Printf("Error querying user: %v", err)
		http.Error(w, "Error logging in", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(loginRequest.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateToken(user.ID, tokenTTL)
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"token":   token,
		"user":    toUserResponse(user),
	})
}

// HandleMe returns the identity the bearer token decodes to.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.gw.UserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Printf("Error querying user %s: %v", userID, err)
		http.Error(w, "Error retrieving user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}
