package handlers

import (
	"net/http"

	"github.com/isdelr/hoot-be/internal/models"
	"github.com/isdelr/hoot-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles sign-up and sign-in.
type AuthHandler struct {
	service services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// CredentialsPayload defines the structure for sign-up and sign-in requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by both sign-up and sign-in.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// SignUp handles new user registration.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	user, token, err := h.service.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeServiceError(w, r, err, "Failed to register user", map[string]string{"username": payload.Username})
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	writeJSON(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// SignIn handles user authentication and token issuance.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	user, token, err := h.service.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeServiceError(w, r, err, "Failed authentication attempt", map[string]string{"username": payload.Username})
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}
