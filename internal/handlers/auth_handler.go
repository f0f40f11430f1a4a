package handlers

import (
	"net/http"
	"strings"

	"vocabtrainer/internal/security"
	"vocabtrainer/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService    *service.AuthService
	oauthProviders map[string]OAuthProvider
	stateSigner    *security.StateSigner
	redirectBase   string
}

// NewAuthHandler creates a new auth handler. redirectBase is the public base URL
// used to build OAuth callback URLs; empty derives it from the request.
func NewAuthHandler(authService *service.AuthService, oauthProviders map[string]OAuthProvider, stateSigner *security.StateSigner, redirectBase string) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		oauthProviders: oauthProviders,
		stateSigner:    stateSigner,
		redirectBase:   strings.TrimSpace(redirectBase),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates an account and logs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name); err != nil {
		respondServiceError(w, "Error registering learner", err)
		return
	}

	// Auto-login after registration
	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, "Error logging in after registration", err)
		return
	}
	respondJSON(w, http.StatusCreated, newAuthView(result))
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, "Error logging in", err)
		return
	}
	respondJSON(w, http.StatusOK, newAuthView(result))
}

// Logout revokes the session behind the caller's token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(GetSessionIDFromContext(r.Context())); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error logging out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated learner
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newLearnerView(GetLearnerFromContext(r.Context())))
}
