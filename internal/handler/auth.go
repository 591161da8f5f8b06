package handler

import (
	"net/http"

	"github.com/clubhaus/backoffice/internal/auth"
	"github.com/clubhaus/backoffice/internal/domain"
)

// AuthHandler serves admin authentication.
type AuthHandler struct {
	creds *auth.CredentialService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(creds *auth.CredentialService) *AuthHandler {
	return &AuthHandler{creds: creds}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input auth.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.Username == "" || input.Password == "" {
		RespondError(w, domain.ErrValidation("username and password are required"))
		return
	}

	result, err := h.creds.Login(r.Context(), input, ClientIP(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
