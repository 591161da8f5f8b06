package admin

import (
	"net/http"
	"strconv"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/handler"
	"github.com/clubhaus/backoffice/internal/subscription"
)

// TokensHandler manages VIP invite tokens.
type TokensHandler struct {
	subs *subscription.Service
}

// NewTokensHandler creates a new TokensHandler.
func NewTokensHandler(subs *subscription.Service) *TokensHandler {
	return &TokensHandler{subs: subs}
}

type generateTokenInput struct {
	AdminID       int64 `json:"admin_id"`
	DurationHours int   `json:"duration_hours"`
}

// Generate handles POST /admin/tokens.
func (h *TokensHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input generateTokenInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	token, err := h.subs.GenerateToken(r.Context(), input.AdminID, input.DurationHours)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, token)
}

// List handles GET /admin/tokens.
func (h *TokensHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tokens, err := h.subs.ListTokens(r.Context(), limit)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, tokens)
}
