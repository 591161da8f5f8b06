package handler

import (
	"net/http"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/subscription"
)

// SubscriptionHandler serves VIP subscription endpoints.
type SubscriptionHandler struct {
	subs *subscription.Service
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subs *subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

type redeemInput struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// Redeem handles POST /subscriptions/redeem.
func (h *SubscriptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var input redeemInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.Token == "" || input.UserID <= 0 {
		RespondError(w, domain.ErrValidation("token and user_id are required"))
		return
	}

	sub, err := h.subs.Redeem(r.Context(), input.Token, input.UserID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, sub)
}

// GetStatus handles GET /subscriptions/{userID}.
func (h *SubscriptionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	sub, err := h.subs.Status(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sub)
}
