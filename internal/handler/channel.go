package handler

import (
	"net/http"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/service"
)

// ChannelHandler serves free-channel access endpoints.
type ChannelHandler struct {
	channels *service.ChannelService
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(channels *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

type freeRequestInput struct {
	UserID int64 `json:"user_id"`
}

// RequestAccess handles POST /channels/free/requests.
func (h *ChannelHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var input freeRequestInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.UserID <= 0 {
		RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}

	req, err := h.channels.RequestAccess(r.Context(), input.UserID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, req)
}
