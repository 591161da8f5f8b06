package admin

import (
	"net/http"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/handler"
	"github.com/clubhaus/backoffice/internal/service"
)

// BroadcastHandler accepts channel announcement requests.
type BroadcastHandler struct {
	broadcast *service.BroadcastService
}

// NewBroadcastHandler creates a new BroadcastHandler.
func NewBroadcastHandler(broadcast *service.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{broadcast: broadcast}
}

// Create handles POST /admin/broadcasts.
func (h *BroadcastHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.BroadcastRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.broadcast.Request(r.Context(), req); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
