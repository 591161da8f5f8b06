package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/clubhaus/backoffice/internal/bus"
	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/guard"
)

// EngagementHandler accepts engagement webhooks from the chat gateway and
// feeds them to the event bus.
type EngagementHandler struct {
	bus     *bus.Bus
	limiter *guard.RateLimiter
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(b *bus.Bus, limiter *guard.RateLimiter) *EngagementHandler {
	return &EngagementHandler{bus: b, limiter: limiter}
}

// PostReaction handles POST /events/reactions. The event is accepted and
// processed asynchronously; the gateway gets a 202 either way.
func (h *EngagementHandler) PostReaction(w http.ResponseWriter, r *http.Request) {
	var evt domain.ReactionEvent
	if err := DecodeJSON(r, &evt); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if evt.UserID <= 0 || evt.ChannelID == 0 || evt.Tag == "" {
		RespondError(w, domain.ErrValidation("user_id, channel_id and tag are required"))
		return
	}

	key := fmt.Sprintf("reactions:%d", evt.UserID)
	if res := h.limiter.Check(r.Context(), key); !res.Allowed {
		RespondJSON(w, http.StatusTooManyRequests, map[string]string{
			"code":    "RATE_LIMITED",
			"message": res.Reason,
		})
		return
	}

	// Handlers outlive the request; detach so writing the 202 does not
	// cancel the award mid-flight.
	h.bus.Publish(context.WithoutCancel(r.Context()), domain.EventReactionAdded, evt)
	RespondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
