package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/engine"
)

// ProfileHandler serves gamification profile endpoints.
type ProfileHandler struct {
	engine      *engine.Engine
	botUsername string
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(eng *engine.Engine, botUsername string) *ProfileHandler {
	return &ProfileHandler{engine: eng, botUsername: botUsername}
}

func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrValidation("invalid user id")
	}
	return id, nil
}

// GetProfile handles GET /profiles/{userID}.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	profile, err := h.engine.Profile(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// ClaimDaily handles POST /profiles/{userID}/daily.
func (h *ProfileHandler) ClaimDaily(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	res, err := h.engine.ClaimDaily(r.Context(), userID)
	if err != nil {
		if res != nil && res.Remaining > 0 {
			RespondJSON(w, http.StatusTooManyRequests, map[string]any{
				"code":              "COOLDOWN",
				"message":           "daily bonus already claimed",
				"remaining_seconds": int(res.Remaining.Seconds()),
			})
			return
		}
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// GetReferralLink handles GET /profiles/{userID}/referral-link.
func (h *ProfileHandler) GetReferralLink(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{
		"link": engine.ReferralLink(h.botUsername, userID),
	})
}

// ReferralRedirect handles GET /r/{userID}: a public share link that
// forwards visitors to the bot with the referrer's payload attached.
func (h *ProfileHandler) ReferralRedirect(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	http.Redirect(w, r, engine.ReferralLink(h.botUsername, userID), http.StatusFound)
}

type referralInput struct {
	RefereeID int64  `json:"referee_id"`
	Payload   string `json:"payload"`
}

// PostReferral handles POST /referrals: the gateway reports a user who
// joined through a referral deep link.
func (h *ProfileHandler) PostReferral(w http.ResponseWriter, r *http.Request) {
	var input referralInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.RefereeID <= 0 {
		RespondError(w, domain.ErrValidation("referee_id is required"))
		return
	}

	referrerID, err := engine.ParseReferralPayload(input.Payload)
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.engine.ProcessReferral(r.Context(), input.RefereeID, referrerID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]string{"status": "credited"})
}
