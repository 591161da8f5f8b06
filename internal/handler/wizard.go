package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/wizard"
)

// WizardHandler drives admin dialogues through the wizard runner. The
// chat gateway relays messages to and from the admin conversation.
type WizardHandler struct {
	runner *wizard.Runner
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(runner *wizard.Runner) *WizardHandler {
	return &WizardHandler{runner: runner}
}

type wizardInput struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text,omitempty"`
}

// Start handles POST /wizard/{flow}/start.
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	var input wizardInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.UserID <= 0 {
		RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}

	res, err := h.runner.Start(r.Context(), input.UserID, chi.URLParam(r, "flow"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// Input handles POST /wizard/input.
func (h *WizardHandler) Input(w http.ResponseWriter, r *http.Request) {
	var input wizardInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.UserID <= 0 {
		RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}

	res, err := h.runner.Input(r.Context(), input.UserID, input.Text)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// Cancel handles POST /wizard/cancel.
func (h *WizardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var input wizardInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.runner.Cancel(r.Context(), input.UserID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
