// Package admin holds the back-office management endpoints: rank ladder,
// reward packs, invite tokens, bot configuration, stats and broadcasts.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/handler"
	"github.com/clubhaus/backoffice/internal/service"
)

// RanksHandler manages the rank ladder.
type RanksHandler struct {
	catalog *service.CatalogService
}

// NewRanksHandler creates a new RanksHandler.
func NewRanksHandler(catalog *service.CatalogService) *RanksHandler {
	return &RanksHandler{catalog: catalog}
}

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid " + name)
	}
	return id, nil
}

// List handles GET /admin/ranks.
func (h *RanksHandler) List(w http.ResponseWriter, r *http.Request) {
	ranks, err := h.catalog.Ranks(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, ranks)
}

type createRankInput struct {
	Name       string     `json:"name"`
	MinPoints  int        `json:"min_points"`
	RewardNote string     `json:"reward_note,omitempty"`
	BonusDays  int        `json:"bonus_days,omitempty"`
	PackID     *uuid.UUID `json:"pack_id,omitempty"`
}

// Create handles POST /admin/ranks.
func (h *RanksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createRankInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	rank, err := h.catalog.CreateRank(r.Context(), input.Name, input.MinPoints, input.RewardNote, input.BonusDays, input.PackID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, rank)
}

type attachRewardsInput struct {
	BonusDays *int       `json:"bonus_days,omitempty"`
	PackID    *uuid.UUID `json:"pack_id,omitempty"`
}

// AttachRewards handles PATCH /admin/ranks/{id}/rewards.
func (h *RanksHandler) AttachRewards(w http.ResponseWriter, r *http.Request) {
	rankID, err := idParam(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input attachRewardsInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	rank, err := h.catalog.AttachRewards(r.Context(), rankID, input.BonusDays, input.PackID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, rank)
}

// Delete handles DELETE /admin/ranks/{id}.
func (h *RanksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rankID, err := idParam(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := h.catalog.DeleteRank(r.Context(), rankID); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
