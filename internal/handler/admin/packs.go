package admin

import (
	"net/http"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/handler"
	"github.com/clubhaus/backoffice/internal/service"
)

// PacksHandler manages reward packs and their media items.
type PacksHandler struct {
	catalog *service.CatalogService
}

// NewPacksHandler creates a new PacksHandler.
func NewPacksHandler(catalog *service.CatalogService) *PacksHandler {
	return &PacksHandler{catalog: catalog}
}

// List handles GET /admin/packs.
func (h *PacksHandler) List(w http.ResponseWriter, r *http.Request) {
	packs, err := h.catalog.Packs(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, packs)
}

type createPackInput struct {
	Name string `json:"name"`
}

// Create handles POST /admin/packs.
func (h *PacksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createPackInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	pack, err := h.catalog.CreatePack(r.Context(), input.Name)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, pack)
}

// Items handles GET /admin/packs/{id}/items.
func (h *PacksHandler) Items(w http.ResponseWriter, r *http.Request) {
	packID, err := idParam(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	items, err := h.catalog.PackItems(r.Context(), packID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, items)
}

type addItemInput struct {
	FileID    string           `json:"file_id"`
	UniqueID  string           `json:"unique_id"`
	MediaType domain.MediaType `json:"media_type"`
}

// AddItem handles POST /admin/packs/{id}/items.
func (h *PacksHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	packID, err := idParam(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input addItemInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	item, err := h.catalog.AddPackItem(r.Context(), packID, input.FileID, input.UniqueID, input.MediaType)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, item)
}

// Delete handles DELETE /admin/packs/{id}.
func (h *PacksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	packID, err := idParam(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := h.catalog.DeletePack(r.Context(), packID); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
