package admin

import (
	"net/http"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/handler"
	"github.com/clubhaus/backoffice/internal/service"
)

// ConfigHandler manages the bot configuration row.
type ConfigHandler struct {
	config *service.ConfigService
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(config *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{config: config}
}

// Get handles GET /admin/config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.Get(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, cfg)
}

// Update handles PUT /admin/config.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var cfg domain.BotConfig
	if err := handler.DecodeJSON(r, &cfg); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	cfg.ID = 1

	if err := h.config.Update(r.Context(), &cfg); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, &cfg)
}
