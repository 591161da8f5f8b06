package admin

import (
	"net/http"
	"strconv"

	"github.com/clubhaus/backoffice/internal/handler"
	"github.com/clubhaus/backoffice/internal/service"
)

// StatsHandler serves the admin dashboard.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Dashboard handles GET /admin/stats/dashboard.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("leaderboard"))

	overview, err := h.stats.Overview(r.Context(), size)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, overview)
}
