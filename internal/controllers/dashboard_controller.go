package controllers

import (
	"net/http"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/services"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

type DashboardController struct {
	dashboard services.DashboardService
}

func NewDashboardController(dashboard services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// DashboardHandler => GET /api/v1/portal/dashboard
func (c *DashboardController) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	nav, err := c.dashboard.Navigation(sess)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, nav)
}

// StatsHandler => GET /api/v1/portal/stats
func (c *DashboardController) StatsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	stats, err := c.dashboard.Stats(r.Context(), sess)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}
