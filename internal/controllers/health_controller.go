package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/app"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/dtos"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

// HealthController reports liveness and, when sessions live in Postgres,
// database reachability.
type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app}
}

// HealthCheckHandler => GET /health
func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if c.app != nil && c.app.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.app.DB.Ping(ctx); err != nil {
			utils.Logger.WithError(err).Error("portal DB unreachable")
			utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Database unreachable", nil, err)
			return
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}
