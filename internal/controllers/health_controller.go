package controllers

import (
	"context"
	"net/http"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/app"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/dtos"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{
		app: app,
	}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	// Check database connectivity when running on the postgres backend.
	if c.app.DB != nil {
		if err := c.app.DB.Ping(context.Background()); err != nil {
			utils.Logger.WithError(err).Error("Database unreachable")
			utils.RespondErrorWithCode(
				w,
				http.StatusServiceUnavailable,
				utils.ErrCodeInternal,
				"Database unreachable",
				err,
			)
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}
