// Package routes wires the menu Service into a gin.Engine. It is a stand-in
// for the out-of-scope full handler layer: one illustrative route that
// translates the service's outcomes into HTTP status codes, plus the health
// and metrics endpoints an operator needs to run this in front of a load
// balancer.
package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/claremont-dine/menu-api/internal/menu"
	"github.com/claremont-dine/menu-api/internal/menu/service"
)

// Setup registers the menu routes, /healthz, and /metrics on r.
func Setup(r *gin.Engine, svc *service.Service, log *zap.Logger) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/menus/:hall_id/:date/:meal", func(c *gin.Context) {
		hallID := c.Param("hall_id")
		date := c.Param("date")
		meal := c.Param("meal")

		result, err := svc.GetMenu(c.Request.Context(), hallID, date, meal)
		if err != nil {
			writeError(c, log, hallID, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"hall_id":    result.HallID,
			"date":       result.Date,
			"meal":       result.Meal,
			"is_stale":   result.IsStale,
			"fetched_at": result.FetchedAt,
		})
	})
}

// writeError maps the menu package's typed errors to HTTP status codes.
func writeError(c *gin.Context, log *zap.Logger, hallID string, err error) {
	var unknownHall *menu.UnknownHallError
	var invalidDate *menu.InvalidDateError

	switch {
	case errors.As(err, &unknownHall):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("menu lookup failed", zap.String("hall_id", hallID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "menu data unavailable"})
	}
}
