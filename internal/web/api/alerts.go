package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/alerts"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/db"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/middleware"
	webModels "github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/models"
)

func RegisterAlertRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, dispatcher *alerts.Dispatcher) {
	group := r.Group("/api/alerts")
	group.Use(middleware.RequireAuth())
	{
		group.POST("", func(c *gin.Context) {
			var req webModels.CreateAlertRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			autoNotify := true
			if req.AutoNotify != nil {
				autoNotify = *req.AutoNotify
			}
			alert, err := dispatcher.Create(c, req.AlertType, models.Severity(req.Severity), req.StationID, req.Message, autoNotify)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"success": true, "alert_id": alert.ID, "message": "Alert created successfully"})
		})

		group.GET("/active", func(c *gin.Context) {
			active, err := dbConn.ActiveAlerts(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch alerts"})
				return
			}
			if stationID, err := strconv.Atoi(c.Query("station_id")); err == nil {
				filtered := active[:0]
				for _, a := range active {
					if a.StationID == stationID {
						filtered = append(filtered, a)
					}
				}
				active = filtered
			}
			c.JSON(200, gin.H{"success": true, "count": len(active), "alerts": active})
		})

		group.PUT("/:id/resolve", func(c *gin.Context) {
			alertID, err := strconv.Atoi(c.Param("id"))
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid alert id"})
				return
			}
			var req webModels.ResolveAlertRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				req.ResolvedBy = ""
			}
			if req.ResolvedBy == "" {
				req.ResolvedBy = "Sistema"
			}
			ok, err := dispatcher.Resolve(c, alertID, req.ResolvedBy)
			if err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			if !ok {
				c.JSON(404, gin.H{"success": false, "error": "Alert not found or already resolved"})
				return
			}
			c.JSON(200, gin.H{"success": true, "message": "Alert resolved"})
		})
	}
}
