package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/db"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/middleware"
	webModels "github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/models"
)

func RegisterThresholdRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB) {
	group := r.Group("/api/control/thresholds")
	group.Use(middleware.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			thresholds, err := dbConn.AllThresholds(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch thresholds"})
				return
			}
			c.JSON(200, gin.H{"success": true, "count": len(thresholds), "thresholds": thresholds})
		})

		group.PUT("", func(c *gin.Context) {
			var req webModels.ThresholdUpsertRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if req.ID == 0 && req.ParameterName == "" {
				c.JSON(400, gin.H{"error": "nombre_parametro required for new thresholds"})
				return
			}

			level := models.SeverityMedium
			if req.AlertLevel != "" {
				level = models.Severity(req.AlertLevel)
				if !level.Valid() {
					c.JSON(400, gin.H{"error": "Invalid nivel_alerta"})
					return
				}
			}
			active := true
			if req.Active != nil {
				active = *req.Active
			}

			threshold := &models.Threshold{
				ID:            req.ID,
				StationID:     req.StationID,
				ParameterName: req.ParameterName,
				MinValue:      req.MinValue,
				MaxValue:      req.MaxValue,
				AlertLevel:    level,
				Description:   req.Description,
				Active:        active,
				UpdatedAt:     time.Now(),
			}
			if err := dbConn.UpsertThreshold(c, threshold); err != nil {
				c.JSON(500, gin.H{"error": "Failed to update threshold"})
				return
			}
			c.JSON(200, gin.H{"success": true, "message": "Threshold updated", "threshold": threshold})
		})
	}
}
