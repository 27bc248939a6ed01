package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/db"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/middleware"
)

func RegisterStationRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB) {
	group := r.Group("/api/stations")
	group.Use(middleware.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			activeOnly := c.DefaultQuery("active_only", "true") == "true"

			stations, err := dbConn.AllStations(c)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch stations"})
				return
			}
			if activeOnly {
				filtered := make([]models.Station, 0, len(stations))
				for _, s := range stations {
					if s.Active {
						filtered = append(filtered, s)
					}
				}
				stations = filtered
			}
			c.JSON(200, gin.H{"success": true, "count": len(stations), "stations": stations})
		})
	}
}
