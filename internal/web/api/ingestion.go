package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/ingest"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// Ingestion routes are device-facing: ESP32 field sensors without MQTT
// push readings here over plain HTTP, so no auth middleware.
func RegisterIngestionRoutes(r *gin.Engine, service *ingest.Service) {
	api := r.Group("/api")
	{
		api.POST("/water-level", func(c *gin.Context) {
			var reading models.WaterLevel
			if err := c.ShouldBindJSON(&reading); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := service.IngestWaterLevel(c, &reading); err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"message": "Water level received", "id": reading.ID})
		})

		api.POST("/meteorology", func(c *gin.Context) {
			var reading models.MeteorologicalReading
			if err := c.ShouldBindJSON(&reading); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := service.IngestMeteorological(c, &reading); err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"message": "Meteorological data received", "id": reading.ID})
		})

		api.POST("/pump/telemetry", func(c *gin.Context) {
			var telemetry models.PumpTelemetry
			if err := c.ShouldBindJSON(&telemetry); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := service.IngestPumpTelemetry(c, &telemetry); err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"message": "Pump telemetry received", "id": telemetry.ID})
		})
	}
}
