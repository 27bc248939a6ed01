package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/control"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/db"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/ingest"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/taskqueue"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/middleware"
	webModels "github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/models"
)

// ReadingCache is the latest-reading lookup the status endpoint uses
type ReadingCache interface {
	Latest(ctx context.Context, kind string, stationID int) []byte
}

func RegisterControlRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, runner *control.Runner, actuator control.Actuator, cache ReadingCache) {
	group := r.Group("/api/control")
	group.Use(middleware.RequireAuth())
	{
		group.POST("/run-cycle", func(c *gin.Context) {
			results, err := runner.RunCycle(c)
			if err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"success": true, "message": "Control cycle completed", "results": results})
		})

		group.POST("/station/:id", func(c *gin.Context) {
			stationID, err := strconv.Atoi(c.Param("id"))
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid station id"})
				return
			}
			if err := taskqueue.EnqueueStationControl(stationID); err != nil {
				c.JSON(500, gin.H{"error": "Failed to enqueue station evaluation"})
				return
			}
			c.JSON(202, gin.H{"success": true, "estacion_id": stationID})
		})

		group.GET("/status", func(c *gin.Context) {
			stationID, err := strconv.Atoi(c.Query("station_id"))
			if err != nil {
				c.JSON(400, gin.H{"error": "station_id required"})
				return
			}
			station, err := dbConn.StationByID(c, stationID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch station"})
				return
			}
			if station == nil {
				c.JSON(404, gin.H{"error": "Station not found"})
				return
			}

			logs, err := dbConn.RecentControlLogs(c, stationID, 1)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch control log"})
				return
			}
			var lastLog *models.ControlLog
			if len(logs) > 0 {
				lastLog = &logs[0]
			}

			var telemetry json.RawMessage
			if raw := cache.Latest(c, ingest.KindTelemetry, stationID); raw != nil {
				telemetry = raw
			}

			c.JSON(200, gin.H{
				"success":                       true,
				"estacion_id":                   station.ID,
				"nombre":                        station.Name,
				"control_automatico_habilitado": station.ControlEnabled,
				"ultimo_log":                    lastLog,
				"ultima_telemetria":             telemetry,
			})
		})

		group.POST("/auto", func(c *gin.Context) {
			var req webModels.ToggleAutoControlRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			ok, err := dbConn.SetStationControl(c, req.StationID, *req.Enabled)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to update station"})
				return
			}
			if !ok {
				c.JSON(404, gin.H{"error": "Station not found"})
				return
			}
			state := "disabled"
			if *req.Enabled {
				state = "enabled"
			}
			c.JSON(200, gin.H{
				"success":                       true,
				"message":                       fmt.Sprintf("Automatic control %s", state),
				"estacion_id":                   req.StationID,
				"control_automatico_habilitado": *req.Enabled,
			})
		})

		group.POST("/manual", func(c *gin.Context) {
			var req webModels.ManualControlRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			var action models.Action
			switch req.Action {
			case "INICIAR":
				action = models.ActionStart
			case "DETENER":
				action = models.ActionStop
			default:
				c.JSON(400, gin.H{"error": "Action must be INICIAR or DETENER"})
				return
			}
			user := req.User
			if user == "" {
				user = c.GetString("user_id")
			}

			entry := &models.ControlLog{
				StationID: req.PumpID,
				PumpID:    req.PumpID,
				Action:    models.ActionManualOverride,
				Reason:    fmt.Sprintf("Manual %s by %s", req.Action, user),
			}
			if err := dbConn.InsertControlLog(c, entry); err != nil {
				c.JSON(500, gin.H{"error": "Failed to log manual override"})
				return
			}

			actuator.SendCommand(req.PumpID, action)

			c.JSON(200, gin.H{
				"success":  true,
				"message":  fmt.Sprintf("Manual %s command sent", req.Action),
				"bomba_id": req.PumpID,
				"action":   req.Action,
			})
		})
	}
}
