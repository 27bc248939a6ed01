package web

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhpulgarinb/estacion-bombeo-iot/auth"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/alerts"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/control"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/db"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/ingest"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/api"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/web/middleware"
)

type WebServer struct {
	router *gin.Engine
}

func NewWebServer(pgPool *pgxpool.Pool, dbConn *db.DB, dispatcher *alerts.Dispatcher, runner *control.Runner, actuator control.Actuator, ingestService *ingest.Service, cache api.ReadingCache, JWTSecret string) *WebServer {
	router := gin.Default()
	router.Use(middleware.RequestID())

	authModule := auth.NewAuthModule(pgPool, JWTSecret)
	middlewareManager := middleware.NewMiddlewareManager(pgPool, authModule)

	api.RegisterAuthRoutes(router, authModule, middlewareManager)
	api.RegisterIngestionRoutes(router, ingestService)
	api.RegisterAlertRoutes(router, middlewareManager, dbConn, dispatcher)
	api.RegisterControlRoutes(router, middlewareManager, dbConn, runner, actuator, cache)
	api.RegisterThresholdRoutes(router, middlewareManager, dbConn)
	api.RegisterStationRoutes(router, middlewareManager, dbConn)

	return &WebServer{router: router}
}

func (ws *WebServer) Start(addr string) {
	ws.router.Run(addr)
}
