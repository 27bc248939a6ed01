package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhpulgarinb/estacion-bombeo-iot/auth"
)

type MiddlewareManager struct {
	pgClient *pgxpool.Pool
	auth     *auth.AuthModule
}

func NewMiddlewareManager(pgClient *pgxpool.Pool, auth *auth.AuthModule) *MiddlewareManager {
	return &MiddlewareManager{
		pgClient: pgClient,
		auth:     auth,
	}
}
