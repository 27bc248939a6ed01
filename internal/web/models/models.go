package models

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type CreateAlertRequest struct {
	AlertType  string `json:"alert_type" binding:"required"`
	Severity   string `json:"severity" binding:"required"`
	StationID  int    `json:"station_id" binding:"required"`
	Message    string `json:"message" binding:"required"`
	AutoNotify *bool  `json:"auto_notify"`
}

type ResolveAlertRequest struct {
	ResolvedBy string `json:"resolved_by"`
}

type ToggleAutoControlRequest struct {
	StationID int   `json:"estacion_id" binding:"required"`
	Enabled   *bool `json:"enabled" binding:"required"`
}

type ManualControlRequest struct {
	PumpID int    `json:"bomba_id" binding:"required"`
	Action string `json:"action" binding:"required"`
	User   string `json:"user"`
}

type ThresholdUpsertRequest struct {
	ID            int      `json:"id"`
	StationID     *int     `json:"estacion_id"`
	ParameterName string   `json:"nombre_parametro"`
	MinValue      *float64 `json:"valor_minimo"`
	MaxValue      *float64 `json:"valor_maximo"`
	AlertLevel    string   `json:"nivel_alerta"`
	Description   string   `json:"descripcion"`
	Active        *bool    `json:"activo"`
}
