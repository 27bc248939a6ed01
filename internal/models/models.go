package models

import "time"

// Severity is the alert severity level
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Valid reports whether s is one of the known severity levels
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// TariffPeriod is the time-of-day energy pricing regime
type TariffPeriod string

const (
	TariffPeak     TariffPeriod = "PEAK"
	TariffStandard TariffPeriod = "STANDARD"
	TariffValley   TariffPeriod = "VALLEY"
)

// Action is the outcome of one controller invocation for a station
type Action string

const (
	ActionStart    Action = "START"
	ActionStop     Action = "STOP"
	ActionNoChange Action = "NO_CHANGE"
	ActionError    Action = "ERROR"

	// Operator override through the API, outside the automatic cascade
	ActionManualOverride Action = "MANUAL_OVERRIDE"
)

// Station represents a monitoring station (iot_estacion_monitoreo)
type Station struct {
	ID             int       `json:"id"`
	Name           string    `json:"nombre"`
	Location       string    `json:"ubicacion"`
	Latitude       *float64  `json:"latitud"`
	Longitude      *float64  `json:"longitud"`
	StationType    string    `json:"tipo_estacion"`
	Active         bool      `json:"activo"`
	ControlEnabled bool      `json:"control_automatico_habilitado"`
	CreatedAt      time.Time `json:"fecha_creacion"`
}

// WaterLevel is a water level reading (iot_nivel_agua)
type WaterLevel struct {
	ID        int       `json:"id"`
	StationID int       `json:"estacion_id"`
	LevelM    float64   `json:"nivel_m"`
	VolumeM3  *float64  `json:"volumen_m3"`
	Trend     string    `json:"tendencia"`
	Timestamp time.Time `json:"fecha_hora"`
	SourceDev string    `json:"dispositivo_origen"`
}

// MeteorologicalReading is one weather station sample (iot_datos_meteorologicos)
type MeteorologicalReading struct {
	ID              int       `json:"id"`
	StationID       int       `json:"estacion_id"`
	TemperatureC    *float64  `json:"temperatura_c"`
	HumidityPct     *float64  `json:"humedad_porcentaje"`
	PrecipitationMM float64   `json:"precipitacion_mm"`
	WindSpeedKmh    float64   `json:"velocidad_viento_kmh"`
	PressureHPa     *float64  `json:"presion_atmosferica_hpa"`
	Timestamp       time.Time `json:"fecha_hora"`
	SourceDev       string    `json:"dispositivo_origen"`
}

// PumpTelemetry is one pump telemetry record (iot_telemetria_bomba).
// The current pump state is derived from the latest record, it is never
// stored separately.
type PumpTelemetry struct {
	ID               int       `json:"id"`
	PumpID           int       `json:"bomba_id"`
	IsRunning        bool      `json:"en_marcha"`
	FlowRateM3h      float64   `json:"caudal_m3h"`
	InletPressureBar float64   `json:"presion_entrada_bar"`
	OutletPressBar   float64   `json:"presion_salida_bar"`
	PowerKW          float64   `json:"consumo_energia_kw"`
	MotorTempC       *float64  `json:"temperatura_motor_c"`
	OperatingHours   float64   `json:"horas_operacion"`
	Timestamp        time.Time `json:"fecha_hora"`
	SourceDev        string    `json:"dispositivo_origen"`
}

// Threshold is a configured min/max bound for a named parameter
// (iot_umbral_alerta). Min/Max are nil when the bound is not set.
type Threshold struct {
	ID            int       `json:"id"`
	StationID     *int      `json:"estacion_id"`
	ParameterName string    `json:"nombre_parametro"`
	MinValue      *float64  `json:"valor_minimo"`
	MaxValue      *float64  `json:"valor_maximo"`
	AlertLevel    Severity  `json:"nivel_alerta"`
	Description   string    `json:"descripcion"`
	Active        bool      `json:"activo"`
	UpdatedAt     time.Time `json:"fecha_actualizacion"`
}

// Alert is a system alert (iot_alerta_sistema)
type Alert struct {
	ID          int        `json:"id"`
	StationID   int        `json:"estacion_id"`
	AlertType   string     `json:"tipo_alerta"`
	Severity    Severity   `json:"severidad"`
	Message     string     `json:"mensaje"`
	NotifiedVia []string   `json:"canales_notificacion"`
	Resolved    bool       `json:"esta_resuelto"`
	ResolvedAt  *time.Time `json:"fecha_resolucion"`
	ResolvedBy  string     `json:"resuelto_por"`
	CreatedAt   time.Time  `json:"fecha_hora"`
}

// Contact is a notification recipient (iot_contacto_notificacion).
// Selection predicate for an alert is Active plus the preference flag
// matching the alert severity.
type Contact struct {
	ID              int    `json:"id"`
	Name            string `json:"nombre"`
	Role            string `json:"cargo"`
	Email           string `json:"correo"`
	Phone           string `json:"telefono"`
	WhatsAppNumber  string `json:"numero_whatsapp"`
	ReceiveCritical bool   `json:"recibir_critico"`
	ReceiveHigh     bool   `json:"recibir_alto"`
	ReceiveMedium   bool   `json:"recibir_medio"`
	ReceiveLow      bool   `json:"recibir_bajo"`
	Active          bool   `json:"activo"`
}

// Receives reports whether the contact opted in for the given severity
func (c Contact) Receives(sev Severity) bool {
	if !c.Active {
		return false
	}
	switch sev {
	case SeverityCritical:
		return c.ReceiveCritical
	case SeverityHigh:
		return c.ReceiveHigh
	case SeverityMedium:
		return c.ReceiveMedium
	case SeverityLow:
		return c.ReceiveLow
	}
	return false
}

// ControlLog is an append-only automatic control log row
// (iot_log_control_automatico)
type ControlLog struct {
	ID           int          `json:"id"`
	StationID    int          `json:"estacion_id"`
	PumpID       int          `json:"bomba_id"`
	Action       Action       `json:"accion"`
	Reason       string       `json:"razon"`
	WaterLevelM  *float64     `json:"nivel_agua_m"`
	RainfallMM   float64      `json:"precipitacion_mm"`
	TariffPeriod TariffPeriod `json:"periodo_tarifa"`
	MotorTempC   *float64     `json:"temperatura_motor_c"`
	Timestamp    time.Time    `json:"fecha_hora"`
}

// CycleResult is the outcome of one station inside a control cycle
type CycleResult struct {
	StationID   int    `json:"station_id"`
	StationName string `json:"station_name"`
	Action      Action `json:"action"`
	Reason      string `json:"reason"`
}
