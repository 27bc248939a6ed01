package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// StationByID fetches a station, nil when it does not exist
func (d *DB) StationByID(ctx context.Context, id int) (*models.Station, error) {
	var s models.Station
	err := d.pool.QueryRow(ctx,
		`SELECT id, nombre, COALESCE(ubicacion, ''), latitud, longitud, COALESCE(tipo_estacion, ''),
		        activo, control_automatico_habilitado, fecha_creacion
		 FROM iot_estacion_monitoreo WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Location, &s.Latitude, &s.Longitude, &s.StationType,
			&s.Active, &s.ControlEnabled, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ControlStations lists the stations eligible for the automatic
// control cycle.
func (d *DB) ControlStations(ctx context.Context) ([]models.Station, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, nombre, COALESCE(ubicacion, ''), latitud, longitud, COALESCE(tipo_estacion, ''),
		        activo, control_automatico_habilitado, fecha_creacion
		 FROM iot_estacion_monitoreo
		 WHERE activo AND control_automatico_habilitado
		 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Location, &s.Latitude, &s.Longitude, &s.StationType,
			&s.Active, &s.ControlEnabled, &s.CreatedAt); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// AllStations lists every station
func (d *DB) AllStations(ctx context.Context) ([]models.Station, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, nombre, COALESCE(ubicacion, ''), latitud, longitud, COALESCE(tipo_estacion, ''),
		        activo, control_automatico_habilitado, fecha_creacion
		 FROM iot_estacion_monitoreo ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Location, &s.Latitude, &s.Longitude, &s.StationType,
			&s.Active, &s.ControlEnabled, &s.CreatedAt); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// SetStationControl toggles automatic control for a station
func (d *DB) SetStationControl(ctx context.Context, stationID int, enabled bool) (bool, error) {
	tag, err := d.pool.Exec(ctx,
		"UPDATE iot_estacion_monitoreo SET control_automatico_habilitado = $1, fecha_actualizacion = NOW() WHERE id = $2",
		enabled, stationID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// LatestWaterLevel returns the most recent level reading for a
// station, nil when none exists yet.
func (d *DB) LatestWaterLevel(ctx context.Context, stationID int) (*float64, error) {
	var level float64
	err := d.pool.QueryRow(ctx,
		"SELECT nivel_m FROM iot_nivel_agua WHERE estacion_id = $1 ORDER BY fecha_hora DESC LIMIT 1",
		stationID).Scan(&level)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// RainfallSum returns the accumulated precipitation over the last N
// hours, zero when there are no samples.
func (d *DB) RainfallSum(ctx context.Context, stationID int, hours int) (float64, error) {
	var sum float64
	err := d.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(precipitacion_mm), 0)
		 FROM iot_datos_meteorologicos
		 WHERE estacion_id = $1 AND fecha_hora >= NOW() - make_interval(hours => $2)`,
		stationID, hours).Scan(&sum)
	return sum, err
}

// LatestPumpTelemetry returns the most recent telemetry record for a
// pump, nil when none exists.
func (d *DB) LatestPumpTelemetry(ctx context.Context, pumpID int) (*models.PumpTelemetry, error) {
	var t models.PumpTelemetry
	err := d.pool.QueryRow(ctx,
		`SELECT id, bomba_id, en_marcha, caudal_m3h, presion_entrada_bar, presion_salida_bar,
		        consumo_energia_kw, temperatura_motor_c, horas_operacion, fecha_hora, COALESCE(dispositivo_origen, '')
		 FROM iot_telemetria_bomba WHERE bomba_id = $1 ORDER BY fecha_hora DESC LIMIT 1`,
		pumpID).
		Scan(&t.ID, &t.PumpID, &t.IsRunning, &t.FlowRateM3h, &t.InletPressureBar, &t.OutletPressBar,
			&t.PowerKW, &t.MotorTempC, &t.OperatingHours, &t.Timestamp, &t.SourceDev)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ActiveThresholds fetches the active thresholds for a parameter name.
// Ordered by id so duplicate configuration rows resolve the same way
// every time.
func (d *DB) ActiveThresholds(ctx context.Context, parameterName string) ([]models.Threshold, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, estacion_id, nombre_parametro, valor_minimo, valor_maximo,
		        nivel_alerta, COALESCE(descripcion, ''), activo, fecha_actualizacion
		 FROM iot_umbral_alerta WHERE nombre_parametro = $1 AND activo ORDER BY id`,
		parameterName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanThresholds(rows)
}

// StationThresholds fetches the active thresholds that apply to one
// station: rows bound to the station plus global rows.
func (d *DB) StationThresholds(ctx context.Context, stationID int) ([]models.Threshold, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, estacion_id, nombre_parametro, valor_minimo, valor_maximo,
		        nivel_alerta, COALESCE(descripcion, ''), activo, fecha_actualizacion
		 FROM iot_umbral_alerta
		 WHERE activo AND (estacion_id IS NULL OR estacion_id = $1) ORDER BY id`,
		stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanThresholds(rows)
}

// AllThresholds lists every threshold row
func (d *DB) AllThresholds(ctx context.Context) ([]models.Threshold, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, estacion_id, nombre_parametro, valor_minimo, valor_maximo,
		        nivel_alerta, COALESCE(descripcion, ''), activo, fecha_actualizacion
		 FROM iot_umbral_alerta ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanThresholds(rows)
}

func scanThresholds(rows pgx.Rows) ([]models.Threshold, error) {
	var thresholds []models.Threshold
	for rows.Next() {
		var t models.Threshold
		if err := rows.Scan(&t.ID, &t.StationID, &t.ParameterName, &t.MinValue, &t.MaxValue,
			&t.AlertLevel, &t.Description, &t.Active, &t.UpdatedAt); err != nil {
			return nil, err
		}
		thresholds = append(thresholds, t)
	}
	return thresholds, rows.Err()
}

// UpsertThreshold updates an existing threshold row or inserts a new
// one. Threshold uniqueness per active parameter is enforced by a
// partial unique index on (nombre_parametro) WHERE activo.
func (d *DB) UpsertThreshold(ctx context.Context, t *models.Threshold) error {
	if t.ID != 0 {
		_, err := d.pool.Exec(ctx,
			`UPDATE iot_umbral_alerta
			 SET valor_minimo = $1, valor_maximo = $2, nivel_alerta = $3, activo = $4, fecha_actualizacion = NOW()
			 WHERE id = $5`,
			t.MinValue, t.MaxValue, t.AlertLevel, t.Active, t.ID)
		return err
	}
	return d.pool.QueryRow(ctx,
		`INSERT INTO iot_umbral_alerta (estacion_id, nombre_parametro, valor_minimo, valor_maximo, nivel_alerta, descripcion, activo)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		t.StationID, t.ParameterName, t.MinValue, t.MaxValue, t.AlertLevel, t.Description, t.Active).
		Scan(&t.ID)
}

// InsertAlert persists a new alert and fills its id and timestamp
func (d *DB) InsertAlert(ctx context.Context, alert *models.Alert) error {
	return d.pool.QueryRow(ctx,
		`INSERT INTO iot_alerta_sistema (estacion_id, tipo_alerta, severidad, descripcion)
		 VALUES ($1, $2, $3, $4) RETURNING id, fecha_hora`,
		alert.StationID, alert.AlertType, alert.Severity, alert.Message).
		Scan(&alert.ID, &alert.CreatedAt)
}

// SetAlertNotified records which channels delivered the alert
func (d *DB) SetAlertNotified(ctx context.Context, alertID int, via []string) error {
	_, err := d.pool.Exec(ctx,
		"UPDATE iot_alerta_sistema SET canales_notificacion = $1, notificacion_enviada = $2 WHERE id = $3",
		strings.Join(via, ","), len(via) > 0, alertID)
	return err
}

// ResolveAlert marks an alert resolved. Returns false when the alert
// does not exist or is already resolved; the resolution timestamp of a
// resolved alert is never touched again.
func (d *DB) ResolveAlert(ctx context.Context, alertID int, resolvedBy string) (bool, error) {
	tag, err := d.pool.Exec(ctx,
		`UPDATE iot_alerta_sistema
		 SET esta_resuelto = true, fecha_resolucion = NOW(), resuelto_por = $1
		 WHERE id = $2 AND NOT esta_resuelto`,
		resolvedBy, alertID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ActiveAlerts lists unresolved alerts, newest first
func (d *DB) ActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, COALESCE(estacion_id, 0), tipo_alerta, severidad, descripcion,
		        COALESCE(canales_notificacion, ''), esta_resuelto, fecha_resolucion,
		        COALESCE(resuelto_por, ''), fecha_hora
		 FROM iot_alerta_sistema WHERE NOT esta_resuelto ORDER BY fecha_hora DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var via string
		if err := rows.Scan(&a.ID, &a.StationID, &a.AlertType, &a.Severity, &a.Message,
			&via, &a.Resolved, &a.ResolvedAt, &a.ResolvedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		if via != "" {
			a.NotifiedVia = strings.Split(via, ",")
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// severityColumns maps a severity to the contact preference column
var severityColumns = map[models.Severity]string{
	models.SeverityCritical: "recibir_critico",
	models.SeverityHigh:     "recibir_alto",
	models.SeverityMedium:   "recibir_medio",
	models.SeverityLow:      "recibir_bajo",
}

// ActiveContacts lists the active contacts that opted in for the given
// severity.
func (d *DB) ActiveContacts(ctx context.Context, severity models.Severity) ([]models.Contact, error) {
	column, ok := severityColumns[severity]
	if !ok {
		return nil, fmt.Errorf("severidad desconocida: %q", severity)
	}

	rows, err := d.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, nombre, COALESCE(cargo, ''), COALESCE(correo, ''), COALESCE(telefono, ''),
		        COALESCE(numero_whatsapp, ''), recibir_critico, recibir_alto, recibir_medio, recibir_bajo, activo
		 FROM iot_contacto_notificacion WHERE activo AND %s ORDER BY id`, column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Role, &c.Email, &c.Phone, &c.WhatsAppNumber,
			&c.ReceiveCritical, &c.ReceiveHigh, &c.ReceiveMedium, &c.ReceiveLow, &c.Active); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// InsertControlLog appends one automatic control log entry
func (d *DB) InsertControlLog(ctx context.Context, entry *models.ControlLog) error {
	return d.pool.QueryRow(ctx,
		`INSERT INTO iot_log_control_automatico
		   (estacion_id, bomba_id, accion, razon, nivel_agua_m, precipitacion_mm, periodo_tarifa, temperatura_motor_c)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, fecha_hora`,
		entry.StationID, entry.PumpID, entry.Action, entry.Reason,
		entry.WaterLevelM, entry.RainfallMM, entry.TariffPeriod, entry.MotorTempC).
		Scan(&entry.ID, &entry.Timestamp)
}

// RecentControlLogs lists the latest control log entries for a station
func (d *DB) RecentControlLogs(ctx context.Context, stationID, limit int) ([]models.ControlLog, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, estacion_id, bomba_id, accion, COALESCE(razon, ''), nivel_agua_m,
		        COALESCE(precipitacion_mm, 0), COALESCE(periodo_tarifa, ''), temperatura_motor_c, fecha_hora
		 FROM iot_log_control_automatico WHERE estacion_id = $1 ORDER BY fecha_hora DESC LIMIT $2`,
		stationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ControlLog
	for rows.Next() {
		var e models.ControlLog
		if err := rows.Scan(&e.ID, &e.StationID, &e.PumpID, &e.Action, &e.Reason, &e.WaterLevelM,
			&e.RainfallMM, &e.TariffPeriod, &e.MotorTempC, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertWaterLevel stores one water level reading
func (d *DB) InsertWaterLevel(ctx context.Context, r *models.WaterLevel) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	return d.pool.QueryRow(ctx,
		`INSERT INTO iot_nivel_agua (estacion_id, nivel_m, volumen_m3, tendencia, fecha_hora, dispositivo_origen)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		r.StationID, r.LevelM, r.VolumeM3, r.Trend, r.Timestamp, r.SourceDev).
		Scan(&r.ID)
}

// InsertMeteorological stores one weather sample
func (d *DB) InsertMeteorological(ctx context.Context, r *models.MeteorologicalReading) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	return d.pool.QueryRow(ctx,
		`INSERT INTO iot_datos_meteorologicos
		   (estacion_id, temperatura_c, humedad_porcentaje, precipitacion_mm, velocidad_viento_kmh,
		    presion_atmosferica_hpa, fecha_hora, dispositivo_origen)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		r.StationID, r.TemperatureC, r.HumidityPct, r.PrecipitationMM, r.WindSpeedKmh,
		r.PressureHPa, r.Timestamp, r.SourceDev).
		Scan(&r.ID)
}

// InsertPumpTelemetry stores one pump telemetry record
func (d *DB) InsertPumpTelemetry(ctx context.Context, t *models.PumpTelemetry) error {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	return d.pool.QueryRow(ctx,
		`INSERT INTO iot_telemetria_bomba
		   (bomba_id, en_marcha, caudal_m3h, presion_entrada_bar, presion_salida_bar,
		    consumo_energia_kw, temperatura_motor_c, horas_operacion, fecha_hora, dispositivo_origen)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		t.PumpID, t.IsRunning, t.FlowRateM3h, t.InletPressureBar, t.OutletPressBar,
		t.PowerKW, t.MotorTempC, t.OperatingHours, t.Timestamp, t.SourceDev).
		Scan(&t.ID)
}
