// Package ingest receives field telemetry, persists it, refreshes the
// latest-reading cache and feeds the threshold alert pipeline. The same
// service backs both the MQTT subscriber and the HTTP ingestion routes.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/threshold"
)

// Reading kinds, also the Redis cache key suffix and MQTT subtopic
const (
	KindWaterLevel     = "nivel"
	KindMeteorological = "meteorologia"
	KindTelemetry      = "telemetria"
)

// Store persists incoming readings
type Store interface {
	InsertWaterLevel(ctx context.Context, r *models.WaterLevel) error
	InsertMeteorological(ctx context.Context, r *models.MeteorologicalReading) error
	InsertPumpTelemetry(ctx context.Context, t *models.PumpTelemetry) error
}

// AlertCreator raises alerts for threshold violations
type AlertCreator interface {
	Create(ctx context.Context, alertType string, severity models.Severity, stationID int, message string, autoNotify bool) (*models.Alert, error)
}

// Cache keeps the latest reading per station and kind
type Cache interface {
	Store(ctx context.Context, kind string, stationID int, payload []byte)
}

// Service handles one incoming reading end to end: persist, cache,
// evaluate thresholds, alert. Threshold evaluation runs after the
// insert, a violation never rejects the reading.
type Service struct {
	store     Store
	cache     Cache
	evaluator *threshold.Evaluator
	alerts    AlertCreator
}

// NewService creates the ingestion service
func NewService(store Store, cache Cache, evaluator *threshold.Evaluator, alerts AlertCreator) *Service {
	return &Service{store: store, cache: cache, evaluator: evaluator, alerts: alerts}
}

// IngestWaterLevel stores a water level reading and checks its bounds
func (s *Service) IngestWaterLevel(ctx context.Context, r *models.WaterLevel) error {
	if r.StationID == 0 {
		return fmt.Errorf("lectura de nivel sin estacion_id")
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	if err := s.store.InsertWaterLevel(ctx, r); err != nil {
		return fmt.Errorf("guardar nivel de estación %d: %w", r.StationID, err)
	}
	s.cacheReading(ctx, KindWaterLevel, r.StationID, r)

	s.checkThreshold(ctx, r.StationID, "WATER_LEVEL", "water_level", r.LevelM)
	return nil
}

// IngestMeteorological stores a weather sample and checks precipitation
func (s *Service) IngestMeteorological(ctx context.Context, r *models.MeteorologicalReading) error {
	if r.StationID == 0 {
		return fmt.Errorf("lectura meteorológica sin estacion_id")
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	if err := s.store.InsertMeteorological(ctx, r); err != nil {
		return fmt.Errorf("guardar datos meteorológicos de estación %d: %w", r.StationID, err)
	}
	s.cacheReading(ctx, KindMeteorological, r.StationID, r)

	if r.PrecipitationMM > 0 {
		s.checkThreshold(ctx, r.StationID, "HIGH_PRECIPITATION", "precipitacion_mm", r.PrecipitationMM)
	}
	return nil
}

// IngestPumpTelemetry stores a pump sample and checks the critical
// pump parameters (motor temperature, inlet and outlet pressure).
func (s *Service) IngestPumpTelemetry(ctx context.Context, t *models.PumpTelemetry) error {
	if t.PumpID == 0 {
		return fmt.Errorf("telemetría de bomba sin bomba_id")
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	if err := s.store.InsertPumpTelemetry(ctx, t); err != nil {
		return fmt.Errorf("guardar telemetría de bomba %d: %w", t.PumpID, err)
	}
	s.cacheReading(ctx, KindTelemetry, t.PumpID, t)

	checks := []struct {
		param string
		value *float64
	}{
		{"temperatura_motor_c", t.MotorTempC},
		{"presion_entrada_bar", &t.InletPressureBar},
		{"presion_salida_bar", &t.OutletPressBar},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		alertType := "BOMBA_" + strings.ToUpper(c.param)
		s.checkThreshold(ctx, t.PumpID, alertType, c.param, *c.value)
	}
	return nil
}

func (s *Service) cacheReading(ctx context.Context, kind string, stationID int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.cache.Store(ctx, kind, stationID, payload)
}

// checkThreshold evaluates one parameter and raises an alert on
// violation. Evaluation errors are logged, never returned: ingestion
// already succeeded by the time bounds are checked.
func (s *Service) checkThreshold(ctx context.Context, stationID int, alertType, param string, value float64) {
	violation, err := s.evaluator.Evaluate(ctx, param, value)
	if err != nil {
		log.Printf("INGEST: error evaluando umbral %s para estación %d: %v", param, stationID, err)
		return
	}
	if violation == nil {
		return
	}
	if _, err := s.alerts.Create(ctx, alertType, violation.AlertLevel, stationID, violation.Message, true); err != nil {
		log.Printf("INGEST: error creando alerta %s para estación %d: %v", alertType, stationID, err)
	}
}
