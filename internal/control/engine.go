package control

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/tariff"
)

// Configuration errors: they abort the station's evaluation but never
// the surrounding cycle.
var (
	ErrStationNotFound = errors.New("estación no encontrada")
	ErrControlDisabled = errors.New("control automático desactivado")
)

// Store is the persistence surface the controller reads from and the
// control log it appends to.
type Store interface {
	StationByID(ctx context.Context, id int) (*models.Station, error)
	ControlStations(ctx context.Context) ([]models.Station, error)
	LatestWaterLevel(ctx context.Context, stationID int) (*float64, error)
	RainfallSum(ctx context.Context, stationID int, hours int) (float64, error)
	LatestPumpTelemetry(ctx context.Context, pumpID int) (*models.PumpTelemetry, error)
	StationThresholds(ctx context.Context, stationID int) ([]models.Threshold, error)
	InsertControlLog(ctx context.Context, entry *models.ControlLog) error
}

// Actuator delivers START/STOP commands to the pump hardware. Commands
// are fire-and-forget: no confirmation is awaited.
type Actuator interface {
	SendCommand(pumpID int, action models.Action)
}

// Notifier raises alerts for control actions
type Notifier interface {
	Create(ctx context.Context, alertType string, severity models.Severity, stationID int, message string, autoNotify bool) (*models.Alert, error)
}

// Engine evaluates one station per invocation: it gathers the current
// readings, runs the decision cascade and actuates on state changes.
type Engine struct {
	store    Store
	actuator Actuator
	logger   *ActuationLogger
	now      func() time.Time
}

// NewEngine creates the controller
func NewEngine(store Store, actuator Actuator, notifier Notifier) *Engine {
	return &Engine{
		store:    store,
		actuator: actuator,
		logger:   NewActuationLogger(store, notifier),
		now:      time.Now,
	}
}

// EvaluateStation runs one decision for the station and executes the
// resulting action. The pump carries the station's id.
func (e *Engine) EvaluateStation(ctx context.Context, stationID int) (models.CycleResult, error) {
	station, err := e.store.StationByID(ctx, stationID)
	if err != nil {
		return models.CycleResult{}, fmt.Errorf("consultar estación %d: %w", stationID, err)
	}
	if station == nil {
		return models.CycleResult{}, fmt.Errorf("estación %d: %w", stationID, ErrStationNotFound)
	}
	if !station.ControlEnabled {
		return models.CycleResult{}, fmt.Errorf("estación %d: %w", stationID, ErrControlDisabled)
	}

	waterLevel, err := e.store.LatestWaterLevel(ctx, stationID)
	if err != nil {
		return models.CycleResult{}, fmt.Errorf("nivel de agua de estación %d: %w", stationID, err)
	}
	rain2h, err := e.store.RainfallSum(ctx, stationID, 2)
	if err != nil {
		return models.CycleResult{}, fmt.Errorf("precipitación 2h de estación %d: %w", stationID, err)
	}
	rain24h, err := e.store.RainfallSum(ctx, stationID, 24)
	if err != nil {
		return models.CycleResult{}, fmt.Errorf("precipitación 24h de estación %d: %w", stationID, err)
	}
	telemetry, err := e.store.LatestPumpTelemetry(ctx, stationID)
	if err != nil {
		return models.CycleResult{}, fmt.Errorf("telemetría de bomba %d: %w", stationID, err)
	}

	pumpRunning := false
	inletPressure := 0.0
	var motorTemp *float64
	if telemetry != nil {
		pumpRunning = telemetry.IsRunning
		inletPressure = telemetry.InletPressureBar
		motorTemp = telemetry.MotorTempC
	}

	rows, err := e.store.StationThresholds(ctx, stationID)
	if err != nil {
		return models.CycleResult{}, fmt.Errorf("umbrales de estación %d: %w", stationID, err)
	}
	thresholds := ResolveThresholds(rows)

	inputs := Inputs{
		WaterLevel:    waterLevel,
		Rainfall2h:    rain2h,
		Rainfall24h:   rain24h,
		Tariff:        tariff.At(e.now()),
		PumpRunning:   pumpRunning,
		InletPressure: inletPressure,
	}
	decision := Decide(inputs, thresholds)

	action := models.ActionNoChange
	switch {
	case decision.ShouldRun && !pumpRunning:
		action = models.ActionStart
	case !decision.ShouldRun && pumpRunning:
		action = models.ActionStop
	}

	if action != models.ActionNoChange {
		e.actuator.SendCommand(stationID, action)
		if err := e.logger.Record(ctx, station, action, decision.Reason, inputs, motorTemp); err != nil {
			return models.CycleResult{}, err
		}
		log.Printf("CONTROL: bomba %d %s - %s", stationID, action, decision.Reason)
	}

	return models.CycleResult{
		StationID:   station.ID,
		StationName: station.Name,
		Action:      action,
		Reason:      decision.Reason,
	}, nil
}
