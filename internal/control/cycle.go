package control

import (
	"context"
	"log"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// StationLocker is the single-flight guard around one station's
// decision+actuation. Overlapping cycles must not double-START or
// double-STOP the same pump.
type StationLocker interface {
	Acquire(ctx context.Context, stationID int) (bool, error)
	Release(ctx context.Context, stationID int)
}

// Runner executes one control cycle over every station with automatic
// control enabled and active. Stations are isolated: an error in one
// becomes an ERROR result and the cycle continues.
type Runner struct {
	store  Store
	engine *Engine
	locker StationLocker
}

// NewRunner creates the cycle runner
func NewRunner(store Store, engine *Engine, locker StationLocker) *Runner {
	return &Runner{store: store, engine: engine, locker: locker}
}

// RunCycle evaluates every eligible station once and returns the full
// result list. It fails only when the station list itself cannot be
// read.
func (r *Runner) RunCycle(ctx context.Context) ([]models.CycleResult, error) {
	stations, err := r.store.ControlStations(ctx)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		log.Println("CONTROL: sin estaciones con control automático habilitado")
		return nil, nil
	}

	results := make([]models.CycleResult, 0, len(stations))
	for _, station := range stations {
		results = append(results, r.runStation(ctx, station))
	}

	log.Printf("CONTROL: ciclo completado, %d estaciones procesadas", len(results))
	return results, nil
}

// RunStation evaluates a single station on demand with the same lock
// guard the periodic cycle uses
func (r *Runner) RunStation(ctx context.Context, stationID int) (models.CycleResult, error) {
	station, err := r.store.StationByID(ctx, stationID)
	if err != nil {
		return models.CycleResult{}, err
	}
	if station == nil {
		return models.CycleResult{}, ErrStationNotFound
	}
	return r.runStation(ctx, *station), nil
}

func (r *Runner) runStation(ctx context.Context, station models.Station) models.CycleResult {
	acquired, err := r.locker.Acquire(ctx, station.ID)
	if err != nil {
		return models.CycleResult{
			StationID:   station.ID,
			StationName: station.Name,
			Action:      models.ActionError,
			Reason:      err.Error(),
		}
	}
	if !acquired {
		return models.CycleResult{
			StationID:   station.ID,
			StationName: station.Name,
			Action:      models.ActionNoChange,
			Reason:      "evaluación en curso, ciclo omitido",
		}
	}
	defer r.locker.Release(ctx, station.ID)

	result, err := r.engine.EvaluateStation(ctx, station.ID)
	if err != nil {
		log.Printf("CONTROL: error en estación %d: %v", station.ID, err)
		return models.CycleResult{
			StationID:   station.ID,
			StationName: station.Name,
			Action:      models.ActionError,
			Reason:      err.Error(),
		}
	}
	return result
}
