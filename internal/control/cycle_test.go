package control

import (
	"context"
	"sort"
	"testing"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

type fakeLocker struct {
	held     map[int]bool
	acquired []int
	released []int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[int]bool)}
}

func (l *fakeLocker) Acquire(_ context.Context, stationID int) (bool, error) {
	if l.held[stationID] {
		return false, nil
	}
	l.acquired = append(l.acquired, stationID)
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, stationID int) {
	l.released = append(l.released, stationID)
}

func TestRunCycleIsolatesStationFailures(t *testing.T) {
	store := newFakeStore()

	// Station 1 evaluates normally.
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(0.3)
	store.telemetry[1] = &models.PumpTelemetry{PumpID: 1, InletPressureBar: 2.5}

	// Station 2 is listed for the cycle but its row is gone by the
	// time the engine re-reads it (configuration error mid-cycle).
	broken := controlStation(2)
	store.stations[2] = nil

	engine := NewEngine(store, &fakeActuator{}, &fakeNotifier{})
	offPeak(engine)
	runner := NewRunner(store, engine, newFakeLocker())

	results := runCycleWith(t, runner, []models.Station{*controlStation(1), *broken})

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	byStation := map[int]models.CycleResult{}
	for _, r := range results {
		byStation[r.StationID] = r
	}
	if byStation[1].Action != models.ActionStart {
		t.Errorf("station 1 action = %s, want START", byStation[1].Action)
	}
	if byStation[2].Action != models.ActionError {
		t.Errorf("station 2 action = %s, want ERROR", byStation[2].Action)
	}
}

// runCycleWith drives the runner's per-station path directly with a
// fixed station list, so tests control exactly what is iterated.
func runCycleWith(t *testing.T, r *Runner, stations []models.Station) []models.CycleResult {
	t.Helper()
	results := make([]models.CycleResult, 0, len(stations))
	for _, s := range stations {
		results = append(results, r.runStation(context.Background(), s))
	}
	return results
}

func TestRunCycleFull(t *testing.T) {
	store := newFakeStore()
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(1.5)
	store.telemetry[1] = &models.PumpTelemetry{PumpID: 1, IsRunning: false, InletPressureBar: 2.5}

	engine := NewEngine(store, &fakeActuator{}, &fakeNotifier{})
	offPeak(engine)
	locker := newFakeLocker()
	runner := NewRunner(store, engine, locker)

	results, err := runner.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Action != models.ActionNoChange {
		t.Errorf("action = %s, want NO_CHANGE", results[0].Action)
	}
	if len(locker.acquired) != 1 || len(locker.released) != 1 {
		t.Errorf("lock acquire/release = %d/%d, want 1/1", len(locker.acquired), len(locker.released))
	}
}

func TestRunCycleSkipsLockedStation(t *testing.T) {
	store := newFakeStore()
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(0.3)
	store.telemetry[1] = &models.PumpTelemetry{PumpID: 1, InletPressureBar: 2.5}

	actuator := &fakeActuator{}
	engine := NewEngine(store, actuator, &fakeNotifier{})
	offPeak(engine)

	locker := newFakeLocker()
	locker.held[1] = true // another cycle owns the station
	runner := NewRunner(store, engine, locker)

	results, err := runner.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Action != models.ActionNoChange {
		t.Errorf("locked station action = %s, want NO_CHANGE", results[0].Action)
	}
	if len(actuator.commands) != 0 {
		t.Errorf("locked station must not be actuated, got %+v", actuator.commands)
	}
	if len(locker.released) != 0 {
		t.Errorf("a lock that was never acquired must not be released")
	}
}

func TestRunCycleExcludesDisabledStations(t *testing.T) {
	store := newFakeStore()
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(1.5)
	store.telemetry[1] = &models.PumpTelemetry{PumpID: 1, InletPressureBar: 2.5}

	disabled := controlStation(2)
	disabled.ControlEnabled = false
	store.stations[2] = disabled

	inactive := controlStation(3)
	inactive.Active = false
	store.stations[3] = inactive

	engine := NewEngine(store, &fakeActuator{}, &fakeNotifier{})
	offPeak(engine)
	runner := NewRunner(store, engine, newFakeLocker())

	results, err := runner.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	var ids []int
	for _, r := range results {
		ids = append(ids, r.StationID)
	}
	sort.Ints(ids)
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("cycle iterated stations %v, want only [1]", ids)
	}
}
