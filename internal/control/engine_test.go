package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

type fakeStore struct {
	stations   map[int]*models.Station
	levels     map[int]*float64
	rain       map[int]float64
	telemetry  map[int]*models.PumpTelemetry
	thresholds map[int][]models.Threshold
	logs       []models.ControlLog
	logErr     error
	stationErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stations:   make(map[int]*models.Station),
		levels:     make(map[int]*float64),
		rain:       make(map[int]float64),
		telemetry:  make(map[int]*models.PumpTelemetry),
		thresholds: make(map[int][]models.Threshold),
	}
}

func (s *fakeStore) StationByID(_ context.Context, id int) (*models.Station, error) {
	if s.stationErr != nil {
		return nil, s.stationErr
	}
	return s.stations[id], nil
}

func (s *fakeStore) ControlStations(_ context.Context) ([]models.Station, error) {
	var out []models.Station
	for _, st := range s.stations {
		if st != nil && st.Active && st.ControlEnabled {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (s *fakeStore) LatestWaterLevel(_ context.Context, id int) (*float64, error) {
	return s.levels[id], nil
}

func (s *fakeStore) RainfallSum(_ context.Context, id, _ int) (float64, error) {
	return s.rain[id], nil
}

func (s *fakeStore) LatestPumpTelemetry(_ context.Context, id int) (*models.PumpTelemetry, error) {
	return s.telemetry[id], nil
}

func (s *fakeStore) StationThresholds(_ context.Context, id int) ([]models.Threshold, error) {
	return s.thresholds[id], nil
}

func (s *fakeStore) InsertControlLog(_ context.Context, entry *models.ControlLog) error {
	if s.logErr != nil {
		return s.logErr
	}
	s.logs = append(s.logs, *entry)
	return nil
}

type fakeActuator struct {
	commands []struct {
		pumpID int
		action models.Action
	}
}

func (a *fakeActuator) SendCommand(pumpID int, action models.Action) {
	a.commands = append(a.commands, struct {
		pumpID int
		action models.Action
	}{pumpID, action})
}

type fakeNotifier struct {
	alerts []models.Alert
	err    error
}

func (n *fakeNotifier) Create(_ context.Context, alertType string, sev models.Severity, stationID int, msg string, _ bool) (*models.Alert, error) {
	if n.err != nil {
		return nil, n.err
	}
	a := models.Alert{AlertType: alertType, Severity: sev, StationID: stationID, Message: msg}
	n.alerts = append(n.alerts, a)
	return &a, nil
}

// offPeak pins the engine clock inside the STANDARD tariff band so
// rule 4 stays out of the way.
func offPeak(e *Engine) {
	e.now = func() time.Time {
		return time.Date(2026, 2, 20, 14, 0, 0, 0, time.Local)
	}
}

func controlStation(id int) *models.Station {
	return &models.Station{ID: id, Name: "Estación Río León", Active: true, ControlEnabled: true}
}

func TestEvaluateStationStartTransition(t *testing.T) {
	store := newFakeStore()
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(0.3)
	store.telemetry[1] = &models.PumpTelemetry{PumpID: 1, IsRunning: false, InletPressureBar: 2.5}

	actuator := &fakeActuator{}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, actuator, notifier)
	offPeak(engine)

	result, err := engine.EvaluateStation(context.Background(), 1)
	if err != nil {
		t.Fatalf("EvaluateStation: %v", err)
	}
	if result.Action != models.ActionStart {
		t.Fatalf("action = %s, want START", result.Action)
	}

	if len(actuator.commands) != 1 || actuator.commands[0].action != models.ActionStart {
		t.Errorf("actuator commands = %+v, want one START", actuator.commands)
	}
	if len(store.logs) != 1 {
		t.Fatalf("control log entries = %d, want 1", len(store.logs))
	}
	entry := store.logs[0]
	if entry.Action != models.ActionStart || entry.WaterLevelM == nil || *entry.WaterLevelM != 0.3 {
		t.Errorf("log entry = %+v", entry)
	}
	if entry.TariffPeriod != models.TariffStandard {
		t.Errorf("tariff in log = %s, want STANDARD", entry.TariffPeriod)
	}
	if len(notifier.alerts) != 1 || notifier.alerts[0].AlertType != AlertTypeAutoStart {
		t.Errorf("alerts = %+v, want one AUTO_CONTROL_START", notifier.alerts)
	}
	if notifier.alerts[0].Severity != models.SeverityLow {
		t.Errorf("informational alert severity = %s, want LOW", notifier.alerts[0].Severity)
	}
}

func TestEvaluateStationStopTransition(t *testing.T) {
	store := newFakeStore()
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(3.5)
	store.telemetry[1] = &models.PumpTelemetry{PumpID: 1, IsRunning: true, InletPressureBar: 2.5}

	actuator := &fakeActuator{}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, actuator, notifier)
	offPeak(engine)

	result, err := engine.EvaluateStation(context.Background(), 1)
	if err != nil {
		t.Fatalf("EvaluateStation: %v", err)
	}
	if result.Action != models.ActionStop {
		t.Fatalf("action = %s, want STOP", result.Action)
	}
	if len(notifier.alerts) != 1 || notifier.alerts[0].AlertType != AlertTypeAutoStop {
		t.Errorf("alerts = %+v, want one AUTO_CONTROL_STOP", notifier.alerts)
	}
}

func TestEvaluateStationNoChangeSkipsActuationAndLog(t *testing.T) {
	store := newFakeStore()
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(1.5) // hold band
	store.telemetry[1] = &models.PumpTelemetry{PumpID: 1, IsRunning: true, InletPressureBar: 2.5}

	actuator := &fakeActuator{}
	engine := NewEngine(store, actuator, &fakeNotifier{})
	offPeak(engine)

	result, err := engine.EvaluateStation(context.Background(), 1)
	if err != nil {
		t.Fatalf("EvaluateStation: %v", err)
	}
	if result.Action != models.ActionNoChange {
		t.Fatalf("action = %s, want NO_CHANGE", result.Action)
	}
	if len(actuator.commands) != 0 {
		t.Errorf("NO_CHANGE must not actuate, got %+v", actuator.commands)
	}
	if len(store.logs) != 0 {
		t.Errorf("NO_CHANGE must not be logged, got %d entries", len(store.logs))
	}
}

func TestEvaluateStationConfigurationErrors(t *testing.T) {
	store := newFakeStore()
	disabled := controlStation(2)
	disabled.ControlEnabled = false
	store.stations[2] = disabled

	engine := NewEngine(store, &fakeActuator{}, &fakeNotifier{})
	offPeak(engine)

	if _, err := engine.EvaluateStation(context.Background(), 99); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("missing station error = %v, want ErrStationNotFound", err)
	}
	if _, err := engine.EvaluateStation(context.Background(), 2); !errors.Is(err, ErrControlDisabled) {
		t.Errorf("disabled station error = %v, want ErrControlDisabled", err)
	}
}

func TestEvaluateStationNoTelemetryAssumesStopped(t *testing.T) {
	store := newFakeStore()
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(1.5)
	// no telemetry: pump treated as stopped with zero pressure

	engine := NewEngine(store, &fakeActuator{}, &fakeNotifier{})
	offPeak(engine)

	result, err := engine.EvaluateStation(context.Background(), 1)
	if err != nil {
		t.Fatalf("EvaluateStation: %v", err)
	}
	if result.Action != models.ActionNoChange {
		t.Errorf("action = %s, want NO_CHANGE for a stopped pump in the hold band", result.Action)
	}
}

func TestEvaluateStationLogFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.stations[1] = controlStation(1)
	store.levels[1] = fptr(0.3)
	store.telemetry[1] = &models.PumpTelemetry{PumpID: 1, InletPressureBar: 2.5}
	store.logErr = errors.New("commit error")

	engine := NewEngine(store, &fakeActuator{}, &fakeNotifier{})
	offPeak(engine)

	if _, err := engine.EvaluateStation(context.Background(), 1); err == nil {
		t.Fatal("expected error when the control log cannot be written")
	}
}
