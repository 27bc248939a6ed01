package control

import (
	"context"
	"fmt"
	"log"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// Alert types raised for automatic control actions
const (
	AlertTypeAutoStart = "AUTO_CONTROL_START"
	AlertTypeAutoStop  = "AUTO_CONTROL_STOP"
)

// ActuationLogger appends every START/STOP to the control log together
// with its causal inputs and raises a LOW informational alert so the
// action reaches the notification pipeline.
type ActuationLogger struct {
	store    Store
	notifier Notifier
}

// NewActuationLogger creates the audit logger
func NewActuationLogger(store Store, notifier Notifier) *ActuationLogger {
	return &ActuationLogger{store: store, notifier: notifier}
}

// Record persists the control log entry and raises the informational
// alert. A persistence failure is fatal to the operation; an alert
// failure is logged only, the actuation already happened.
func (l *ActuationLogger) Record(ctx context.Context, station *models.Station, action models.Action, reason string, in Inputs, motorTemp *float64) error {
	entry := &models.ControlLog{
		StationID:    station.ID,
		PumpID:       station.ID,
		Action:       action,
		Reason:       reason,
		WaterLevelM:  in.WaterLevel,
		RainfallMM:   in.Rainfall2h,
		TariffPeriod: in.Tariff,
		MotorTempC:   motorTemp,
	}
	if err := l.store.InsertControlLog(ctx, entry); err != nil {
		return fmt.Errorf("registrar log de control de estación %d: %w", station.ID, err)
	}

	alertType := AlertTypeAutoStart
	verb := "iniciada"
	if action == models.ActionStop {
		alertType = AlertTypeAutoStop
		verb = "detenida"
	}
	message := fmt.Sprintf("Bomba %s automáticamente. Razón: %s", verb, reason)

	if _, err := l.notifier.Create(ctx, alertType, models.SeverityLow, station.ID, message, true); err != nil {
		log.Printf("CONTROL: error creando alerta informativa para estación %d: %v", station.ID, err)
	}
	return nil
}
