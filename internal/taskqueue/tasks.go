package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/control"
)

// Task types
const (
	TypeControlCycle   = "control:ciclo"
	TypeControlStation = "control:estacion"
)

// Global runner instance - initialized by the main application before
// workers start
var controlRunner *control.Runner

// SetGlobalInstances sets the control runner used by task handlers
func SetGlobalInstances(runner *control.Runner) {
	controlRunner = runner
}

// StationTaskPayload for single-station tasks
type StationTaskPayload struct {
	StationID int `json:"estacion_id"`
}

// EnqueueControlCycle enqueues one full control cycle
func EnqueueControlCycle() error {
	task := asynq.NewTask(TypeControlCycle, nil)
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(60*time.Second))
	if err != nil {
		log.Printf("TASKQUEUE: error encolando ciclo de control: %v", err)
		return err
	}
	log.Printf("TASKQUEUE: ciclo de control encolado (task %s)", info.ID)
	return nil
}

// EnqueueStationControl enqueues the evaluation of a single station
func EnqueueStationControl(stationID int) error {
	payload, _ := json.Marshal(StationTaskPayload{StationID: stationID})
	task := asynq.NewTask(TypeControlStation, payload)
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(10*time.Second))
	if err != nil {
		log.Printf("TASKQUEUE: error encolando control de estación %d: %v", stationID, err)
		return err
	}
	log.Printf("TASKQUEUE: control de estación %d encolado (task %s)", stationID, info.ID)
	return nil
}

// controlCycleTask runs the full periodic cycle
func controlCycleTask(ctx context.Context, t *asynq.Task) error {
	if controlRunner == nil {
		return fmt.Errorf("control runner not initialized")
	}
	log.Printf("TASKQUEUE: ejecutando ciclo de control")
	results, err := controlRunner.RunCycle(ctx)
	if err != nil {
		log.Printf("TASKQUEUE: ciclo de control falló: %v", err)
		return err
	}
	for _, r := range results {
		log.Printf("TASKQUEUE: estación %d (%s): %s - %s", r.StationID, r.StationName, r.Action, r.Reason)
	}
	return nil
}

// controlStationTask evaluates one station on demand
func controlStationTask(ctx context.Context, t *asynq.Task) error {
	if controlRunner == nil {
		return fmt.Errorf("control runner not initialized")
	}
	var payload StationTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("payload de tarea inválido: %w", err)
	}

	result, err := controlRunner.RunStation(ctx, payload.StationID)
	if err != nil {
		log.Printf("TASKQUEUE: control de estación %d falló: %v", payload.StationID, err)
		return err
	}
	log.Printf("TASKQUEUE: estación %d: %s - %s", result.StationID, result.Action, result.Reason)
	return nil
}
