// Package scheduler triggers the periodic control cycle by enqueueing
// a task on the configured cron expression.
package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/taskqueue"
)

// Scheduler manages time-based triggers
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("SCHEDULER: Cron scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("SCHEDULER: Cron scheduler stopped")
}

// AddJob adds a cron job and returns the entry ID
func (s *Scheduler) AddJob(spec string, fn func()) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, fn)
}

// ScheduleControlCycle registers the periodic control cycle trigger
func (s *Scheduler) ScheduleControlCycle(cronExpr string) error {
	entryID, err := s.AddJob(cronExpr, func() {
		log.Printf("SCHEDULER: disparando ciclo de control")
		if err := taskqueue.EnqueueControlCycle(); err != nil {
			log.Printf("SCHEDULER: error encolando ciclo de control: %v", err)
		}
	})
	if err != nil {
		log.Printf("SCHEDULER: expresión cron inválida %q: %v", cronExpr, err)
		return err
	}
	log.Printf("SCHEDULER: ciclo de control programado con cron %q (entry ID: %d)", cronExpr, entryID)
	return nil
}
