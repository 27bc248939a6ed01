// Package alerts implements alert creation, severity-routed multi
// channel notification and alert lifecycle handling.
package alerts

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// Store is the persistence surface the dispatcher needs
type Store interface {
	InsertAlert(ctx context.Context, alert *models.Alert) error
	SetAlertNotified(ctx context.Context, alertID int, via []string) error
	ResolveAlert(ctx context.Context, alertID int, resolvedBy string) (bool, error)
	ActiveContacts(ctx context.Context, severity models.Severity) ([]models.Contact, error)
}

// Dispatcher orchestrates alert persistence and notification fan-out.
// It is constructed with its collaborators, there is no shared global
// instance.
type Dispatcher struct {
	store  Store
	router *Router
}

// NewDispatcher creates a dispatcher over a store and a channel router
func NewDispatcher(store Store, router *Router) *Dispatcher {
	return &Dispatcher{store: store, router: router}
}

// Create persists a new alert and, when autoNotify is set, immediately
// notifies the configured contacts. Notification failures never fail
// the call: once the alert row exists the alert is valid, an empty
// canales_notificacion marks undelivered alerts for the operators.
func (d *Dispatcher) Create(ctx context.Context, alertType string, severity models.Severity, stationID int, message string, autoNotify bool) (*models.Alert, error) {
	if !severity.Valid() {
		return nil, fmt.Errorf("severidad desconocida: %q", severity)
	}

	alert := &models.Alert{
		StationID: stationID,
		AlertType: alertType,
		Severity:  severity,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := d.store.InsertAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("registrar alerta %s: %w", alertType, err)
	}

	if autoNotify {
		d.Notify(ctx, alert)
	}

	return alert, nil
}

// Notify resolves recipients and channels for the alert severity and
// fans out to every (recipient, channel) pair with a populated contact
// method. Pairs run concurrently and independently: one failed send
// never blocks the others, and there is no retry within this call
// (at-least-attempt semantics). The set of channels with at least one
// successful delivery is persisted on the alert.
func (d *Dispatcher) Notify(ctx context.Context, alert *models.Alert) {
	contacts, err := d.store.ActiveContacts(ctx, alert.Severity)
	if err != nil {
		log.Printf("ALERTAS: error consultando contactos para alerta %d: %v", alert.ID, err)
		return
	}
	if len(contacts) == 0 {
		log.Printf("ALERTAS: sin contactos configurados para severidad %s (alerta %d)", alert.Severity, alert.ID)
		return
	}

	channels := d.router.ChannelsFor(alert.Severity)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered = make(map[string]bool)
	)

	for _, contact := range contacts {
		for _, ch := range channels {
			to := AddressFor(contact, ch.Name())
			if to == "" {
				continue
			}
			wg.Add(1)
			go func(ch Channel, to string) {
				defer wg.Done()
				if ch.Send(ctx, to, alert) {
					mu.Lock()
					delivered[ch.Name()] = true
					mu.Unlock()
				}
			}(ch, to)
		}
	}
	wg.Wait()

	alert.NotifiedVia = OrderNotified(delivered)
	if err := d.store.SetAlertNotified(ctx, alert.ID, alert.NotifiedVia); err != nil {
		log.Printf("ALERTAS: error guardando canales de alerta %d: %v", alert.ID, err)
		return
	}

	log.Printf("ALERTAS: alerta %d [%s] notificada via %v", alert.ID, alert.Severity, alert.NotifiedVia)
}

// Resolve marks an alert resolved. It is idempotent: resolving an
// already resolved or unknown alert returns false and changes nothing.
func (d *Dispatcher) Resolve(ctx context.Context, alertID int, resolvedBy string) (bool, error) {
	ok, err := d.store.ResolveAlert(ctx, alertID, resolvedBy)
	if err != nil {
		return false, fmt.Errorf("resolver alerta %d: %w", alertID, err)
	}
	return ok, nil
}
