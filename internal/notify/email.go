// Package notify implements the outbound notification channels:
// transactional email (Brevo), WhatsApp Business and Twilio SMS. Every
// sender uses a bounded HTTP client and reports failure instead of
// hanging; a sender left unconfigured is permanently unavailable and
// every send on it fails.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/alerts"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

const sendTimeout = 10 * time.Second

var severityColors = map[models.Severity]string{
	models.SeverityCritical: "#dc2626",
	models.SeverityHigh:     "#f59e0b",
	models.SeverityMedium:   "#3b82f6",
	models.SeverityLow:      "#10b981",
}

// EmailSender delivers alerts through the Brevo transactional email API
type EmailSender struct {
	apiKey string
	sender string
	client *http.Client
	apiURL string
}

// NewEmailSender creates the email channel. Empty apiKey disables it.
func NewEmailSender(apiKey, senderEmail string) *EmailSender {
	return &EmailSender{
		apiKey: apiKey,
		sender: senderEmail,
		client: &http.Client{Timeout: sendTimeout},
		apiURL: "https://api.brevo.com/v3/smtp/email",
	}
}

func (s *EmailSender) Name() string { return alerts.ChannelEmail }

func (s *EmailSender) Available() bool { return s.apiKey != "" }

// Send posts a formatted HTML alert email, returns true on acceptance
func (s *EmailSender) Send(ctx context.Context, to string, alert *models.Alert) bool {
	if !s.Available() {
		return false
	}

	color, ok := severityColors[alert.Severity]
	if !ok {
		color = "#6b7280"
	}

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<div style="background: %s; color: white; padding: 20px;"><h2 style="margin: 0;">ALERTA %s</h2></div>
<div style="background: #f8f9fa; padding: 20px; border: 1px solid #e5e7eb;">
<p><strong>Tipo:</strong> %s</p>
<p><strong>Estación:</strong> %d</p>
<p><strong>Fecha:</strong> %s</p>
<p><strong>Mensaje:</strong></p>
<p style="background: white; padding: 15px; border-left: 4px solid %s;">%s</p>
<p style="font-size: 12px; color: #6b7280;">Sistema de Monitoreo Automatizado - Promotora Palmera de Antioquia S.A.S.<br>
Este es un mensaje automático, no responder.</p>
</div></div>`,
		color, alert.Severity, alert.AlertType, alert.StationID,
		alert.CreatedAt.Format("02/01/2006 15:04:05"), color, alert.Message)

	payload := map[string]interface{}{
		"sender":      map[string]string{"email": s.sender},
		"to":          []map[string]string{{"email": to}},
		"subject":     fmt.Sprintf("[%s] %s - Estación %d", alert.Severity, alert.AlertType, alert.StationID),
		"htmlContent": html,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("NOTIFY: error enviando email a %s: %v", to, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
