package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/alerts"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// WhatsAppSender delivers alerts through the WhatsApp Business API
type WhatsAppSender struct {
	apiURL  string
	token   string
	phoneID string
	client  *http.Client
}

// NewWhatsAppSender creates the WhatsApp channel. Empty apiURL or
// token disables it.
func NewWhatsAppSender(apiURL, token, phoneID string) *WhatsAppSender {
	return &WhatsAppSender{
		apiURL:  strings.TrimRight(apiURL, "/"),
		token:   token,
		phoneID: phoneID,
		client:  &http.Client{Timeout: sendTimeout},
	}
}

func (s *WhatsAppSender) Name() string { return alerts.ChannelWhatsApp }

func (s *WhatsAppSender) Available() bool { return s.apiURL != "" && s.token != "" }

// Send posts a text message to the contact's WhatsApp number
func (s *WhatsAppSender) Send(ctx context.Context, to string, alert *models.Alert) bool {
	if !s.Available() {
		return false
	}

	message := fmt.Sprintf("*ALERTA %s*\n\n*Tipo:* %s\n*Estación:* %d\n*Fecha:* %s\n\n*Mensaje:*\n%s\n\n_Sistema de Monitoreo PPA_",
		alert.Severity, alert.AlertType, alert.StationID,
		alert.CreatedAt.Format("02/01/2006 15:04:05"), alert.Message)

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                strings.TrimPrefix(to, "+"),
		"type":              "text",
		"text":              map[string]string{"body": message},
	}
	body, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/%s/messages", s.apiURL, s.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("NOTIFY: error enviando WhatsApp a %s: %v", to, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
