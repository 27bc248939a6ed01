package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/alerts"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// SMSSender delivers alerts through the Twilio messages API
type SMSSender struct {
	accountSID string
	authToken  string
	from       string
	client     *http.Client
	apiBase    string
}

// NewSMSSender creates the SMS channel. Empty credentials disable it.
func NewSMSSender(accountSID, authToken, fromNumber string) *SMSSender {
	return &SMSSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       fromNumber,
		client:     &http.Client{Timeout: sendTimeout},
		apiBase:    "https://api.twilio.com/2010-04-01",
	}
}

func (s *SMSSender) Name() string { return alerts.ChannelSMS }

func (s *SMSSender) Available() bool { return s.accountSID != "" && s.authToken != "" }

// Send delivers a compact single-segment SMS, body capped at 100 runes
// of the alert message.
func (s *SMSSender) Send(ctx context.Context, to string, alert *models.Alert) bool {
	if !s.Available() {
		return false
	}

	message := alert.Message
	if runes := []rune(message); len(runes) > 100 {
		message = string(runes[:100])
	}
	body := fmt.Sprintf("[%s] %s - Estación %d: %s", alert.Severity, alert.AlertType, alert.StationID, message)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.apiBase, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("NOTIFY: error enviando SMS a %s: %v", to, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK
}
