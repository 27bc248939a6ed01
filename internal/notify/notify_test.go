package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

func testAlert() *models.Alert {
	return &models.Alert{
		ID:        12,
		StationID: 1,
		AlertType: "NIVEL_CRITICO",
		Severity:  models.SeverityCritical,
		Message:   "Nivel de agua crítico. Activar drenaje de emergencia.",
		CreatedAt: time.Date(2026, 2, 20, 14, 30, 0, 0, time.Local),
	}
}

func TestUnconfiguredChannelsUnavailable(t *testing.T) {
	email := NewEmailSender("", "")
	whatsapp := NewWhatsAppSender("", "", "")
	sms := NewSMSSender("", "", "")

	if email.Available() || whatsapp.Available() || sms.Available() {
		t.Fatal("unconfigured channels must report unavailable")
	}
	if email.Send(context.Background(), "a@b.co", testAlert()) {
		t.Error("send on an unavailable email channel returned true")
	}
	if whatsapp.Send(context.Background(), "+57300", testAlert()) {
		t.Error("send on an unavailable whatsapp channel returned true")
	}
	if sms.Send(context.Background(), "+57300", testAlert()) {
		t.Error("send on an unavailable sms channel returned true")
	}
}

func TestEmailSend(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "test-key" {
			t.Errorf("missing api-key header")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewEmailSender("test-key", "alertas@ppa.com.co")
	s.apiURL = srv.URL

	if !s.Send(context.Background(), "op@ppa.com.co", testAlert()) {
		t.Fatal("Send returned false for a 201 response")
	}

	subject, _ := got["subject"].(string)
	if !strings.Contains(subject, "CRITICAL") || !strings.Contains(subject, "NIVEL_CRITICO") {
		t.Errorf("subject = %q, want severity and type", subject)
	}
}

func TestEmailSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewEmailSender("test-key", "alertas@ppa.com.co")
	s.apiURL = srv.URL

	if s.Send(context.Background(), "op@ppa.com.co", testAlert()) {
		t.Fatal("Send returned true for a 502 response")
	}
}

func TestWhatsAppSendStripsPlusPrefix(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/98765/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewWhatsAppSender(srv.URL, "tok", "98765")
	if !s.Send(context.Background(), "+573001112233", testAlert()) {
		t.Fatal("Send returned false for a 200 response")
	}
	if to, _ := got["to"].(string); to != "573001112233" {
		t.Errorf("to = %q, want number without plus", to)
	}
}

func TestSMSSendTruncatesBody(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewSMSSender("AC123", "tok", "+15550001111")
	s.apiBase = srv.URL

	alert := testAlert()
	alert.Message = strings.Repeat("x", 300)
	if !s.Send(context.Background(), "+573001112233", alert) {
		t.Fatal("Send returned false for a 201 response")
	}
	if !strings.Contains(gotBody, strings.Repeat("x", 100)) || strings.Contains(gotBody, strings.Repeat("x", 101)) {
		t.Errorf("sms body not truncated to 100 message runes: %d chars", len(gotBody))
	}
}
