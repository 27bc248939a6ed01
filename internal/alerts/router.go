package alerts

import (
	"context"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// Channel names as persisted in canales_notificacion
const (
	ChannelEmail    = "EMAIL"
	ChannelWhatsApp = "WHATSAPP"
	ChannelSMS      = "SMS"
)

// Channel is one outbound notification transport. Send must be bounded
// (the implementations use a 10 s HTTP timeout) and report failure
// instead of hanging. An unconfigured channel reports Available false
// and fails every send.
type Channel interface {
	Name() string
	Available() bool
	Send(ctx context.Context, to string, alert *models.Alert) bool
}

// Router maps alert severity to the ordered set of channels to attempt
// and picks the per-contact address for each channel.
type Router struct {
	channels map[string]Channel
}

// NewRouter builds a router over the given channel implementations
func NewRouter(channels ...Channel) *Router {
	m := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		m[ch.Name()] = ch
	}
	return &Router{channels: m}
}

// channelOrder is the canonical attempt order per severity
var channelOrder = map[models.Severity][]string{
	models.SeverityCritical: {ChannelWhatsApp, ChannelEmail, ChannelSMS},
	models.SeverityHigh:     {ChannelWhatsApp, ChannelEmail},
	models.SeverityMedium:   {ChannelEmail},
	models.SeverityLow:      {ChannelEmail},
}

// ChannelsFor returns the channels to attempt for a severity, in order.
// Channels with no registered implementation are skipped.
func (r *Router) ChannelsFor(sev models.Severity) []Channel {
	names, ok := channelOrder[sev]
	if !ok {
		names = channelOrder[models.SeverityLow]
	}
	out := make([]Channel, 0, len(names))
	for _, name := range names {
		if ch, exists := r.channels[name]; exists {
			out = append(out, ch)
		}
	}
	return out
}

// AddressFor returns the contact method a channel needs, empty when the
// contact has none configured for it.
func AddressFor(c models.Contact, channelName string) string {
	switch channelName {
	case ChannelEmail:
		return c.Email
	case ChannelWhatsApp:
		return c.WhatsAppNumber
	case ChannelSMS:
		return c.Phone
	}
	return ""
}

// OrderNotified sorts a set of notified channel names into the
// canonical CRITICAL ordering for persistence and display.
func OrderNotified(set map[string]bool) []string {
	var out []string
	for _, name := range channelOrder[models.SeverityCritical] {
		if set[name] {
			out = append(out, name)
		}
	}
	return out
}
