package ingest

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// Subscriber bridges the MQTT field telemetry topics into the
// ingestion service. Topics carry the station id in the second
// segment: estaciones/<id>/{nivel,meteorologia,telemetria}.
type Subscriber struct {
	client  mqtt.Client
	service *Service
}

// NewSubscriber creates a subscriber over a connected client
func NewSubscriber(client mqtt.Client, service *Service) *Subscriber {
	return &Subscriber{client: client, service: service}
}

// Start subscribes to the three telemetry topics
func (s *Subscriber) Start() error {
	subscriptions := map[string]mqtt.MessageHandler{
		"estaciones/+/" + KindWaterLevel:     s.onWaterLevel,
		"estaciones/+/" + KindMeteorological: s.onMeteorological,
		"estaciones/+/" + KindTelemetry:      s.onPumpTelemetry,
	}
	for topic, handler := range subscriptions {
		log.Printf("INGEST: suscribiendo a %s", topic)
		if token := s.client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
			return token.Error()
		}
	}
	return nil
}

// parseStationID extracts the station id from the topic
func parseStationID(topic string) int {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return 0
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return id
}

func (s *Subscriber) onWaterLevel(client mqtt.Client, msg mqtt.Message) {
	var r models.WaterLevel
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		log.Printf("INGEST: payload de nivel inválido en %s: %v", msg.Topic(), err)
		return
	}
	if r.StationID == 0 {
		r.StationID = parseStationID(msg.Topic())
	}
	if err := s.service.IngestWaterLevel(context.Background(), &r); err != nil {
		log.Printf("INGEST: %v", err)
	}
}

func (s *Subscriber) onMeteorological(client mqtt.Client, msg mqtt.Message) {
	var r models.MeteorologicalReading
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		log.Printf("INGEST: payload meteorológico inválido en %s: %v", msg.Topic(), err)
		return
	}
	if r.StationID == 0 {
		r.StationID = parseStationID(msg.Topic())
	}
	if err := s.service.IngestMeteorological(context.Background(), &r); err != nil {
		log.Printf("INGEST: %v", err)
	}
}

func (s *Subscriber) onPumpTelemetry(client mqtt.Client, msg mqtt.Message) {
	var t models.PumpTelemetry
	if err := json.Unmarshal(msg.Payload(), &t); err != nil {
		log.Printf("INGEST: payload de telemetría inválido en %s: %v", msg.Topic(), err)
		return
	}
	if t.PumpID == 0 {
		t.PumpID = parseStationID(msg.Topic())
	}
	if err := s.service.IngestPumpTelemetry(context.Background(), &t); err != nil {
		log.Printf("INGEST: %v", err)
	}
}
