package mqtt

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/models"
)

// NewMQTTClient creates an MQTT client connected to the broker
func NewMQTTClient(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID).SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}

type pumpCommand struct {
	Action string `json:"accion"`
}

// PumpActuator sends START/STOP commands to pump controllers over MQTT.
// Commands are fire and forget at QoS 1, the controller reports back
// through its telemetry topic.
type PumpActuator struct {
	client mqtt.Client
}

// NewPumpActuator creates an actuator over a connected client
func NewPumpActuator(client mqtt.Client) *PumpActuator {
	return &PumpActuator{client: client}
}

// SendCommand publishes an action to bombas/<id>/comandos
func (a *PumpActuator) SendCommand(pumpID int, action models.Action) {
	payload, _ := json.Marshal(pumpCommand{Action: string(action)})
	topic := fmt.Sprintf("bombas/%d/comandos", pumpID)
	log.Printf("MQTT: publicando comando en %s: %s", topic, string(payload))
	a.client.Publish(topic, 1, false, payload)
}
