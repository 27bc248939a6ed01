package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DBURL        string `mapstructure:"DB_URL"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	MQTTBroker   string `mapstructure:"MQTT_BROKER"`
	MQTTClientID string `mapstructure:"MQTT_CLIENT_ID"`
	HTTPAddr     string `mapstructure:"HTTP_ADDR"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`

	// Cron expression for the periodic control cycle
	ControlCycleCron string `mapstructure:"CONTROL_CYCLE_CRON"`

	// Outbound notification channels. An empty value leaves the
	// corresponding channel permanently unavailable.
	BrevoAPIKey       string `mapstructure:"BREVO_API_KEY"`
	BrevoSenderEmail  string `mapstructure:"BREVO_SENDER_EMAIL"`
	WhatsAppAPIURL    string `mapstructure:"WHATSAPP_API_URL"`
	WhatsAppToken     string `mapstructure:"WHATSAPP_TOKEN"`
	WhatsAppPhoneID   string `mapstructure:"WHATSAPP_PHONE_ID"`
	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `mapstructure:"TWILIO_PHONE_NUMBER"`

	// mDNS name announced to field devices, empty disables discovery
	MDNSHostname string `mapstructure:"MDNS_HOSTNAME"`
}

// LoadConfig reads configuration from file, .env, or env vars
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("CONFIG: no .env file loaded: %v", err)
	}

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("HTTP_ADDR", ":9000")
	viper.SetDefault("MQTT_CLIENT_ID", "estacion-bombeo-backend")
	viper.SetDefault("CONTROL_CYCLE_CRON", "*/10 * * * *")

	cfg := &Config{
		DBURL:             viper.GetString("DB_URL"),
		RedisAddr:         viper.GetString("REDIS_ADDR"),
		MQTTBroker:        viper.GetString("MQTT_BROKER"),
		MQTTClientID:      viper.GetString("MQTT_CLIENT_ID"),
		HTTPAddr:          viper.GetString("HTTP_ADDR"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		JWTSecret:         viper.GetString("JWT_SECRET"),
		ControlCycleCron:  viper.GetString("CONTROL_CYCLE_CRON"),
		BrevoAPIKey:       viper.GetString("BREVO_API_KEY"),
		BrevoSenderEmail:  viper.GetString("BREVO_SENDER_EMAIL"),
		WhatsAppAPIURL:    viper.GetString("WHATSAPP_API_URL"),
		WhatsAppToken:     viper.GetString("WHATSAPP_TOKEN"),
		WhatsAppPhoneID:   viper.GetString("WHATSAPP_PHONE_ID"),
		TwilioAccountSID:  viper.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   viper.GetString("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: viper.GetString("TWILIO_PHONE_NUMBER"),
		MDNSHostname:      viper.GetString("MDNS_HOSTNAME"),
	}
	return cfg, nil
}
