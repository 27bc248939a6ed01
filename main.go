package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/alerts"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/config"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/control"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/db"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/ingest"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/mqtt"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/notify"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/redis"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/scheduler"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/taskqueue"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/threshold"
	"github.com/jhpulgarinb/estacion-bombeo-iot/internal/web"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConn, err := db.NewDB(cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbConn.Close()

	redisClient := redis.NewRedisClient(cfg.RedisAddr)

	mqttClient, err := mqtt.NewMQTTClient(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT: %v", err)
	}
	actuator := mqtt.NewPumpActuator(mqttClient)

	// Notification channels: unconfigured ones stay registered but
	// permanently unavailable.
	router := alerts.NewRouter(
		notify.NewEmailSender(cfg.BrevoAPIKey, cfg.BrevoSenderEmail),
		notify.NewWhatsAppSender(cfg.WhatsAppAPIURL, cfg.WhatsAppToken, cfg.WhatsAppPhoneID),
		notify.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber),
	)
	dispatcher := alerts.NewDispatcher(dbConn, router)

	engine := control.NewEngine(dbConn, actuator, dispatcher)
	locker := redis.NewStationLock(redisClient)
	runner := control.NewRunner(dbConn, engine, locker)

	taskqueue.SetGlobalInstances(runner)
	go taskqueue.StartWorkers(cfg.RedisAddr)

	sched := scheduler.NewScheduler()
	sched.Start()
	if err := sched.ScheduleControlCycle(cfg.ControlCycleCron); err != nil {
		log.Fatalf("Failed to schedule control cycle: %v", err)
	}

	cache := redis.NewReadingCache(redisClient)
	ingestService := ingest.NewService(dbConn, cache, threshold.NewEvaluator(dbConn), dispatcher)
	subscriber := ingest.NewSubscriber(mqttClient, ingestService)
	if err := subscriber.Start(); err != nil {
		log.Fatalf("Failed to subscribe to telemetry topics: %v", err)
	}

	webServer := web.NewWebServer(dbConn.Pool(), dbConn, dispatcher, runner, actuator, ingestService, cache, cfg.JWTSecret)
	go webServer.Start(cfg.HTTPAddr)

	if cfg.MDNSHostname != "" {
		go startMDNSServer(cfg.MDNSHostname)
	} else {
		log.Println("mDNS discovery is disabled")
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	mqttClient.Disconnect(250)
	sched.Stop()
	taskqueue.StopWorkers()
	log.Println("Shutdown complete")
}

// startMDNSServer announces the backend on the local network so field
// sensors can resolve it without hardcoded addresses
func startMDNSServer(localName string) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		log.Println("Failed to resolve UDP4 address for mDNS:", err)
		return
	}

	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	if err != nil {
		log.Println("Failed to resolve UDP6 address for mDNS:", err)
		return
	}

	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		log.Println("Failed to listen on UDP4 for mDNS:", err)
		return
	}

	l6, err := net.ListenUDP("udp6", addr6)
	if err != nil {
		log.Println("Failed to listen on UDP6 for mDNS:", err)
		return
	}

	_, err = mdns.Server(ipv4.NewPacketConn(l4), ipv6.NewPacketConn(l6), &mdns.Config{
		LocalNames: []string{localName},
	})
	if err != nil {
		log.Println("Failed to start mDNS server:", err)
	}
}
