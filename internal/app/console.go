package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensor_monitor/internal/config"
	"github.com/relabs-tech/sensor_monitor/internal/telemetry"
)

// RunConsole subscribes to the telemetry and alert topics and prints
// every message until interrupted.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	dataToken := client.Subscribe(cfg.TopicSensors, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s telemetry.Snapshot
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: telemetry unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[DATA ] X=%7.2f Y=%7.2f Z=%7.2f  acc=(%6.3f %6.3f %6.3f)  T=%5.1fC P=%7.1fhPa alt=%6.1fm env=%t imu=%t\n",
			s.AngleX, s.AngleY, s.AngleZ, s.AccX, s.AccY, s.AccZ,
			s.Temperature, s.Pressure, s.Altitude, s.EnvOK, s.IMUOK,
		)
	})
	dataToken.Wait()
	if dataToken.Error() != nil {
		return dataToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicSensors)

	alertToken := client.Subscribe(cfg.TopicAlerts, 1, func(_ mqtt.Client, msg mqtt.Message) {
		var a alertMessage
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			log.Printf("console: alert unmarshal error: %v", err)
			return
		}

		fmt.Printf("[ALERT] %s p=%.3f\n", a.Label, a.Probability)
	})
	alertToken.Wait()
	if alertToken.Error() != nil {
		return alertToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAlerts)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
