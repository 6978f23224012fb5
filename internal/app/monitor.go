// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensor_monitor/internal/bias"
	"github.com/relabs-tech/sensor_monitor/internal/config"
	"github.com/relabs-tech/sensor_monitor/internal/display"
	"github.com/relabs-tech/sensor_monitor/internal/imu"
	"github.com/relabs-tech/sensor_monitor/internal/orientation"
	"github.com/relabs-tech/sensor_monitor/internal/sensors"
	"github.com/relabs-tech/sensor_monitor/internal/store"
	"github.com/relabs-tech/sensor_monitor/internal/telemetry"
)

// envReader abstracts the BMP280 so the monitor can run without it.
type envReader interface {
	Read() (telemetry.EnvReading, error)
}

type mockEnvReader struct{}

func (mockEnvReader) Read() (telemetry.EnvReading, error) {
	return sensors.MockEnv(), nil
}

// alertMessage is the payload published by the anomaly pipeline on the
// alerts topic.
type alertMessage struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// CalibrationOutcome is what a successful calibration hands back to the
// external trigger. PersistErr is non-nil when the new model is active
// for this session but could not be written to the offset store.
type CalibrationOutcome struct {
	Model      bias.Model
	PersistErr error
}

// Monitor owns all mutable sensor state. A single control-loop goroutine
// reads the sensors, integrates the heading, composes snapshots and
// services external requests via channels, so there is never a concurrent
// writer to the bias model or the latest snapshot. Calibration runs
// inside the loop and blocks everything else for its full window; that is
// the accepted trade-off, since its mean depends on an evenly spaced,
// uninterrupted sample window.
type Monitor struct {
	cfg *config.Config

	imuSrc  imu.Source
	env     envReader
	arb     *display.Arbiter
	offsets *store.Store
	client  mqtt.Client

	// Loop-owned state. Touched only by run().
	model    bias.Model
	est      orientation.Estimator
	latest   telemetry.Snapshot
	started  time.Time
	lastTick time.Time
	alertIn  bool

	telemetryReq chan chan telemetry.Snapshot
	calibrateReq chan chan calibrateResult
	alertCh      chan bool
}

type calibrateResult struct {
	outcome CalibrationOutcome
	err     error
}

// NewMonitor wires sensors, store, display and MQTT from the global
// config and loads the persisted bias model (or the compiled-in default
// on first boot).
func NewMonitor() (*Monitor, error) {
	cfg := config.Get()

	m := &Monitor{
		cfg:          cfg,
		telemetryReq: make(chan chan telemetry.Snapshot),
		calibrateReq: make(chan chan calibrateResult),
		alertCh:      make(chan bool, 8),
	}

	offsets, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	m.offsets = offsets

	model, present, err := offsets.Load()
	if err != nil {
		return nil, err
	}
	if present {
		m.model = model
		log.Printf("monitor: loaded persisted bias: acc=(%.4f %.4f %.4f) gyro=(%.3f %.3f %.3f)",
			model.AccOffX, model.AccOffY, model.AccOffZ,
			model.GyrOffX, model.GyrOffY, model.GyrOffZ)
	} else {
		m.model = bias.Default()
		log.Println("monitor: no persisted bias, using defaults (run a calibration)")
	}

	if cfg.MockSensors {
		log.Println("monitor: using mock sensors")
		m.imuSrc = sensors.NewMockIMU()
		m.env = mockEnvReader{}
	} else {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("periph host init: %w", err)
		}
		bus, err := i2creg.Open(cfg.I2CBus)
		if err != nil {
			return nil, fmt.Errorf("open I2C bus: %w", err)
		}

		mpu, err := sensors.NewMPU6500(bus, cfg.IMUI2CAddr)
		if err != nil {
			return nil, err
		}
		m.imuSrc = mpu

		if env, err := sensors.NewEnv(bus, cfg.BMPI2CAddr); err != nil {
			// Degrade: snapshots carry EnvAvailable=false.
			log.Printf("monitor: env sensor unavailable: %v", err)
		} else {
			m.env = env
		}

		if cfg.DisplayEnabled {
			oled, err := display.NewOLED(bus)
			if err != nil {
				log.Printf("monitor: display unavailable: %v", err)
			} else {
				if err := oled.ShowSplash(); err != nil {
					log.Printf("monitor: splash: %v", err)
				}
				m.arb = display.NewArbiter(oled)
			}
		}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDMonitor)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect: %w", token.Error())
	}
	m.client = client
	log.Printf("monitor: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicAlerts, 1, func(_ mqtt.Client, msg mqtt.Message) {
		var a alertMessage
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			log.Printf("monitor: alert unmarshal error: %v", err)
			return
		}
		select {
		case m.alertCh <- a.Label == "Anomaly":
		default:
		}
	})
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("MQTT subscribe %s: %w", cfg.TopicAlerts, token.Error())
	}
	log.Printf("monitor: subscribed to %s", cfg.TopicAlerts)

	return m, nil
}

// Start launches the control loop.
func (m *Monitor) Start() {
	go m.run()
}

func (m *Monitor) run() {
	m.started = time.Now()

	ticker := time.NewTicker(time.Duration(m.cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	// Keep the tick log around once per second regardless of cadence.
	logEvery := 1000 / m.cfg.SampleInterval
	if logEvery < 1 {
		logEvery = 1
	}
	tickCount := 0

	log.Println("monitor: control loop started")

	for {
		select {
		case t := <-ticker.C:
			m.step(t)
			tickCount++
			if tickCount%logEvery == 0 {
				s := m.latest
				log.Printf("monitor: tick: X=%.2f Y=%.2f Z=%.2f | acc=(%.3f %.3f %.3f) | T=%.1fC P=%.1fhPa | env=%t imu=%t alert=%t",
					s.AngleX, s.AngleY, s.AngleZ, s.AccX, s.AccY, s.AccZ,
					s.Temperature, s.Pressure, s.EnvOK, s.IMUOK, m.alertIn)
			}

		case alert := <-m.alertCh:
			m.alertIn = alert

		case resp := <-m.telemetryReq:
			resp <- m.latest

		case resp := <-m.calibrateReq:
			// Blocks the loop for the whole window, on purpose.
			resp <- m.runCalibration()
			m.lastTick = time.Time{} // heading dt would span the window
		}
	}
}

// step performs one control-loop tick: sample, integrate, compose,
// publish, render.
func (m *Monitor) step(t time.Time) {
	var dt float64
	if !m.lastTick.IsZero() {
		dt = t.Sub(m.lastTick).Seconds()
	}
	m.lastTick = t

	raw, err := m.imuSrc.Next()
	imuOK := err == nil
	if err != nil {
		log.Printf("monitor: IMU read error: %v", err)
	} else if dt > 0 {
		// The heading integrates the raw, uncorrected rate; see
		// orientation.Estimator.
		m.est.Update(raw.Gz, dt)
	}

	var env telemetry.EnvReading
	if m.env != nil {
		if env, err = m.env.Read(); err != nil {
			log.Printf("monitor: env read error: %v", err)
			env = telemetry.EnvReading{}
		}
	}

	snap := telemetry.Compose(raw, imuOK, env, m.est.Yaw(), m.model)
	snap.Taken = t
	snap.UptimeMS = t.Sub(m.started).Milliseconds()
	m.latest = snap

	if payload, err := json.Marshal(snap); err != nil {
		log.Printf("monitor: telemetry marshal error: %v", err)
	} else {
		if token := m.client.Publish(m.cfg.TopicSensors, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("monitor: MQTT publish error: %v", token.Error())
		}
	}

	if m.arb != nil {
		if err := m.arb.Observe(m.alertIn, snap); err != nil {
			log.Printf("monitor: display error: %v", err)
		}
	}
}

// runCalibration executes the blocking calibration and, on success, swaps
// the whole model and persists it. A rejected run (unit not level) leaves
// the active model untouched. A failed save keeps the new model active
// for this session; only durability across restart is lost.
func (m *Monitor) runCalibration() calibrateResult {
	cfg := m.cfg
	spacing := time.Duration(cfg.CalSampleSpacingMS) * time.Millisecond
	window := time.Duration(cfg.CalSampleCount) * spacing

	log.Printf("monitor: calibration started, %d samples over %v, keep the unit flat and still",
		cfg.CalSampleCount, window)

	model, err := bias.Calibrate(m.imuSrc, cfg.CalSampleCount, spacing)
	if err != nil {
		log.Printf("monitor: calibration rejected: %v", err)
		return calibrateResult{err: err}
	}

	m.model = model

	outcome := CalibrationOutcome{Model: model}
	if err := m.offsets.Save(model); err != nil {
		log.Printf("monitor: offsets not persisted (new bias stays active this session): %v", err)
		outcome.PersistErr = err
	} else {
		log.Printf("monitor: calibration done, bias persisted: acc=(%.4f %.4f %.4f) gyro=(%.3f %.3f %.3f)",
			model.AccOffX, model.AccOffY, model.AccOffZ,
			model.GyrOffX, model.GyrOffY, model.GyrOffZ)
	}
	return calibrateResult{outcome: outcome}
}

// Telemetry returns the latest snapshot. Near-instant, except while a
// calibration holds the loop.
func (m *Monitor) Telemetry() telemetry.Snapshot {
	resp := make(chan telemetry.Snapshot, 1)
	m.telemetryReq <- resp
	return <-resp
}

// Calibrate triggers a synchronous calibration run on the control loop
// and blocks until it finishes. The error is bias.ErrOrientationInvalid
// when the sanity check rejected the window.
func (m *Monitor) Calibrate() (CalibrationOutcome, error) {
	resp := make(chan calibrateResult, 1)
	m.calibrateReq <- resp
	res := <-resp
	return res.outcome, res.err
}
