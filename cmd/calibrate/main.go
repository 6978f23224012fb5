// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// One-shot console calibration for a bench-mounted unit.
//
// Collects the configured sample window with the unit flat and still,
// derives the accel/gyro bias and writes it to the offset store so the
// monitor daemon picks it up on next start.
//
// Run:
//
//	go run ./cmd/calibrate
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensor_monitor/internal/bias"
	"github.com/relabs-tech/sensor_monitor/internal/config"
	"github.com/relabs-tech/sensor_monitor/internal/imu"
	"github.com/relabs-tech/sensor_monitor/internal/sensors"
	"github.com/relabs-tech/sensor_monitor/internal/store"
)

func main() {
	configPath := flag.String("config", "./monitor_config.txt", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	var src imu.Source
	if cfg.MockSensors {
		log.Println("calibrate: using mock IMU")
		src = sensors.NewMockIMU()
	} else {
		if _, err := host.Init(); err != nil {
			log.Fatalf("periph host init: %v", err)
		}
		bus, err := i2creg.Open(cfg.I2CBus)
		if err != nil {
			log.Fatalf("open I2C bus: %v", err)
		}
		src, err = sensors.NewMPU6500(bus, cfg.IMUI2CAddr)
		if err != nil {
			log.Fatalf("IMU init: %v", err)
		}
	}

	spacing := time.Duration(cfg.CalSampleSpacingMS) * time.Millisecond
	window := time.Duration(cfg.CalSampleCount) * spacing

	fmt.Println("=== Bias Calibration ===")
	fmt.Printf("Place the unit flat and level on a stable surface.\n")
	fmt.Printf("Sampling takes %v; do not touch the unit during that time.\n", window)
	fmt.Print("Press Enter to start...")
	bufio.NewReader(os.Stdin).ReadString('\n')

	model, err := bias.Calibrate(src, cfg.CalSampleCount, spacing)
	if errors.Is(err, bias.ErrOrientationInvalid) {
		log.Fatalf("calibration rejected: unit was not flat and level (gravity not dominant on Z)")
	}
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}

	fmt.Printf("Accel bias (g):     X=%+.5f  Y=%+.5f  Z=%+.5f\n", model.AccOffX, model.AccOffY, model.AccOffZ)
	fmt.Printf("Gyro bias (deg/s):  X=%+.4f  Y=%+.4f  Z=%+.4f\n", model.GyrOffX, model.GyrOffY, model.GyrOffZ)

	offsets, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Fatalf("open offset store: %v", err)
	}
	defer offsets.Close()

	if err := offsets.Save(model); err != nil {
		log.Fatalf("persist offsets: %v", err)
	}
	fmt.Printf("Saved to %s\n", cfg.StorePath)
}
