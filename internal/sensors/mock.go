// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/sensor_monitor/internal/imu"
	"github.com/relabs-tech/sensor_monitor/internal/telemetry"
)

type mockIMU struct {
	start time.Time
}

// NewMockIMU creates a sample source that generates a slowly rocking,
// level-ish unit. Useful for running the monitor without hardware.
func NewMockIMU() imu.Source {
	return &mockIMU{start: time.Now()}
}

func (m *mockIMU) Next() (imu.Sample, error) {
	elapsed := time.Since(m.start).Seconds()

	return imu.Sample{
		Ax: 0.05 * math.Sin(elapsed),
		Ay: 0.03 * math.Cos(elapsed*0.7),
		Az: 1.0,
		Gx: 0.2 * math.Sin(elapsed*1.3),
		Gy: 0.1 * math.Cos(elapsed),
		Gz: 1.5,
	}, nil
}

// MockEnv returns a plausible fixed environmental reading.
func MockEnv() telemetry.EnvReading {
	return telemetry.EnvReading{
		Temperature: 24.5,
		Pressure:    1008.2,
		Available:   true,
	}
}
