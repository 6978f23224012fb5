// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package bias

import (
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/sensor_monitor/internal/imu"
)

const (
	// DefaultSampleCount and DefaultSampleSpacing give a ~2.4s window,
	// long enough to average out vibration without trying the operator's
	// patience.
	DefaultSampleCount   = 800
	DefaultSampleSpacing = 3 * time.Millisecond

	// Gravity must dominate the Z axis during calibration. Below this the
	// flat-and-level assumption is broken and the run is rejected.
	minLevelAccZ = 0.5
)

// ErrOrientationInvalid is returned when the calibration window was
// sampled with the unit not flat and level (|mean accel Z| < 0.5 g).
var ErrOrientationInvalid = errors.New("bias: gravity not dominant on Z axis, unit was not level")

// acc is a Neumaier-compensated running sum. Summing hundreds of
// near-equal small floats loses low-order bits with a naive sum; the
// compensation term carries them.
type acc struct {
	sum  float64
	comp float64
}

func (a *acc) add(x float64) {
	t := a.sum + x
	if abs(a.sum) >= abs(x) {
		a.comp += (a.sum - t) + x
	} else {
		a.comp += (x - t) + a.sum
	}
	a.sum = t
}

func (a *acc) mean(n int) float64 {
	return (a.sum + a.comp) / float64(n)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Calibrate collects count samples from src at spacing intervals and
// derives a new offset model from the per-channel means. The caller must
// keep the unit stationary and level for the whole window; Calibrate
// blocks for count*spacing and deliberately so, because the mean is only
// meaningful over a fixed, evenly spaced window.
//
// Accel bias is mean minus the expected level reading (0, 0, +1) g; gyro
// bias is the raw mean, since a stationary unit should report 0 deg/s.
// Calibrate never touches shared state: the caller decides whether to
// swap the returned model in and persist it.
func Calibrate(src imu.Source, count int, spacing time.Duration) (Model, error) {
	if count <= 0 {
		return Model{}, fmt.Errorf("bias: sample count must be positive, got %d", count)
	}

	var ax, ay, az, gx, gy, gz acc
	for i := 0; i < count; i++ {
		s, err := src.Next()
		if err != nil {
			return Model{}, fmt.Errorf("bias: sample %d/%d: %w", i+1, count, err)
		}
		ax.add(s.Ax)
		ay.add(s.Ay)
		az.add(s.Az)
		gx.add(s.Gx)
		gy.add(s.Gy)
		gz.add(s.Gz)

		if spacing > 0 && i < count-1 {
			time.Sleep(spacing)
		}
	}

	meanAz := az.mean(count)
	if abs(meanAz) < minLevelAccZ {
		return Model{}, ErrOrientationInvalid
	}

	return Model{
		AccOffX: ax.mean(count),
		AccOffY: ay.mean(count),
		AccOffZ: meanAz - 1.0, // expected +1 g on Z when level
		GyrOffX: gx.mean(count),
		GyrOffY: gy.mean(count),
		GyrOffZ: gz.mean(count),
		Valid:   true,
	}, nil
}
