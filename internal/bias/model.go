// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package bias

// Model holds the six calibration offsets for one accel/gyro pair.
// Accelerometer offsets are in g, gyroscope offsets in deg/s. A valid
// model was derived with the unit stationary and level, so the expected
// accel reading during calibration was (0, 0, +1) g.
//
// The live model is always replaced as a whole by a successful
// calibration run, never field by field.
type Model struct {
	AccOffX float64 `json:"ax"`
	AccOffY float64 `json:"ay"`
	AccOffZ float64 `json:"az"`

	GyrOffX float64 `json:"gx"`
	GyrOffY float64 `json:"gy"`
	GyrOffZ float64 `json:"gz"`

	Valid bool `json:"ok"`
}

// Default returns the compiled-in model used until the first calibration
// has been run and persisted: all offsets zero, not valid.
func Default() Model {
	return Model{}
}
