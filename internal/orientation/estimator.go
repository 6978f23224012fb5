package orientation

// Estimator integrates the raw gyro Z rate into a fused heading angle.
// It depends on small, regular time steps, so it must be updated at the
// control loop's steady cadence, not on demand.
//
// The heading is never bias-corrected: yaw is unobservable from gravity,
// so a static accel calibration cannot help it. It drifts, and consumers
// are expected to treat it as relative.
type Estimator struct {
	yawDeg float64
}

// Update advances the heading by gz (deg/s) over dt seconds and wraps it
// into [-180, 180).
func (e *Estimator) Update(gz, dt float64) {
	e.yawDeg += gz * dt
	for e.yawDeg >= 180.0 {
		e.yawDeg -= 360.0
	}
	for e.yawDeg < -180.0 {
		e.yawDeg += 360.0
	}
}

// Yaw returns the current fused heading in degrees.
func (e *Estimator) Yaw() float64 {
	return e.yawDeg
}

// Reset zeroes the heading, typically after a calibration run during
// which no updates were possible.
func (e *Estimator) Reset() {
	e.yawDeg = 0
}
