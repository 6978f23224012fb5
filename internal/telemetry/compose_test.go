package telemetry

import (
	"math"
	"testing"

	"github.com/relabs-tech/sensor_monitor/internal/bias"
	"github.com/relabs-tech/sensor_monitor/internal/imu"
)

func TestComposeCorrectsBiasAndDerivesLevelTilt(t *testing.T) {
	// Known scenario: raw minus bias gives a clean (0, 0, 1) g vector,
	// so both tilt angles must come out flat.
	b := bias.Model{AccOffX: 0.13, AccOffY: -0.001, AccOffZ: -0.053, Valid: true}
	raw := imu.Sample{Ax: 0.13, Ay: -0.001, Az: 0.947}

	snap := Compose(raw, true, EnvReading{}, 0, b)

	if math.Abs(snap.AccX) > 1e-12 || math.Abs(snap.AccY) > 1e-12 || math.Abs(snap.AccZ-1.0) > 1e-12 {
		t.Errorf("corrected accel = (%v %v %v), want (0 0 1)", snap.AccX, snap.AccY, snap.AccZ)
	}
	if math.Abs(snap.AngleX) > 1e-9 {
		t.Errorf("AngleX = %v, want ~0", snap.AngleX)
	}
	if math.Abs(snap.AngleY) > 1e-9 {
		t.Errorf("AngleY = %v, want ~0", snap.AngleY)
	}
}

func TestComposeIsPure(t *testing.T) {
	b := bias.Model{AccOffX: 0.01, GyrOffZ: 0.3, Valid: true}
	raw := imu.Sample{Ax: 0.2, Ay: -0.1, Az: 0.95, Gz: 1.2}
	env := EnvReading{Temperature: 21.5, Pressure: 1002.3, Available: true}

	a := Compose(raw, true, env, 42.5, b)
	c := Compose(raw, true, env, 42.5, b)
	if a != c {
		t.Errorf("two identical Compose calls differ:\n %+v\n %+v", a, c)
	}
}

func TestComposeAngleZPassthrough(t *testing.T) {
	// Heading comes from the fused estimator and must not be touched by
	// the bias correction.
	b := bias.Model{GyrOffZ: 99.0, Valid: true}
	snap := Compose(imu.Sample{Az: 1.0}, true, EnvReading{}, -73.25, b)

	if snap.AngleZ != -73.25 {
		t.Errorf("AngleZ = %v, want -73.25", snap.AngleZ)
	}
}

func TestComposeDegradesEnvUnavailable(t *testing.T) {
	snap := Compose(imu.Sample{Az: 1.0}, true, EnvReading{}, 0, bias.Model{})

	if snap.EnvOK {
		t.Error("EnvOK = true for unavailable sensor")
	}
	if snap.Temperature != 0 || snap.Pressure != 0 || snap.Altitude != 0 {
		t.Errorf("env fields not zeroed: T=%v P=%v alt=%v",
			snap.Temperature, snap.Pressure, snap.Altitude)
	}
}

func TestComposeDegradesIMUUnavailable(t *testing.T) {
	env := EnvReading{Temperature: 19.0, Pressure: 990.0, Available: true}
	snap := Compose(imu.Sample{}, false, env, 10.0, bias.Model{Valid: true})

	if snap.IMUOK {
		t.Error("IMUOK = true for failed read")
	}
	if snap.AccX != 0 || snap.AccY != 0 || snap.AccZ != 0 || snap.AngleX != 0 || snap.AngleY != 0 {
		t.Error("accel/tilt fields not zeroed on IMU failure")
	}
	// Env side must still be served.
	if !snap.EnvOK || snap.Temperature != 19.0 {
		t.Error("env fields lost when only the IMU failed")
	}
}

func TestAltitudeFromPressure(t *testing.T) {
	if got := AltitudeFromPressure(1013.25); math.Abs(got) > 1e-9 {
		t.Errorf("altitude at sea-level reference = %v, want 0", got)
	}
	// ~540 m for 950 hPa in the standard atmosphere.
	if got := AltitudeFromPressure(950); got < 500 || got > 580 {
		t.Errorf("altitude at 950 hPa = %v, want ~540", got)
	}
}
