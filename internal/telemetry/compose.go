package telemetry

import (
	"github.com/relabs-tech/sensor_monitor/internal/bias"
	"github.com/relabs-tech/sensor_monitor/internal/imu"
	"github.com/relabs-tech/sensor_monitor/internal/orientation"
)

// Compose derives a telemetry snapshot from one raw sample, one env
// reading and the active bias model. Pure function of its inputs: no
// I/O, no clock. The caller stamps Taken/UptimeMS afterwards.
//
// imuOK reports whether the upstream driver read succeeded; when false
// the acceleration and tilt fields degrade to zero with IMUOK=false
// rather than aborting the whole snapshot. Env unavailability degrades
// the same way, field by field.
//
// yawDeg is passed through as AngleZ unmodified; heading is not
// correctable by a static accel bias.
func Compose(raw imu.Sample, imuOK bool, env EnvReading, yawDeg float64, b bias.Model) Snapshot {
	snap := Snapshot{
		AngleZ: yawDeg,
		EnvOK:  env.Available,
		IMUOK:  imuOK,
	}

	if imuOK {
		cx := raw.Ax - b.AccOffX
		cy := raw.Ay - b.AccOffY
		cz := raw.Az - b.AccOffZ

		snap.AccX = cx
		snap.AccY = cy
		snap.AccZ = cz
		snap.AngleX, snap.AngleY = orientation.TiltAngles(cx, cy, cz)
	}

	if env.Available {
		snap.Temperature = env.Temperature
		snap.Pressure = env.Pressure
		snap.Altitude = AltitudeFromPressure(env.Pressure)
	}

	return snap
}
