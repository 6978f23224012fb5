package orientation

import (
	"math"
)

// TiltAngles computes the gravity-referenced tilt of the unit from a
// bias-corrected accel vector, in degrees.
//
// Uses simple gravity decomposition:
//
//	angleX = atan2(ay, az)
//	angleY = atan2(-ax, sqrt(ay² + az²))
//
// Gyro data is deliberately not fused into the tilt estimate; this keeps
// the correction stage stateless and testable with fixed inputs.
func TiltAngles(ax, ay, az float64) (angleX, angleY float64) {
	angleX = math.Atan2(ay, az) * 180.0 / math.Pi
	angleY = math.Atan2(-ax, math.Sqrt(ay*ay+az*az)) * 180.0 / math.Pi
	return angleX, angleY
}
