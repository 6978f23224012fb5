package imu

// Sample represents a single raw accel+gyro reading in physical units.
type Sample struct {
	Ax float64 `json:"ax"` // accel, g
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"` // gyro, deg/s
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`
}

// Source is anything that can provide raw samples over time: the real
// MPU6500, a replay source, or a fixed sequence in tests.
type Source interface {
	Next() (Sample, error)
}
