package orientation

import (
	"math"
	"testing"
)

func TestTiltAnglesLevel(t *testing.T) {
	x, y := TiltAngles(0, 0, 1)
	if math.Abs(x) > 1e-9 || math.Abs(y) > 1e-9 {
		t.Errorf("level unit: angles = (%v, %v), want (0, 0)", x, y)
	}
}

func TestTiltAnglesKnownOrientations(t *testing.T) {
	cases := []struct {
		name         string
		ax, ay, az   float64
		wantX, wantY float64
	}{
		{"rolled 90 (gravity on Y)", 0, 1, 0, 90, 0},
		{"rolled -90", 0, -1, 0, -90, 0},
		{"pitched 90 (gravity on -X)", -1, 0, 0, 0, 90},
		{"pitched -90", 1, 0, 0, 0, -90},
		{"rolled 45", 0, math.Sqrt2 / 2, math.Sqrt2 / 2, 45, 0},
	}
	for _, c := range cases {
		x, y := TiltAngles(c.ax, c.ay, c.az)
		if math.Abs(x-c.wantX) > 1e-6 || math.Abs(y-c.wantY) > 1e-6 {
			t.Errorf("%s: angles = (%v, %v), want (%v, %v)", c.name, x, y, c.wantX, c.wantY)
		}
	}
}

func TestEstimatorIntegratesRate(t *testing.T) {
	var e Estimator

	// 10 deg/s for 2 simulated seconds in 10 ms steps.
	for i := 0; i < 200; i++ {
		e.Update(10.0, 0.01)
	}
	if math.Abs(e.Yaw()-20.0) > 1e-9 {
		t.Errorf("yaw = %v, want 20", e.Yaw())
	}
}

func TestEstimatorWrapsHeading(t *testing.T) {
	var e Estimator

	e.Update(170.0, 1.0)
	e.Update(20.0, 1.0) // 190 wraps to -170
	if math.Abs(e.Yaw()-(-170.0)) > 1e-9 {
		t.Errorf("yaw = %v, want -170", e.Yaw())
	}

	e.Reset()
	if e.Yaw() != 0 {
		t.Errorf("yaw after reset = %v, want 0", e.Yaw())
	}
}
