package display

import (
	"github.com/relabs-tech/sensor_monitor/internal/telemetry"
)

// State of the display overlay.
type State int

const (
	StateNormal State = iota
	StateAlert
)

// Renderer draws either the telemetry screen or the fixed alert screen.
type Renderer interface {
	RenderTelemetry(telemetry.Snapshot) error
	RenderAlert() error
}

// Arbiter is the two-state overlay in front of the renderer. In Normal it
// redraws the telemetry screen every tick; a rising edge of the alert
// input switches to Alert, draws the fixed alert message once and then
// keeps the panel untouched until the falling edge, at which point the
// latest snapshot is drawn immediately. Edge-triggered on purpose: while
// the alert holds there is nothing new to say and redrawing only churns
// the panel.
type Arbiter struct {
	r      Renderer
	state  State
	seeded bool
}

// NewArbiter wraps r. The initial state is taken from the first alert
// sample seen by Observe, not forced to Normal, so a unit booting under
// an already-asserted alert does not report a spurious cleared edge.
func NewArbiter(r Renderer) *Arbiter {
	return &Arbiter{r: r}
}

// State returns the current overlay state.
func (a *Arbiter) State() State {
	return a.state
}

// Observe feeds one tick: the sampled alert input and the latest
// snapshot. Returns any renderer error; the state machine advances
// regardless.
func (a *Arbiter) Observe(alert bool, snap telemetry.Snapshot) error {
	if !a.seeded {
		a.seeded = true
		if alert {
			a.state = StateAlert
			return a.r.RenderAlert()
		}
		a.state = StateNormal
		return a.r.RenderTelemetry(snap)
	}

	switch a.state {
	case StateNormal:
		if alert {
			a.state = StateAlert
			return a.r.RenderAlert()
		}
		return a.r.RenderTelemetry(snap)

	case StateAlert:
		if !alert {
			a.state = StateNormal
			return a.r.RenderTelemetry(snap)
		}
		// Level held: no writes until the falling edge.
		return nil
	}
	return nil
}
