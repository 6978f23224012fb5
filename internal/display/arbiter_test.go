package display

import (
	"testing"

	"github.com/relabs-tech/sensor_monitor/internal/telemetry"
)

// countingRenderer records render calls per tick.
type countingRenderer struct {
	telemetryCalls int
	alertCalls     int
}

func (r *countingRenderer) RenderTelemetry(telemetry.Snapshot) error {
	r.telemetryCalls++
	return nil
}

func (r *countingRenderer) RenderAlert() error {
	r.alertCalls++
	return nil
}

func TestArbiterEdgeTriggeredSequence(t *testing.T) {
	r := &countingRenderer{}
	a := NewArbiter(r)

	// Input sampled once per tick. Expect Normal→Alert on tick 3 and
	// Alert→Normal on tick 5, with no writes at all on tick 4.
	inputs := []bool{false, false, true, true, false}
	wantStates := []State{StateNormal, StateNormal, StateAlert, StateAlert, StateNormal}

	var rendersPerTick []int
	for i, alert := range inputs {
		before := r.telemetryCalls + r.alertCalls
		if err := a.Observe(alert, telemetry.Snapshot{}); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
		rendersPerTick = append(rendersPerTick, r.telemetryCalls+r.alertCalls-before)

		if a.State() != wantStates[i] {
			t.Errorf("tick %d: state = %v, want %v", i+1, a.State(), wantStates[i])
		}
	}

	if r.alertCalls != 1 {
		t.Errorf("alert renders = %d, want exactly 1 (on the rising edge)", r.alertCalls)
	}
	if rendersPerTick[3] != 0 {
		t.Errorf("tick 4 (held alert) produced %d renders, want 0", rendersPerTick[3])
	}
	// Ticks 1, 2 and 5 are Normal and redraw telemetry.
	if r.telemetryCalls != 3 {
		t.Errorf("telemetry renders = %d, want 3", r.telemetryCalls)
	}
}

func TestArbiterSeedsInitialStateFromInput(t *testing.T) {
	r := &countingRenderer{}
	a := NewArbiter(r)

	// Booting under an asserted alert: state starts in Alert, no false
	// "cleared" transition, and the alert screen is drawn once.
	if err := a.Observe(true, telemetry.Snapshot{}); err != nil {
		t.Fatal(err)
	}
	if a.State() != StateAlert {
		t.Fatalf("state = %v, want StateAlert", a.State())
	}
	if r.alertCalls != 1 || r.telemetryCalls != 0 {
		t.Errorf("renders after seed: alert=%d telemetry=%d, want 1/0", r.alertCalls, r.telemetryCalls)
	}

	// Held alert stays silent.
	if err := a.Observe(true, telemetry.Snapshot{}); err != nil {
		t.Fatal(err)
	}
	if r.alertCalls != 1 || r.telemetryCalls != 0 {
		t.Errorf("renders while held: alert=%d telemetry=%d, want 1/0", r.alertCalls, r.telemetryCalls)
	}

	// Falling edge re-renders the latest snapshot immediately.
	if err := a.Observe(false, telemetry.Snapshot{}); err != nil {
		t.Fatal(err)
	}
	if a.State() != StateNormal {
		t.Errorf("state = %v, want StateNormal", a.State())
	}
	if r.telemetryCalls != 1 {
		t.Errorf("telemetry renders after falling edge = %d, want 1", r.telemetryCalls)
	}
}
