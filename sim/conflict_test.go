package sim

import (
	"testing"

	"github.com/vice-tracon/engine/math"
)

func testAircraft(id, callsign string, pos math.Point2LL, alt float32, phase Phase) *Aircraft {
	return &Aircraft{
		ID: id, Callsign: callsign, Position: pos, Altitude: alt, Phase: phase,
		Perf: testPerformance(),
	}
}

func TestConflictSeparationAlertShape(t *testing.T) {
	apt := testAirport()
	a := testAircraft("a1", "AAL1", math.Point2LL{-97, 33}, 8000, PhaseApproach)
	b := testAircraft("a2", "AAL2", math.Offset2LL(a.Position, 90, 1, apt.NMPerLongitude()), 8200, PhaseApproach)

	d := NewConflictDetector()
	alerts := d.Evaluate([]*Aircraft{a, b}, apt, 0)

	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(alerts), alerts)
	}
	got := alerts[0]
	if got.Kind != AlertSeparation {
		t.Errorf("kind = %v, want AlertSeparation", got.Kind)
	}
	if got.Severity != SeverityWarning {
		t.Errorf("severity = %v, want SeverityWarning", got.Severity)
	}
	want := map[string]bool{"a1": true, "a2": true}
	if len(got.Aircraft) != 2 || !want[got.Aircraft[0]] || !want[got.Aircraft[1]] {
		t.Errorf("aircraft = %v, want set {a1,a2}", got.Aircraft)
	}
}

func TestConflictSeparationAlertIdempotentAcrossTicks(t *testing.T) {
	apt := testAirport()
	a := testAircraft("a1", "AAL1", math.Point2LL{-97, 33}, 8000, PhaseApproach)
	b := testAircraft("a2", "AAL2", math.Offset2LL(a.Position, 90, 1, apt.NMPerLongitude()), 8200, PhaseApproach)

	d := NewConflictDetector()
	var lastID string
	for tick := 0; tick < 5; tick++ {
		alerts := d.Evaluate([]*Aircraft{a, b}, apt, float32(tick))
		if len(alerts) != 1 {
			t.Fatalf("tick %d: got %d alerts, want 1", tick, len(alerts))
		}
		if lastID != "" && alerts[0].ID != lastID {
			t.Fatalf("tick %d: alert id changed from %s to %s", tick, lastID, alerts[0].ID)
		}
		lastID = alerts[0].ID
	}
}

func TestConflictSeparationClearsWhenResolved(t *testing.T) {
	apt := testAirport()
	a := testAircraft("a1", "AAL1", math.Point2LL{-97, 33}, 8000, PhaseApproach)
	b := testAircraft("a2", "AAL2", math.Offset2LL(a.Position, 90, 1, apt.NMPerLongitude()), 8200, PhaseApproach)

	d := NewConflictDetector()
	if alerts := d.Evaluate([]*Aircraft{a, b}, apt, 0); len(alerts) != 1 {
		t.Fatalf("setup: got %d alerts, want 1", len(alerts))
	}

	b.Position = math.Offset2LL(a.Position, 90, 20, apt.NMPerLongitude())
	if alerts := d.Evaluate([]*Aircraft{a, b}, apt, 1); len(alerts) != 0 {
		t.Fatalf("after separating, got %d alerts, want 0: %+v", len(alerts), alerts)
	}
}

func TestConflictMSAWLowAltitudeDescending(t *testing.T) {
	apt := testAirport()
	ac := testAircraft("a1", "AAL1", math.Point2LL{-97, 33.5}, 1500, PhaseApproach)
	ac.VS = -500

	d := NewConflictDetector()
	alerts := d.Evaluate([]*Aircraft{ac}, apt, 0)
	if len(alerts) != 1 || alerts[0].Kind != AlertMSAW {
		t.Fatalf("got %+v, want single AlertMSAW", alerts)
	}
}

func TestConflictMSAWExcludedOnFinal(t *testing.T) {
	apt := testAirport()
	ac := testAircraft("a1", "AAL1", math.Point2LL{-97, 33.5}, 1500, PhaseFinal)
	ac.VS = -500

	d := NewConflictDetector()
	alerts := d.Evaluate([]*Aircraft{ac}, apt, 0)
	for _, a := range alerts {
		if a.Kind == AlertMSAW {
			t.Fatalf("got MSAW alert for aircraft on final, want none: %+v", a)
		}
	}
}
