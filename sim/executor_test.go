package sim

import (
	"testing"

	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/log"
	"github.com/vice-tracon/engine/nav"
	"github.com/vice-tracon/engine/rand"
	"github.com/vice-tracon/engine/wx"
)

func testLogger() *log.Logger {
	return log.New(false, "error", "")
}

func clearVFRWeather() wx.Weather {
	ceiling := float32(5000)
	return wx.Weather{VisibilitySM: 10, CeilingFt: &ceiling, Altimeter: 29.92}
}

func TestVisualApproachRejectedWithoutSighting(t *testing.T) {
	apt := testAirport()
	pilot := NewPilotAI(DefaultRadioFormatter{}, testLogger())
	exec := &CommandExecutor{Pilot: pilot, Weather: clearVFRWeather()}

	ac := &Aircraft{ID: "x", Callsign: "AAL1", Phase: PhaseApproach, Perf: testPerformance()}
	ac.Nav = nav.NewState(nil, apt.Elevation+3000, rand.New())

	cmd := Command{Callsign: "AAL1", Subs: []SubCommand{{Kind: SubApproach, ApproachType: aviation.ApproachVisual, Runway: "16"}}}
	result := exec.Execute(ac, apt, cmd, 0, rand.New())

	if result.Success {
		t.Fatalf("visual approach cleared without field in sight, want rejection")
	}
	if !result.PilotUnable {
		t.Errorf("want PilotUnable=true for a gated clearance, got false")
	}
}

func TestVisualApproachAcceptedAfterFieldSighted(t *testing.T) {
	apt := testAirport()
	pilot := NewPilotAI(DefaultRadioFormatter{}, testLogger())
	exec := &CommandExecutor{Pilot: pilot, Weather: clearVFRWeather()}

	ac := &Aircraft{ID: "x", Callsign: "AAL1", Phase: PhaseApproach, Perf: testPerformance()}
	ac.Nav = nav.NewState(nil, apt.Elevation+3000, rand.New())
	ac.Sight.State = SightFieldSighted

	cmd := Command{Callsign: "AAL1", Subs: []SubCommand{{Kind: SubApproach, ApproachType: aviation.ApproachVisual, Runway: "16"}}}
	result := exec.Execute(ac, apt, cmd, 0, rand.New())

	if !result.Success {
		t.Fatalf("visual approach rejected after field sighted: %s", result.Error)
	}
}

func TestRequestFieldSightQueuesDeterministicWindow(t *testing.T) {
	pilot := NewPilotAI(DefaultRadioFormatter{}, testLogger())
	ac := &Aircraft{ID: "x", Callsign: "AAL1", Perf: testPerformance()}

	r := rand.New()
	r.Seed(1)
	pilot.RequestSight(ac, "", 10, r)

	if ac.Sight.State != SightQueried {
		t.Fatalf("sight state = %v, want SightQueried", ac.Sight.State)
	}
	if ac.Sight.ResponseAtTick <= 10 || ac.Sight.ResponseAtTick > 16 {
		t.Errorf("responseAtTick = %d, want in (10, 16]", ac.Sight.ResponseAtTick)
	}
}
