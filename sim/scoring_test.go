package sim

import "testing"

func TestScoringSeparationViolationOncePerPair(t *testing.T) {
	e := NewScoringEngine()
	alert := Alert{ID: "CA:a:b", Kind: AlertSeparation, Aircraft: []string{"a", "b"}}

	for i := 0; i < 10; i++ {
		e.recordAlert(alert)
		e.syncActiveViolations([]Alert{alert})
		e.update()
	}

	if e.Counters.SeparationViolations != 1 {
		t.Fatalf("separationViolations = %d, want 1", e.Counters.SeparationViolations)
	}
	// -5 for the violation, -floor(10/30)=0 for duration: score = 95.
	if e.Overall != 95 {
		t.Fatalf("overall score = %v, want 95", e.Overall)
	}
}

func TestScoringCleanHandoffBonusClamped(t *testing.T) {
	e := NewScoringEngine()
	for i := 0; i < 120; i++ {
		e.recordAircraftHandled(0)
	}
	e.update()

	if e.Counters.AircraftHandled != 120 {
		t.Fatalf("aircraftHandled = %d, want 120", e.Counters.AircraftHandled)
	}
	if e.Overall != 100 {
		t.Fatalf("overall score = %v, want 100 (clamped)", e.Overall)
	}
}

func TestScoringGradeThresholds(t *testing.T) {
	cases := []struct {
		score float32
		grade Grade
	}{
		{90, GradeA},
		{89, GradeB},
		{80, GradeB},
		{79, GradeC},
		{69, GradeD},
		{59, GradeF},
	}
	for _, c := range cases {
		if got := gradeFor(c.score); got != c.grade {
			t.Errorf("gradeFor(%v) = %v, want %v", c.score, got, c.grade)
		}
	}
}

func TestScoringLateTowerHandoffOnce(t *testing.T) {
	e := NewScoringEngine()
	apt := testAirport()
	ac := &Aircraft{
		ID:    "x",
		Plan:  FlightPlan{IsArrival: true},
		Phase: PhaseFinal,
	}
	ac.Position = apt.Runways["16"].Threshold
	ac.Nav = newApproachClearedNav(apt, "16")
	ac.Handoff.InboundOfferedAt = 0

	e.checkHandoffPenalties([]*Aircraft{ac}, apt, 100)
	e.checkHandoffPenalties([]*Aircraft{ac}, apt, 101)
	e.checkHandoffPenalties([]*Aircraft{ac}, apt, 102)
	e.update()

	if e.Counters.HandoffPenaltyPoints != 5 {
		t.Fatalf("handoffPenaltyPoints = %v, want 5 (applied once)", e.Counters.HandoffPenaltyPoints)
	}

	e.checkHandoffPenalties([]*Aircraft{ac}, apt, 110)
	if e.Counters.HandoffPenaltyPoints != 5 {
		t.Fatalf("late-tower penalty should not recur once already fired: got %v", e.Counters.HandoffPenaltyPoints)
	}
}
