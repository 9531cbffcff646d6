// sim/scoring.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/math"
)

// Grade is the letter grade derived from the overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// ScoringCounters are the raw tallies the overall score is derived from.
type ScoringCounters struct {
	SeparationViolations   int
	ConflictAlerts         int
	AircraftHandled        int
	MissedHandoffs         int
	CommandsIssued         int
	ViolationDurationTicks int
	TotalDelaySeconds      float32
	BadCommandPoints       float32
	HandoffPenaltyPoints   float32
}

// ScoringEngine tracks violations, handoff timing, and command activity
// for a session, deriving an overall 0-100 score and letter grade.
type ScoringEngine struct {
	Overall  float32
	Grade    Grade
	Counters ScoringCounters

	activeViolations map[string]bool
	cleanHandoffs    int
	msawIncidents    int

	lateTowerPenalized    map[string]bool
	missedTowerPenalized  map[string]bool
	lateCenterPenalized   map[string]bool
	missedCenterPenalized map[string]bool
	missedInboundFlagged  map[string]bool
}

func NewScoringEngine() *ScoringEngine {
	e := &ScoringEngine{}
	e.reset()
	return e
}

// reset clears all memoisation so the engine can rescore a new scenario
// fresh.
func (e *ScoringEngine) reset() {
	e.Overall = 100
	e.Grade = GradeA
	e.Counters = ScoringCounters{}
	e.cleanHandoffs = 0
	e.activeViolations = make(map[string]bool)
	e.msawIncidents = 0
	e.lateTowerPenalized = make(map[string]bool)
	e.missedTowerPenalized = make(map[string]bool)
	e.lateCenterPenalized = make(map[string]bool)
	e.missedCenterPenalized = make(map[string]bool)
	e.missedInboundFlagged = make(map[string]bool)
}

// recordAlert applies the event-hook deductions for a freshly raised
// conflict-detector alert: increments the alert count and, for
// separation/MSAW alerts, tracks the implicated pair/id as an active
// violation (counted once).
func (e *ScoringEngine) recordAlert(a Alert) {
	e.Counters.ConflictAlerts++
	switch a.Kind {
	case AlertSeparation:
		key := violationKey(a)
		if !e.activeViolations[key] {
			e.activeViolations[key] = true
			e.Counters.SeparationViolations++
		}
	case AlertMSAW:
		key := violationKey(a)
		if !e.activeViolations[key] {
			e.activeViolations[key] = true
			e.msawIncidents++
		}
	}
}

func violationKey(a Alert) string {
	if len(a.Aircraft) == 2 {
		return pairKey("V", a.Aircraft[0], a.Aircraft[1])
	}
	if len(a.Aircraft) == 1 {
		return "V:" + a.Aircraft[0]
	}
	return a.ID
}

// syncActiveViolations reconciles the active-violation set against the
// currently live alert set so resolved conflicts stop accruing duration,
// and accumulates duration ticks for anything still active.
func (e *ScoringEngine) syncActiveViolations(live []Alert) {
	stillActive := make(map[string]bool, len(live))
	for _, a := range live {
		if a.Kind == AlertSeparation || a.Kind == AlertMSAW {
			key := violationKey(a)
			stillActive[key] = true
			if e.activeViolations[key] {
				e.Counters.ViolationDurationTicks++
			}
		}
	}
	for key := range e.activeViolations {
		if !stillActive[key] {
			e.clearViolation(key)
		}
	}
	for key := range stillActive {
		e.activeViolations[key] = true
	}
}

func (e *ScoringEngine) clearViolation(key string) {
	delete(e.activeViolations, key)
}

func (e *ScoringEngine) recordMissedHandoff() {
	e.Counters.MissedHandoffs++
}

// recordAircraftHandled applies the clean-handoff bonus when the delay at
// handoff time was under 5 minutes.
func (e *ScoringEngine) recordAircraftHandled(delaySeconds float32) {
	e.Counters.AircraftHandled++
	e.Counters.TotalDelaySeconds += delaySeconds
	if delaySeconds < 300 {
		e.cleanHandoffs++
	}
}

func (e *ScoringEngine) recordCommand() {
	e.Counters.CommandsIssued++
}

func (e *ScoringEngine) recordBadCommand(points float32) {
	e.Counters.BadCommandPoints += points
}

const (
	towerLateTicks     = 90
	departureLateTicks = 300
	departureMissedNm  = 40
	centerHandoffFL    = 18000
	shortFinalGateNm   = 2
	inboundMissedTicks = 120
)

// checkHandoffPenalties implements the per-tick late/missed tower and
// center handoff assessment against the current aircraft list.
func (e *ScoringEngine) checkHandoffPenalties(acs []*Aircraft, apt aviation.Airport, currentTick int) {
	for _, ac := range acs {
		e.checkTowerPenalty(ac, apt, currentTick)
		e.checkCenterPenalty(ac, currentTick)
		e.checkCenterMissed(ac, apt)
		e.checkInboundMissed(ac, currentTick)
	}
}

// checkInboundMissed flags an arrival whose inbound handoff offer sits
// unaccepted for too long: the controller never ran Session.AcceptHandoff,
// so the aircraft stayed excluded from separation and airspace conflict
// detection (sim/conflict.go) the whole time it was uncontrolled.
func (e *ScoringEngine) checkInboundMissed(ac *Aircraft, currentTick int) {
	if ac.Handoff.Inbound != InboundHandoffOffered || e.missedInboundFlagged[ac.ID] {
		return
	}
	if currentTick-int(ac.Handoff.InboundOfferedAt) >= inboundMissedTicks {
		e.missedInboundFlagged[ac.ID] = true
		e.recordMissedHandoff()
	}
}

func (e *ScoringEngine) checkTowerPenalty(ac *Aircraft, apt aviation.Airport, currentTick int) {
	if !ac.Plan.IsArrival || ac.Handoff.HandingOff {
		return
	}

	elapsed := currentTick - int(ac.Handoff.InboundOfferedAt)

	if ac.Phase == PhaseFinal && elapsed >= towerLateTicks {
		if rwy, ok := runwayOf(ac); ok {
			if r, ok := apt.Runways[rwy]; ok && math.NMDistance2LL(ac.Position, r.Threshold) <= shortFinalGateNm {
				if !e.lateTowerPenalized[ac.ID] {
					e.lateTowerPenalized[ac.ID] = true
					e.Counters.HandoffPenaltyPoints += 5
				}
			}
		}
	}

	if ac.Phase == PhaseLanded && !e.missedTowerPenalized[ac.ID] {
		e.missedTowerPenalized[ac.ID] = true
		e.Counters.HandoffPenaltyPoints += 10
	}
}

func (e *ScoringEngine) checkCenterPenalty(ac *Aircraft, currentTick int) {
	if ac.Plan.IsArrival || ac.Handoff.HandingOff {
		return
	}

	airborne := currentTick - int(ac.Handoff.FirstAirborneAt)
	if ac.Altitude >= centerHandoffFL && airborne >= departureLateTicks && !e.lateCenterPenalized[ac.ID] {
		e.lateCenterPenalized[ac.ID] = true
		e.Counters.HandoffPenaltyPoints += 5
	}
}

// checkCenterMissed assesses the beyond-40nm missed-center-handoff
// penalty; called with the airport so distance can be computed.
func (e *ScoringEngine) checkCenterMissed(ac *Aircraft, apt aviation.Airport) {
	if ac.Plan.IsArrival || ac.Handoff.HandingOff || e.missedCenterPenalized[ac.ID] {
		return
	}
	if math.NMDistance2LL(ac.Position, apt.Location) > departureMissedNm {
		e.missedCenterPenalized[ac.ID] = true
		e.Counters.HandoffPenaltyPoints += 10
	}
}

// update recomputes the overall score from scratch every tick per the
// deterministic additive penalty/bonus model.
func (e *ScoringEngine) update() {
	score := float32(100)
	score -= 5 * float32(e.Counters.SeparationViolations)
	score -= float32(e.Counters.ViolationDurationTicks / 30)
	score -= 3 * float32(e.msawIncidents)
	score -= 2 * float32(e.Counters.MissedHandoffs)
	score -= e.Counters.HandoffPenaltyPoints
	score -= e.Counters.BadCommandPoints

	if e.Counters.AircraftHandled > 0 {
		avgDelay := e.Counters.TotalDelaySeconds / float32(e.Counters.AircraftHandled)
		if avgDelay > 300 {
			score -= (avgDelay - 300) / 120
		}
	}
	score += float32(e.cleanHandoffs)

	e.Overall = math.Clamp(score, 0, 100)
	e.Grade = gradeFor(e.Overall)
}

func gradeFor(score float32) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}
