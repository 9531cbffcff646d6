// sim/snapshot.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/brunoga/deep"

	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/util"
	"github.com/vice-tracon/engine/wx"
)

// AircraftState is a detached, publicly-visible snapshot of one
// aircraft's state for a given tick. It never aliases the live
// *Aircraft it was copied from, so a consumer holding one across ticks
// can never observe a later tick's mutation.
type AircraftState struct {
	ID       string
	Callsign string
	ICAOType string
	Wake     aviation.WakeCategory
	Squawk   aviation.Squawk

	Position math.Point2LL
	Altitude float32
	Heading  float32
	IAS      float32
	GS       float32
	VS       float32

	Phase Phase
	Plan  FlightPlan

	OnLocalizer  bool
	OnGlideslope bool

	Handoff HandoffState
	Sight   VisualSight

	Trail []math.Point2LL
}

// Snapshot is the full state broadcast produced once per tick.
type Snapshot struct {
	SessionID string

	Aircraft []AircraftState

	Clock ClockState

	Weather      wx.Weather
	RunwayConfig RunwayConfig

	Alerts []Alert

	Score    float32
	Grade    Grade
	Counters ScoringCounters

	ATISText string
	Limits   aviation.TRACONLimits
}

// Snapshot assembles the current state broadcast, copying every field
// so the result is safe to retain across ticks.
func (s *Session) Snapshot() Snapshot {
	acs := s.Manager.All()
	states := make([]AircraftState, 0, len(acs))
	for _, ac := range acs {
		states = append(states, copyAircraftState(ac))
	}

	return Snapshot{
		SessionID:    s.ID,
		Aircraft:     states,
		Clock:        s.Clock.State(),
		Weather:      s.Weather,
		RunwayConfig: s.Scenario.cfg.RunwayConfig,
		Alerts:       append([]Alert(nil), s.lastAlerts...),
		Score:        s.Scoring.Overall,
		Grade:        s.Scoring.Grade,
		Counters:     s.Scoring.Counters,
		ATISText:     s.ATISText,
		Limits:       s.Airport.Limits,
	}
}

// quantizeCoord converts a lat/lon degree value to millidegrees so the
// trail can be delta-encoded as integers before compression.
func quantizeCoord(deg float32) int32 { return int32(deg * 1000) }

// CompressTrail delta-encodes and zstd-compresses one aircraft's flown
// track as a flat [lat,lon,lat,lon,...] millidegree sequence, for
// archival once the aircraft leaves the registry.
func CompressTrail(trail []math.Point2LL) ([]byte, error) {
	samples := make([]int32, 0, len(trail)*2)
	for _, p := range trail {
		samples = append(samples, quantizeCoord(p.Latitude()), quantizeCoord(p.Longitude()))
	}
	return util.CompressTrail(samples)
}

// copyAircraftState builds a detached AircraftState. The trail and flight
// plan are deep-copied (both nest slices/pointers a consumer must not
// alias); the remaining fields are scalars or small value types, cheap
// enough to copy directly.
func copyAircraftState(ac *Aircraft) AircraftState {
	return AircraftState{
		ID:           ac.ID,
		Callsign:     ac.Callsign,
		ICAOType:     ac.ICAOType,
		Wake:         ac.Wake,
		Squawk:       ac.Squawk,
		Position:     ac.Position,
		Altitude:     ac.Altitude,
		Heading:      ac.Heading,
		IAS:          ac.IAS,
		GS:           ac.GS,
		VS:           ac.VS,
		Phase:        ac.Phase,
		Plan:         deep.MustCopy(ac.Plan),
		OnLocalizer:  ac.OnLocalizer,
		OnGlideslope: ac.OnGlideslope,
		Handoff:      ac.Handoff,
		Sight:        ac.Sight,
		Trail:        deep.MustCopy(ac.Trail),
	}
}
