// sim/manager.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"strings"

	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/log"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/util"
)

// AircraftManager owns aircraft lifecycle: registration, lookup, and
// cleanup on airspace exit or ground-roll completion. It is the sole
// owner of the aircraft registry for a session. Reads (All, GetByID,
// GetByCallsign) can arrive from a Snapshot call on a goroutine other
// than the one running the tick, so the registry is guarded by mu.
type AircraftManager struct {
	mu util.LoggingMutex

	byID          map[string]*Aircraft
	insertOrder   []string // first-insertion order, for deterministic substring-match tiebreaks
	squawks       *aviation.SquawkAllocator
	groundedTicks map[string]int // ticks spent in phase=ground, for the 20-tick removal grace

	lg *log.Logger
}

func NewAircraftManager(lg *log.Logger) *AircraftManager {
	return &AircraftManager{
		byID:          make(map[string]*Aircraft),
		squawks:       aviation.NewSquawkAllocator(),
		groundedTicks: make(map[string]int),
		lg:            lg,
	}
}

// SpawnParams is the input to Spawn.
type SpawnParams struct {
	Callsign string
	ICAOType string
	Perf     aviation.AircraftPerformance
	Plan     FlightPlan
	Position aviation.Fix // location + name reused for convenience
}

// Spawn creates and registers a new aircraft with a freshly allocated
// id and squawk code.
func (m *AircraftManager) Spawn(p SpawnParams) *Aircraft {
	ac := &Aircraft{
		ID:       util.NewID(),
		Callsign: p.Callsign,
		ICAOType: p.ICAOType,
		Wake:     p.Perf.Wake,
		Squawk:   m.squawks.Next(),
		Position: p.Position.Location,
		Perf:     p.Perf,
		Plan:     p.Plan,
		Phase:    util.Select(p.Plan.IsArrival, PhaseCruise, PhaseGround),
	}

	m.mu.Lock(m.lg)
	m.byID[ac.ID] = ac
	m.insertOrder = append(m.insertOrder, ac.ID)
	m.mu.Unlock(m.lg)

	m.lg.Infof("spawned %s (%s)", ac.Callsign, ac.ICAOType)
	return ac
}

// GetByID looks up an aircraft by its stable id.
func (m *AircraftManager) GetByID(id string) (*Aircraft, bool) {
	m.mu.Lock(m.lg)
	defer m.mu.Unlock(m.lg)
	ac, ok := m.byID[id]
	return ac, ok
}

// GetByCallsign resolves a callsign using exact match first, then a
// case-insensitive substring match against first-insertion order (the
// first inserted aircraft matching wins, so repeated queries against a
// stable registry are deterministic).
func (m *AircraftManager) GetByCallsign(callsign string) (*Aircraft, bool) {
	m.mu.Lock(m.lg)
	defer m.mu.Unlock(m.lg)

	for _, id := range m.insertOrder {
		ac, ok := m.byID[id]
		if ok && ac.Callsign == callsign {
			return ac, true
		}
	}
	lower := strings.ToLower(callsign)
	for _, id := range m.insertOrder {
		ac, ok := m.byID[id]
		if ok && strings.Contains(strings.ToLower(ac.Callsign), lower) {
			return ac, true
		}
	}
	return nil, false
}

// Remove deletes an aircraft from the registry immediately.
func (m *AircraftManager) Remove(id string) {
	m.mu.Lock(m.lg)
	defer m.mu.Unlock(m.lg)

	delete(m.byID, id)
	delete(m.groundedTicks, id)
	for i, oid := range m.insertOrder {
		if oid == id {
			m.insertOrder = append(m.insertOrder[:i], m.insertOrder[i+1:]...)
			break
		}
	}
}

// All returns every live aircraft, in first-insertion order.
func (m *AircraftManager) All() []*Aircraft {
	m.mu.Lock(m.lg)
	defer m.mu.Unlock(m.lg)

	acs := make([]*Aircraft, 0, len(m.insertOrder))
	for _, id := range m.insertOrder {
		if ac, ok := m.byID[id]; ok {
			acs = append(acs, ac)
		}
	}
	return acs
}

const groundLingerTicks = 20
const taxiSpeedKt = 16

// Cleanup walks the registry and removes aircraft per the landed and
// airspace-exit rules.
func (m *AircraftManager) Cleanup(apt aviation.Airport) {
	radius := apt.Limits.RadiusNm
	if radius == 0 {
		radius = 100
	}
	for _, ac := range m.All() {
		if dist := math.NMDistance2LL(ac.Position, apt.Location); dist > radius {
			m.lg.Infof("%s exceeded airspace radius, removing", ac.Callsign)
			m.Remove(ac.ID)
			continue
		}

		if ac.Phase == PhaseLanded {
			rolledEnough := ac.RunwayOccupying == "" ||
				ac.RolloutDistanceNm >= (2.0/3.0)*runwayLengthNm(apt, ac.RunwayOccupying)
			decelerated := ac.GS <= taxiSpeedKt
			if rolledEnough || decelerated {
				ac.Phase = PhaseGround
				ac.OnGround = true
			}
		}

		if ac.Phase == PhaseGround {
			m.groundedTicks[ac.ID]++
			if m.groundedTicks[ac.ID] >= groundLingerTicks {
				m.Remove(ac.ID)
			}
		}
	}
}

func runwayLengthNm(apt aviation.Airport, runwayID string) float32 {
	if rwy, ok := apt.Runways[runwayID]; ok {
		return rwy.LengthFt / 6076.12
	}
	return 0
}
