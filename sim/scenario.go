// sim/scenario.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/log"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/nav"
	"github.com/vice-tracon/engine/rand"
)

// Density is the traffic-density schedule a scenario runs at.
type Density int

const (
	DensityLight Density = iota
	DensityModerate
	DensityHeavy
)

// meanIntervalSeconds returns the mean spawn interval an exponential
// distribution is drawn from for this density.
func (d Density) meanIntervalSeconds() float32 {
	switch d {
	case DensityHeavy:
		return 90
	case DensityModerate:
		return 180
	default:
		return 300
	}
}

// ScenarioType gates which spawn paths a ScenarioGenerator runs.
type ScenarioType int

const (
	ScenarioArrivals ScenarioType = iota
	ScenarioDepartures
	ScenarioMixed
)

// RunwayConfig names the active arrival and departure runways.
type RunwayConfig struct {
	Arrival   []string
	Departure []string
}

// ScenarioConfig is the static input a ScenarioGenerator is created
// with.
type ScenarioConfig struct {
	Airport      aviation.Airport
	Density      Density
	Type         ScenarioType
	RunwayConfig RunwayConfig
}

// ScenarioGenerator spawns arrival and departure traffic per the
// configured density schedule and deconfliction rules. It owns only its
// own spawn-timer state; spawned aircraft are handed to AircraftManager
// immediately.
type ScenarioGenerator struct {
	cfg ScenarioConfig

	nextArrivalAt   float32
	nextDepartureAt float32

	arrivalSeq int

	lg *log.Logger
}

func NewScenarioGenerator(cfg ScenarioConfig, lg *log.Logger) *ScenarioGenerator {
	return &ScenarioGenerator{cfg: cfg, lg: lg}
}

const arrivalSeparationNm = 10

// Update spawns at most one arrival and one departure per tick, subject
// to the exponential inter-arrival schedule and deconfliction rules.
func (g *ScenarioGenerator) Update(mgr *AircraftManager, simTime float32, r *rand.Rand) {
	if g.cfg.Type == ScenarioArrivals || g.cfg.Type == ScenarioMixed {
		g.maybeSpawnArrival(mgr, simTime, r)
	}
	if g.cfg.Type == ScenarioDepartures || g.cfg.Type == ScenarioMixed {
		g.maybeSpawnDeparture(mgr, simTime, r)
	}
}

func (g *ScenarioGenerator) maybeSpawnArrival(mgr *AircraftManager, simTime float32, r *rand.Rand) {
	if simTime < g.nextArrivalAt {
		return
	}

	star, entry, ok := g.pickSTAR(r)
	if !ok {
		return
	}

	for _, ac := range mgr.All() {
		if ac.Plan.STAR == star && math.NMDistance2LL(ac.Position, entry.Location) < arrivalSeparationNm {
			// Deconfliction: retry next tick rather than spawn too tight.
			return
		}
	}
	g.nextArrivalAt = simTime + r.Exponential(1/g.cfg.Density.meanIntervalSeconds())

	g.arrivalSeq++
	perf := defaultPerformance()
	plan := FlightPlan{
		Origin:      "XXXX",
		Destination: g.cfg.Airport.ICAO,
		STAR:        star,
		IsArrival:   true,
	}
	callsign := fmt.Sprintf("ARV%d", g.arrivalSeq)
	route := g.cfg.Airport.STARs[star].Legs

	finalAlt := g.cfg.Airport.Elevation + 2000
	ac := mgr.Spawn(SpawnParams{
		Callsign: callsign,
		ICAOType: perf.ICAOType,
		Perf:     perf,
		Plan:     plan,
		Position: entry,
	})
	ac.Altitude = entryAltitude(route)
	ac.IAS = perf.Speed.CruiseIAS
	ac.GS = ac.IAS
	ac.Heading = math.BearingHeading(entry.Location, g.cfg.Airport.Location, g.cfg.Airport.NMPerLongitude())
	ac.TargetHeading, ac.TargetAltitude, ac.TargetSpeed = ac.Heading, ac.Altitude, ac.IAS
	ac.Nav = nav.NewState(route, finalAlt, r)
	ac.Handoff.Inbound = InboundHandoffOffered
	ac.Handoff.InboundOfferedAt = simTime
	g.lg.Infof("spawned arrival %s via %s", callsign, star)
}

func (g *ScenarioGenerator) pickSTAR(r *rand.Rand) (string, aviation.Fix, bool) {
	if len(g.cfg.Airport.STARs) == 0 {
		return "", aviation.Fix{}, false
	}
	names := make([]string, 0, len(g.cfg.Airport.STARs))
	for n := range g.cfg.Airport.STARs {
		names = append(names, n)
	}
	name := names[r.Intn(len(names))]
	legs := g.cfg.Airport.STARs[name].Legs
	if len(legs) == 0 {
		return "", aviation.Fix{}, false
	}
	return name, legs[0], true
}

func entryAltitude(route []aviation.Fix) float32 {
	for _, f := range route {
		if f.Altitude != nil {
			return f.Altitude.TargetAltitude(17000)
		}
	}
	return 17000
}

func (g *ScenarioGenerator) maybeSpawnDeparture(mgr *AircraftManager, simTime float32, r *rand.Rand) {
	if simTime < g.nextDepartureAt {
		return
	}
	g.nextDepartureAt = simTime + r.Exponential(1/g.cfg.Density.meanIntervalSeconds())

	runway, ok := g.pickDepartureRunway(mgr)
	if !ok {
		return
	}

	rwy := g.cfg.Airport.Runways[runway]
	perf := defaultPerformance()
	g.arrivalSeq++
	callsign := fmt.Sprintf("DEP%d", g.arrivalSeq)
	plan := FlightPlan{
		Origin:      g.cfg.Airport.ICAO,
		Destination: "XXXX",
		Runway:      runway,
		IsArrival:   false,
	}
	ac := mgr.Spawn(SpawnParams{
		Callsign: callsign,
		ICAOType: perf.ICAOType,
		Perf:     perf,
		Plan:     plan,
		Position: aviation.Fix{Name: runway, Location: rwy.Threshold},
	})
	ac.OnGround = true
	ac.Phase = PhaseDeparture
	ac.Heading = rwy.Heading
	ac.TargetHeading = rwy.Heading
	ac.Nav = nav.NewState(nil, 17000, r)
	g.lg.Infof("spawned departure %s from runway %s", callsign, runway)
}

// pickDepartureRunway returns a configured departure runway that is
// neither occupied nor conflicted by an arrival on short final.
func (g *ScenarioGenerator) pickDepartureRunway(mgr *AircraftManager) (string, bool) {
	for _, runway := range g.cfg.RunwayConfig.Departure {
		rwy, ok := g.cfg.Airport.Runways[runway]
		if !ok {
			continue
		}
		occupied := false
		shortFinalConflict := false
		for _, ac := range mgr.All() {
			if ac.RunwayOccupying == runway {
				occupied = true
				break
			}
			if r, ok := runwayOf(ac); ok && r == runway {
				dist := math.NMDistance2LL(ac.Position, rwy.Threshold)
				if dist < 5 && (ac.Phase == PhaseApproach || ac.Phase == PhaseFinal) {
					shortFinalConflict = true
					break
				}
			}
		}
		if !occupied && !shortFinalConflict {
			return runway, true
		}
	}
	return "", false
}

// defaultPerformance is the fallback performance profile used when a
// scenario spawns traffic without a per-type table configured; a real
// deployment would resolve this from the filed aircraft type instead.
func defaultPerformance() aviation.AircraftPerformance {
	return aviation.AircraftPerformance{
		ICAOType: "B738",
		Wake:     aviation.WakeLarge,
		Speed: aviation.SpeedEnvelope{
			VminFlaps:     110,
			Vmo:           340,
			VmaxBelow10k:  250,
			CruiseIAS:     280,
			Vapp:          135,
			RotationSpeed: 150,
			TaxiSpeed:     15,
		},
		Climb: aviation.ClimbRateTable{
			Rate0: 2500, Rate10k: 2200, Rate24k: 1500, Rate35k: 800,
			DescentRate: 1500,
		},
		Ceiling: 41000,
	}
}
