// sim/physics.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/nav"
)

// PhysicsEngine is the per-tick kinematic integrator: it advances every
// non-landed airborne aircraft's heading, altitude, speed, and position
// toward its current targets, and handles the ground-roll paths
// separately.
type PhysicsEngine struct {
	Wind func(altitude float32) [2]float32 // (east, north) kt, already direction-corrected
}

const (
	standardRateDegPerSec = 3
	maxBankDeg            = 25
	rollRateDegPerSec     = 5
	altitudeSlewFpmPerSec = 500
	centerlineSnapNmPerTick = 0.04
)

// Update advances one airborne, non-landed aircraft by dt seconds
// (always 1s in the tick pipeline, parameterized for tests). simTime is
// stamped onto HandoffState.FirstAirborneAt the tick a departure rotates.
func (p *PhysicsEngine) Update(ac *Aircraft, apt aviation.Airport, dt float32, simTime float32) {
	if ac.OnGround {
		if ac.Phase == PhaseGround || ac.Phase == PhaseLanded {
			p.updateGroundRollout(ac, apt, dt)
		} else {
			p.updateTakeoffRoll(ac, apt, dt, simTime)
		}
		return
	}

	p.updateHeading(ac, dt)
	p.updateAltitude(ac, apt, dt)
	p.updateSpeed(ac, dt)

	tas := iasToTAS(ac.IAS, ac.Altitude)
	nmPerLon := apt.NMPerLongitude()

	wind := [2]float32{0, 0}
	if p.Wind != nil {
		wind = p.Wind(ac.Altitude)
	}
	headingVec := math.Scale2f(math.HeadingVector(ac.Heading), tas)
	ground := math.Add2f(headingVec, wind)
	ac.GS = math.Length2f(ground)

	moveNm := math.Scale2f(ground, dt/3600) // ground is in kt (nm/hour)
	newPosNm := math.Add2f(math.LL2NM(ac.Position, nmPerLon), moveNm)
	ac.Position = math.NM2LL(newPosNm, nmPerLon)

	if ac.OnLocalizer {
		snapOntoLocalizer(ac, apt, nmPerLon)
	}

	ac.PushTrail()
}

// iasToTAS approximates true airspeed from indicated airspeed and
// pressure altitude: roughly +2% per 1000ft.
func iasToTAS(ias, altitude float32) float32 {
	return ias * (1 + 0.02*altitude/1000)
}

func (p *PhysicsEngine) updateHeading(ac *Aircraft, dt float32) {
	target := ac.TargetHeading
	diff := math.HeadingDifference(ac.Heading, target)
	if math.Abs(diff) < 0.05 {
		ac.Heading = target
		ac.BankAngle = 0
		return
	}

	dir := math.Sign(diff)
	if ac.Nav != nil {
		switch ac.Nav.Clearances.TurnDirection {
		case nav.TurnLeft:
			dir = -1
		case nav.TurnRight:
			dir = 1
		}
	}

	targetBank := dir * maxBankDeg
	if math.Abs(diff) < 10 {
		targetBank = dir * maxBankDeg * math.Abs(diff) / 10
	}

	if ac.BankAngle < targetBank {
		ac.BankAngle = math.Min(ac.BankAngle+rollRateDegPerSec*dt, targetBank)
	} else if ac.BankAngle > targetBank {
		ac.BankAngle = math.Max(ac.BankAngle-rollRateDegPerSec*dt, targetBank)
	}

	turnRate := (math.Abs(ac.BankAngle) / maxBankDeg) * standardRateDegPerSec
	newHeading := math.NormalizeHeading(ac.Heading + dir*turnRate*dt)
	newDiff := math.HeadingDifference(newHeading, target)
	if math.Sign(newDiff) != math.Sign(diff) {
		// Overshot: snap to target and zero the bank.
		ac.Heading = target
		ac.BankAngle = 0
		return
	}
	ac.Heading = newHeading
}

func (p *PhysicsEngine) updateAltitude(ac *Aircraft, apt aviation.Airport, dt float32) {
	var targetVS float32
	if ac.OnGlideslope {
		nominalVS := (ac.GS / 60) * 6076.12 * math.Tan(math.Radians(3)) * -1
		rwy := runwayForApproach(ac, apt)
		glideAlt := ac.TargetAltitude
		if rwy != nil {
			dist := math.NMDistance2LL(ac.Position, rwy.Threshold)
			glideAlt = rwy.Elevation + math.Tan(math.Radians(rwy.GlideslopeAngle))*dist*6076.12
		}
		deviation := ac.Altitude - glideAlt
		correction := -deviation * 5
		targetVS = nominalVS + correction
		if ac.Altitude <= ac.TargetAltitude && targetVS < 0 {
			targetVS = 0
		}
	} else {
		climb := ac.Perf.Climb
		if ac.TargetAltitude > ac.Altitude {
			targetVS = climbRateAt(climb, ac.Altitude)
			if ac.TargetAltitude-ac.Altitude < 10 {
				targetVS = 0
			}
		} else if ac.TargetAltitude < ac.Altitude {
			targetVS = -climb.DescentRate
			if ac.Altitude-ac.TargetAltitude < 10 {
				targetVS = 0
			}
		} else {
			targetVS = 0
		}
	}

	if ac.VS < targetVS {
		ac.VS = math.Min(ac.VS+altitudeSlewFpmPerSec*dt, targetVS)
	} else if ac.VS > targetVS {
		ac.VS = math.Max(ac.VS-altitudeSlewFpmPerSec*dt, targetVS)
	}

	ac.Altitude += ac.VS * dt / 60
	if math.Abs(ac.Altitude-ac.TargetAltitude) < 10 {
		ac.Altitude = ac.TargetAltitude
	}
}

func climbRateAt(c aviation.ClimbRateTable, alt float32) float32 {
	switch {
	case alt < 10000:
		return math.Lerp(alt/10000, c.Rate0, c.Rate10k)
	case alt < 24000:
		return math.Lerp((alt-10000)/14000, c.Rate10k, c.Rate24k)
	case alt < 35000:
		return math.Lerp((alt-24000)/11000, c.Rate24k, c.Rate35k)
	default:
		return c.Rate35k
	}
}

func (p *PhysicsEngine) updateSpeed(ac *Aircraft, dt float32) {
	target := ac.ClampSpeedTarget(ac.TargetSpeed)
	if ac.IAS < target {
		ac.IAS = math.Min(ac.IAS+2*dt, target)
	} else if ac.IAS > target {
		ac.IAS = math.Max(ac.IAS-1.5*dt, target)
	}
}

func runwayForApproach(ac *Aircraft, apt aviation.Airport) *aviation.Runway {
	if ac.Nav == nil || ac.Nav.Clearances.Approach == nil {
		return nil
	}
	if rwy, ok := apt.Runways[ac.Nav.Clearances.Approach.Runway]; ok {
		return &rwy
	}
	return nil
}

func snapOntoLocalizer(ac *Aircraft, apt aviation.Airport, nmPerLon float32) {
	rwy := runwayForApproach(ac, apt)
	if rwy == nil {
		return
	}
	cl := rwy.ExtendedCenterline(nmPerLon)
	a := math.LL2NM(cl[0], nmPerLon)
	b := math.LL2NM(cl[1], nmPerLon)
	p := math.LL2NM(ac.Position, nmPerLon)

	d := math.Sub2f(b, a)
	len := math.Length2f(d)
	if len < 1e-6 {
		return
	}
	t := math.Dot(math.Sub2f(p, a), d) / (len * len)
	proj := math.Add2f(a, math.Scale2f(d, t))

	toProj := math.Sub2f(proj, p)
	dist := math.Length2f(toProj)
	if dist <= centerlineSnapNmPerTick {
		ac.Position = math.NM2LL(proj, nmPerLon)
	} else {
		snapped := math.Add2f(p, math.Scale2f(math.Normalize2f(toProj), centerlineSnapNmPerTick))
		ac.Position = math.NM2LL(snapped, nmPerLon)
	}
}

const takeoffAccelKtPerSec = 4

func (p *PhysicsEngine) updateTakeoffRoll(ac *Aircraft, apt aviation.Airport, dt float32, simTime float32) {
	rwy, ok := apt.Runways[ac.Plan.Runway]
	if !ok {
		return
	}
	rotationSpeed := math.Min(ac.Perf.Speed.Vapp+20, 155)
	ac.Heading = rwy.Heading
	ac.IAS = math.Min(ac.IAS+takeoffAccelKtPerSec*dt, rotationSpeed)
	ac.GS = ac.IAS

	nmPerLon := apt.NMPerLongitude()
	moveNm := ac.GS * dt / 3600
	p2 := math.Add2f(math.LL2NM(ac.Position, nmPerLon), math.Scale2f(math.HeadingVector(rwy.Heading), moveNm))
	ac.Position = projectOntoRunway(p2, rwy, nmPerLon)

	if ac.IAS >= rotationSpeed {
		ac.OnGround = false
		ac.Phase = PhaseDeparture
		ac.Handoff.FirstAirborneAt = simTime
	}
}

func (p *PhysicsEngine) updateGroundRollout(ac *Aircraft, apt aviation.Airport, dt float32) {
	rwy, ok := apt.Runways[ac.RunwayOccupying]
	if !ok {
		rwy, ok = apt.Runways[ac.Plan.Runway]
	}
	taxiTarget := float32(15)
	if ac.GS > 60 {
		ac.GS = math.Max(ac.GS-4*dt, taxiTarget)
	} else {
		ac.GS = math.Max(ac.GS-2*dt, taxiTarget)
	}
	ac.IAS = ac.GS

	if !ok {
		return
	}
	nmPerLon := apt.NMPerLongitude()
	moveNm := ac.GS * dt / 3600
	ac.RolloutDistanceNm += moveNm
	p2 := math.Add2f(math.LL2NM(ac.Position, nmPerLon), math.Scale2f(math.HeadingVector(rwy.Heading), moveNm))
	ac.Position = projectOntoRunway(p2, rwy, nmPerLon)
}

func projectOntoRunway(pNm [2]float32, rwy aviation.Runway, nmPerLon float32) math.Point2LL {
	a := math.LL2NM(rwy.Threshold, nmPerLon)
	b := math.LL2NM(rwy.End, nmPerLon)
	d := math.Sub2f(b, a)
	len2 := math.Dot(d, d)
	if len2 < 1e-9 {
		return math.NM2LL(pNm, nmPerLon)
	}
	t := math.Dot(math.Sub2f(pNm, a), d) / len2
	proj := math.Add2f(a, math.Scale2f(d, t))
	return math.NM2LL(proj, nmPerLon)
}
