// nav/nav.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/rand"
	"github.com/vice-tracon/engine/wx"
)

type InterceptState int

const (
	NotIntercepting InterceptState = iota
	InitialHeading
	TurningToJoin
	OnApproachCourse
)

// Event is the outcome of a FlightPlanExecutor tick that the owning
// PilotAI must act on beyond simply adopting new targets.
type Event int

const (
	EventNone Event = iota
	EventLanded
	EventGoAround
	EventFieldInSightAutoReport
)

// Kinematics is the subset of an aircraft's current physical state the
// executor needs; it does not own or mutate this state.
type Kinematics struct {
	Position math.Point2LL
	Heading  float32
	Altitude float32
	IAS      float32
	GS       float32
}

// Targets is what the executor decided the autopilot should fly toward
// this tick.
type Targets struct {
	Heading float32
	Altitude float32
	Speed    float32
}

// FollowTarget is the resolved position of a visually-sequenced leader
// aircraft, along with the in-trail spacing the follower must hold
// behind it; the caller (PilotAI) resolves the callsign named by
// ApproachClearance.FollowTraffic to this each tick, since State itself
// has no access to the rest of the traffic.
type FollowTarget struct {
	Position        math.Point2LL
	MinSeparationNm float32
}

// State is the persistent navigation state for one aircraft: the
// clearances in effect, its assigned route, and approach-capture
// progress. It is owned by the aircraft for its lifetime.
type State struct {
	Clearances Clearances

	Waypoints       []aviation.Fix
	CurrentFixIndex int
	FinalAltitude   float32

	Hold *FlyHold

	OnLocalizer       bool
	OnGlideslope      bool
	InterceptState    InterceptState
	PassedApproachFix bool

	Rand *rand.Rand
}

// NewState creates navigation state for a freshly spawned aircraft
// following the given route.
func NewState(route []aviation.Fix, finalAltitude float32, r *rand.Rand) *State {
	return &State{
		Waypoints:     route,
		FinalAltitude: finalAltitude,
		Rand:          r,
	}
}

// DirectTo clears any deferred route following and points the aircraft
// straight at the named fix, dropping procedure-climb/descend flags.
func (s *State) DirectTo(fix aviation.Fix) {
	s.Waypoints = []aviation.Fix{fix}
	s.CurrentFixIndex = 0
	s.Clearances.DirectFix = fix.Name
	s.Clearances.ClearHeadingProcedureFlags()
}

// AssignHeading clears procedure flags, consistent with the rule that a
// vector supersedes lateral-procedure navigation.
func (s *State) AssignHeading(hdg float32) {
	h := math.NormalizeHeading(hdg)
	s.Clearances.AssignedHeading = &h
	s.Clearances.ClearHeadingProcedureFlags()
}

func currentFix(s *State) (aviation.Fix, bool) {
	if s.CurrentFixIndex < 0 || s.CurrentFixIndex >= len(s.Waypoints) {
		return aviation.Fix{}, false
	}
	return s.Waypoints[s.CurrentFixIndex], true
}

// procedureAltitudeConstraint selects the next applicable altitude
// restriction along the route ahead of (and including) the current fix,
// per the "descend/climb via procedure" rule: the lowest at-or-above
// restriction not yet satisfied.
func procedureAltitudeConstraint(s *State, currentAltitude float32, descending bool) (aviation.AltitudeRestriction, bool) {
	for i := s.CurrentFixIndex; i < len(s.Waypoints); i++ {
		wp := s.Waypoints[i]
		if wp.Altitude == nil {
			continue
		}
		r := *wp.Altitude
		target := r.TargetAltitude(currentAltitude)
		if descending && target < currentAltitude-1 {
			return r, true
		}
		if !descending && target > currentAltitude+1 {
			return r, true
		}
		if r.Kind == aviation.RestrictAt {
			return r, true
		}
	}
	return aviation.AltitudeRestriction{}, false
}

// Update runs the flight plan executor priority chain for one tick and
// returns the new targets plus any event that occurred.
func (s *State) Update(k Kinematics, apt aviation.Airport, elapsedSeconds float32, followTraffic *FollowTarget) (Targets, Event) {
	nmPerLon := apt.NMPerLongitude()
	t := Targets{
		Heading:  k.Heading,
		Altitude: k.Altitude,
		Speed:    k.IAS,
	}
	if s.Clearances.AssignedAltitude != nil {
		t.Altitude = *s.Clearances.AssignedAltitude
	}
	if s.Clearances.AssignedSpeed != nil {
		t.Speed = *s.Clearances.AssignedSpeed
	}
	if s.Clearances.AssignedHeading != nil {
		t.Heading = *s.Clearances.AssignedHeading
	}

	// 1. Holding.
	if s.Hold != nil {
		if math.Distance2f(math.LL2NM(k.Position, nmPerLon), math.LL2NM(s.Hold.Location, nmPerLon)) < 1 {
			s.Hold.ReachedFix(elapsedSeconds)
		}
		t.Heading = s.Hold.Advance(elapsedSeconds)
		return t, EventNone
	}

	// 2. Approach active. Once established on the localizer, the approach
	// alone decides the targets.
	if c := s.Clearances.Approach; c != nil && c.Cleared {
		ev := s.flyApproach(&t, k, apt, nmPerLon, c, followTraffic)
		if ev != EventNone || s.OnLocalizer {
			return t, ev
		}
	}

	// 3. Maintain-until-established overrides descent/climb clearance
	// while not yet on the localizer.
	if alt := s.Clearances.MaintainUntilEstablished; alt != nil && !s.OnLocalizer {
		t.Altitude = *alt
		return t, EventNone
	}

	// 4. Descend/climb via procedure.
	descending := s.Clearances.DescendViaSTAR
	if (s.Clearances.DescendViaSTAR || s.Clearances.ClimbViaSID) && s.Clearances.AssignedAltitude == nil {
		if r, ok := procedureAltitudeConstraint(s, k.Altitude, descending); ok {
			t.Altitude = r.TargetAltitude(k.Altitude)
		}
	}

	// 5 & 6. Direct-to fix / route following, only when no heading is
	// assigned (a heading clearance always wins laterally).
	if s.Clearances.AssignedHeading == nil && s.Hold == nil {
		if fix, ok := currentFix(s); ok {
			brg := math.BearingHeading(k.Position, fix.Location, nmPerLon)
			t.Heading = brg
			dist := math.NMDistance2LL(k.Position, fix.Location)
			if dist < 0.5 {
				s.CurrentFixIndex++
				if s.Clearances.DirectFix == fix.Name {
					s.Clearances.DirectFix = ""
				}
			}
		}
	}

	return t, EventNone
}

// flyApproach implements priority-2's ILS/RNAV/visual capture and
// DA/MDA logic, mutating t in place, and returns EventLanded/GoAround
// when the approach concludes.
func (s *State) flyApproach(t *Targets, k Kinematics, apt aviation.Airport, nmPerLon float32, c *ApproachClearance, followTraffic *FollowTarget) Event {
	rwy, ok := apt.Runways[c.Runway]
	if !ok {
		return EventNone
	}

	if c.Type == aviation.ApproachVisual {
		target := rwy.Threshold
		if c.FollowTraffic != "" && s.followTrafficVector(t, k, nmPerLon, rwy, followTraffic) {
			return EventNone
		}
		t.Heading = math.BearingHeading(k.Position, target, nmPerLon)
		return s.checkLandingAndDA(t, k, rwy, apt, 0)
	}

	// ILS / RNAV lateral capture.
	cl := rwy.ExtendedCenterline(nmPerLon)
	localizerCourse := math.NormalizeHeading(rwy.Heading)
	pLocal := math.LL2NM(k.Position, nmPerLon)
	crossTrack := math.PointLineDistance(pLocal, math.LL2NM(cl[0], nmPerLon), math.LL2NM(cl[1], nmPerLon))
	longitudinal := math.NMDistance2LL(k.Position, rwy.Threshold)

	if !s.OnLocalizer {
		t.Heading = math.BearingHeading(k.Position, rwy.Threshold, nmPerLon)
		within30 := math.HeadingSignedTurn(k.Heading, localizerCourse) <= 30
		if within30 && crossTrack <= 2 && longitudinal <= 25 {
			s.OnLocalizer = true
			s.InterceptState = OnApproachCourse
			s.Clearances.AssignedHeading = nil
		}
		return EventNone
	}

	t.Heading = localizerCourse

	if longitudinal <= 10 && !s.OnGlideslope {
		glideAlt := wx.GlideslopeAltitude(rwy.Elevation, rwy.GlideslopeAngle, longitudinal)
		if math.Abs(k.Altitude-glideAlt) <= 100 {
			s.OnGlideslope = true
		}
	}
	if s.OnGlideslope {
		glideAlt := wx.GlideslopeAltitude(rwy.Elevation, rwy.GlideslopeAngle, longitudinal)
		t.Altitude = glideAlt
	}

	daAboveField := float32(200)
	if c.Type == aviation.ApproachRNAV {
		daAboveField = 400
	}
	return s.checkLandingAndDA(t, k, rwy, apt, daAboveField)
}

// followTrafficVector vectors toward a point on the extended centerline
// trailing the followed traffic by at least its required wake
// separation; it returns false (falling back to a direct vector to the
// threshold) when the traffic's position hasn't been resolved, e.g. the
// leader has already landed or left the TRACON.
func (s *State) followTrafficVector(t *Targets, k Kinematics, nmPerLon float32, rwy aviation.Runway, followTraffic *FollowTarget) bool {
	if followTraffic == nil {
		return false
	}
	finalCourseReciprocal := math.NormalizeHeading(rwy.Heading + 180)
	followPoint := math.Offset2LL(followTraffic.Position, finalCourseReciprocal, followTraffic.MinSeparationNm, nmPerLon)
	t.Heading = math.BearingHeading(k.Position, followPoint, nmPerLon)
	return true
}

// checkLandingAndDA implements the DA/MDA protocol and landing
// detection once the aircraft is tracking an approach.
func (s *State) checkLandingAndDA(t *Targets, k Kinematics, rwy aviation.Runway, apt aviation.Airport, daAboveField float32) Event {
	longitudinal := math.NMDistance2LL(k.Position, rwy.Threshold)

	if s.OnGlideslope && longitudinal < 0.5 && math.Abs(k.Altitude-rwy.Elevation) <= 50 {
		t.Speed = 15
		return EventLanded
	}

	if daAboveField > 0 {
		da := rwy.Elevation + daAboveField
		if math.Abs(k.Altitude-da) <= 50 {
			return EventGoAround // caller checks weather visibility rule before honoring this
		}
	}

	return EventNone
}

// GoAround applies the go-around effect: clears approach state, sets
// climb targets toward the missed-approach altitude (or field elev+2000
// as a fallback), and resets lateral guidance to runway heading.
func (s *State) GoAround(rwy aviation.Runway, missedAltitude float32, vapp float32) Targets {
	s.Clearances.Approach = nil
	s.OnLocalizer = false
	s.OnGlideslope = false
	s.InterceptState = NotIntercepting
	s.PassedApproachFix = false

	alt := missedAltitude
	if alt == 0 {
		alt = rwy.Elevation + 2000
	}
	return Targets{
		Heading:  rwy.Heading,
		Altitude: alt,
		Speed:    vapp + 20,
	}
}
