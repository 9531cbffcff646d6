// sim/conflict.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"sort"

	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/math"
)

// AlertKind discriminates the kinds of alert the detector raises.
type AlertKind int

const (
	AlertSeparation AlertKind = iota
	AlertPredictedConflict
	AlertMSAW
	AlertWake
	AlertRunwayConflict
	AlertAirspace
)

// AlertSeverity is the urgency of an alert.
type AlertSeverity int

const (
	SeverityCaution AlertSeverity = iota
	SeverityWarning
)

// Alert is a live conflict-detector finding, keyed by a deterministic id
// so that repeated evaluations update rather than duplicate it.
type Alert struct {
	ID          string
	Kind        AlertKind
	Severity    AlertSeverity
	Aircraft    []string
	Message     string
	TimestampAt float32
}

const (
	caSeparationNm  = 3
	caVerticalFt    = 1000
	msawMVADefault  = 2000
	shortFinalAGLFt = 500
	airspaceBufferNm = 5
)

// ConflictDetector evaluates separation, predicted conflicts, MSAW,
// airspace-exit, runway, and wake-turbulence conditions every tick. It
// owns the live alert set for a session.
type ConflictDetector struct {
	alerts map[string]Alert

	// GoAroundTriggers is populated each tick by runway/wake evaluation
	// and drained by the caller into PilotAI's go-around reason map.
	GoAroundTriggers map[string]string
}

func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{alerts: make(map[string]Alert)}
}

// Evaluate runs every rule against the given aircraft set and airport,
// updating the live alert table. simTime stamps new/refreshed alerts.
func (d *ConflictDetector) Evaluate(acs []*Aircraft, apt aviation.Airport, simTime float32) []Alert {
	d.GoAroundTriggers = make(map[string]string)
	seen := make(map[string]bool)

	active := excludeSeparation(acs, apt)

	nmPerLon := apt.NMPerLongitude()
	d.evaluateSeparation(active, seen, simTime)
	d.evaluatePredicted(active, seen, simTime, nmPerLon)
	d.evaluateMSAW(acs, apt, seen, simTime)
	d.evaluateAirspace(acs, apt, seen, simTime)
	d.evaluateRunway(acs, apt, seen, simTime)
	d.evaluateWake(acs, apt, seen, simTime)

	for id := range d.alerts {
		if !seen[id] {
			delete(d.alerts, id)
		}
	}

	out := make([]Alert, 0, len(d.alerts))
	for _, a := range d.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// excludeSeparation returns the subset of aircraft eligible for
// separation/predicted-conflict evaluation.
func excludeSeparation(acs []*Aircraft, apt aviation.Airport) []*Aircraft {
	var out []*Aircraft
	for _, ac := range acs {
		if ac.OnGround || ac.Phase == PhaseLanded || ac.Phase == PhaseGround || ac.Phase == PhaseDeparture {
			continue
		}
		if ac.Handoff.HandingOff && (ac.Phase == PhaseApproach || ac.Phase == PhaseFinal) {
			continue
		}
		if ac.Handoff.Inbound == InboundHandoffOffered {
			continue
		}
		if runway, ok := runwayOf(ac); ok {
			if rwy, ok := apt.Runways[runway]; ok && ac.Altitude-rwy.Elevation < shortFinalAGLFt {
				continue
			}
		}
		out = append(out, ac)
	}
	return out
}

func pairKey(prefix, a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s:%s:%s", prefix, a, b)
}

func (d *ConflictDetector) upsert(key string, a Alert) {
	a.ID = key
	d.alerts[key] = a
}

func (d *ConflictDetector) evaluateSeparation(acs []*Aircraft, seen map[string]bool, simTime float32) {
	for i := 0; i < len(acs); i++ {
		for j := i + 1; j < len(acs); j++ {
			a, b := acs[i], acs[j]
			if sameRunwayLocalizer(a, b) {
				continue
			}
			dist := math.NMDistance2LL(a.Position, b.Position)
			vert := math.Abs(a.Altitude - b.Altitude)
			if dist < caSeparationNm && vert < caVerticalFt {
				key := pairKey("CA", a.ID, b.ID)
				seen[key] = true
				d.upsert(key, Alert{
					Kind:        AlertSeparation,
					Severity:    SeverityWarning,
					Aircraft:    []string{a.ID, b.ID},
					Message:     fmt.Sprintf("%s/%s: %.1fnm, %.0fft vertical", a.Callsign, b.Callsign, dist, vert),
					TimestampAt: simTime,
				})
			}
		}
	}
}

func sameRunwayLocalizer(a, b *Aircraft) bool {
	if !a.OnLocalizer || !b.OnLocalizer {
		return false
	}
	ca, ok1 := runwayOf(a)
	cb, ok2 := runwayOf(b)
	return ok1 && ok2 && ca == cb
}

func runwayOf(ac *Aircraft) (string, bool) {
	if ac.Nav == nil || ac.Nav.Clearances.Approach == nil {
		return "", false
	}
	return ac.Nav.Clearances.Approach.Runway, true
}

var lookaheadTimes = [2]float32{30, 60}

func (d *ConflictDetector) evaluatePredicted(acs []*Aircraft, seen map[string]bool, simTime float32, nmPerLon float32) {
	for i := 0; i < len(acs); i++ {
		for j := i + 1; j < len(acs); j++ {
			a, b := acs[i], acs[j]
			key := pairKey("CA", a.ID, b.ID)
			if _, isCA := d.alerts[key]; isCA && seen[key] {
				continue
			}
			var earliest float32 = -1
			for _, t := range lookaheadTimes {
				pa, altA := extrapolate(a, t, nmPerLon)
				pb, altB := extrapolate(b, t, nmPerLon)
				dist := math.NMDistance2LL(pa, pb)
				vert := math.Abs(altA - altB)
				if dist < caSeparationNm && vert < caVerticalFt {
					earliest = t
					break
				}
			}
			if earliest >= 0 {
				pkey := pairKey("PCA", a.ID, b.ID)
				seen[pkey] = true
				d.upsert(pkey, Alert{
					Kind:        AlertPredictedConflict,
					Severity:    SeverityCaution,
					Aircraft:    []string{a.ID, b.ID},
					Message:     fmt.Sprintf("%s/%s: predicted loss of separation in %.0fs", a.Callsign, b.Callsign, earliest),
					TimestampAt: simTime,
				})
			}
		}
	}
}

// extrapolate projects an aircraft's position and altitude forward by t
// seconds from a track derived from its most recent trail point (falling
// back to current heading) and current groundspeed/vertical speed.
func extrapolate(ac *Aircraft, t float32, nmPerLon float32) (math.Point2LL, float32) {
	heading := ac.Heading
	if len(ac.Trail) > 1 {
		heading = math.BearingHeading(ac.Trail[1], ac.Trail[0], nmPerLon)
	}
	dvec := math.Scale2f(math.HeadingVector(heading), ac.GS*t/3600)
	pos := math.Add2f(math.LL2NM(ac.Position, nmPerLon), dvec)
	alt := ac.Altitude + ac.VS*t/60
	return math.NM2LL(pos, nmPerLon), alt
}

func (d *ConflictDetector) evaluateMSAW(acs []*Aircraft, apt aviation.Airport, seen map[string]bool, simTime float32) {
	mva := apt.Limits.MVA
	if mva == 0 {
		mva = msawMVADefault
	}
	for _, ac := range acs {
		switch ac.Phase {
		case PhaseFinal, PhaseMissed, PhaseDeparture, PhaseLanded, PhaseGround:
			continue
		}
		if ac.Altitude < mva && ac.VS <= 0 {
			key := fmt.Sprintf("MSAW:%s", ac.ID)
			seen[key] = true
			d.upsert(key, Alert{
				Kind:        AlertMSAW,
				Severity:    SeverityWarning,
				Aircraft:    []string{ac.ID},
				Message:     fmt.Sprintf("%s: low altitude %.0fft", ac.Callsign, ac.Altitude),
				TimestampAt: simTime,
			})
		}
	}
}

func (d *ConflictDetector) evaluateAirspace(acs []*Aircraft, apt aviation.Airport, seen map[string]bool, simTime float32) {
	radius := apt.Limits.RadiusNm
	if radius == 0 {
		radius = 100
	}
	for _, ac := range acs {
		if ac.Handoff.HandingOff || ac.Handoff.Inbound == InboundHandoffOffered {
			continue
		}
		if ac.Squawk == aviation.VFRSquawk {
			continue
		}
		dist := math.NMDistance2LL(ac.Position, apt.Location)
		if dist > radius-airspaceBufferNm {
			key := fmt.Sprintf("AIRSPACE:%s", ac.ID)
			seen[key] = true
			d.upsert(key, Alert{
				Kind:        AlertAirspace,
				Severity:    SeverityCaution,
				Aircraft:    []string{ac.ID},
				Message:     fmt.Sprintf("%s: %.1fnm to airspace exit", ac.Callsign, radius-dist),
				TimestampAt: simTime,
			})
		}
	}
}

func (d *ConflictDetector) evaluateRunway(acs []*Aircraft, apt aviation.Airport, seen map[string]bool, simTime float32) {
	byRunway := make(map[string][]*Aircraft)
	for _, ac := range acs {
		if rwy, ok := runwayOf(ac); ok {
			byRunway[rwy] = append(byRunway[rwy], ac)
		}
	}
	for _, ac := range acs {
		if ac.RunwayOccupying != "" {
			byRunway[ac.RunwayOccupying] = append(byRunway[ac.RunwayOccupying], ac)
		}
	}

	for runway, group := range byRunway {
		rwy, ok := apt.Runways[runway]
		if !ok {
			continue
		}
		var occupying, onShortFinal []*Aircraft
		for _, ac := range group {
			onRunwaySurface := ac.RunwayOccupying == runway ||
				(math.NMDistance2LL(ac.Position, rwy.Threshold) < 0.5 && ac.Altitude-rwy.Elevation < 200 && ac.Phase != PhaseApproach && ac.Phase != PhaseFinal)
			if onRunwaySurface {
				occupying = append(occupying, ac)
				continue
			}
			if (ac.Phase == PhaseApproach || ac.Phase == PhaseFinal) && runwayOfMatches(ac, runway) {
				dist := math.NMDistance2LL(ac.Position, rwy.Threshold)
				if dist < 2 && dist >= 0.5 {
					onShortFinal = append(onShortFinal, ac)
				}
			}
		}
		for _, a := range occupying {
			for _, b := range onShortFinal {
				key := pairKey("RWY", a.ID, b.ID)
				seen[key] = true
				d.upsert(key, Alert{
					Kind:        AlertRunwayConflict,
					Severity:    SeverityWarning,
					Aircraft:    []string{a.ID, b.ID},
					Message:     fmt.Sprintf("runway %s occupied by %s, %s on short final", runway, a.Callsign, b.Callsign),
					TimestampAt: simTime,
				})
				d.GoAroundTriggers[b.ID] = fmt.Sprintf("runway %s occupied", runway)
			}
		}
	}
}

func runwayOfMatches(ac *Aircraft, runway string) bool {
	r, ok := runwayOf(ac)
	return ok && r == runway
}

func (d *ConflictDetector) evaluateWake(acs []*Aircraft, apt aviation.Airport, seen map[string]bool, simTime float32) {
	byRunway := make(map[string][]*Aircraft)
	for _, ac := range acs {
		if (ac.Phase != PhaseApproach && ac.Phase != PhaseFinal) || ac.OnGround {
			continue
		}
		if rwy, ok := runwayOf(ac); ok {
			byRunway[rwy] = append(byRunway[rwy], ac)
		}
	}

	for runway, group := range byRunway {
		rwy, ok := apt.Runways[runway]
		if !ok {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return math.NMDistance2LL(group[i].Position, rwy.Threshold) < math.NMDistance2LL(group[j].Position, rwy.Threshold)
		})
		for i := 0; i+1 < len(group); i++ {
			leader, follower := group[i], group[i+1]
			required := aviation.RequiredWakeSeparation(leader.Wake, follower.Wake)
			spacing := math.NMDistance2LL(leader.Position, follower.Position)
			if spacing < required {
				key := pairKey("WAKE", leader.ID, follower.ID)
				seen[key] = true
				sev := SeverityCaution
				if spacing < 3 {
					sev = SeverityWarning
				}
				d.upsert(key, Alert{
					Kind:        AlertWake,
					Severity:    sev,
					Aircraft:    []string{leader.ID, follower.ID},
					Message:     fmt.Sprintf("%s/%s: %.1fnm, %.1fnm required", leader.Callsign, follower.Callsign, spacing, required),
					TimestampAt: simTime,
				})
				followerDist := math.NMDistance2LL(follower.Position, rwy.Threshold)
				if spacing < required-1 && followerDist < 5 {
					d.GoAroundTriggers[follower.ID] = fmt.Sprintf("wake turbulence separation from %s", leader.Callsign)
				}
			}
		}
	}
}
