// sim/pilotai.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/log"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/nav"
	"github.com/vice-tracon/engine/rand"
	"github.com/vice-tracon/engine/util"
	"github.com/vice-tracon/engine/wx"
)

// PilotAI is the per-aircraft behavioral layer: queued command
// execution with a pilot response delay, the radio queue, handoff
// state machines, the visual-sighting FSM, and go-around ingestion. It
// owns its pending-command lists and radio queues for the session.
type PilotAI struct {
	pending      map[string][]PendingCommand
	radios       map[string]*RadioQueue
	initialContactDone map[string]bool
	seeds        map[string]*rand.Rand

	Formatter RadioFormatter
	lg        *log.Logger

	Outbox []RadioMessage
}

func NewPilotAI(formatter RadioFormatter, lg *log.Logger) *PilotAI {
	return &PilotAI{
		pending:            make(map[string][]PendingCommand),
		radios:             make(map[string]*RadioQueue),
		initialContactDone: make(map[string]bool),
		seeds:              make(map[string]*rand.Rand),
		Formatter:          formatter,
		lg:                 lg,
	}
}

func (p *PilotAI) radioQueue(id string) *RadioQueue {
	q, ok := p.radios[id]
	if !ok {
		q = &RadioQueue{}
		p.radios[id] = q
	}
	return q
}

func (p *PilotAI) seedFor(id string) *rand.Rand {
	r, ok := p.seeds[id]
	if !ok {
		r = rand.New()
		p.seeds[id] = r
	}
	return r
}

// IssueCommand enqueues a pending execution at simTime+uniform[2,5)s and
// queues a readback transmission (except for radarHandoff and the sight
// queries, which are fast-pathed by CommandExecutor and never reach
// here).
func (p *PilotAI) IssueCommand(ac *Aircraft, cmd Command, simTime float32, r *rand.Rand) {
	delay := r.Uniform(2, 5)
	p.pending[ac.ID] = append(p.pending[ac.ID], PendingCommand{Command: cmd, ExecuteAt: simTime + delay})
	p.radioQueue(ac.ID).Enqueue(PendingRadio{
		Event:      RadioEvent{Kind: RadioReadback, Callsign: ac.Callsign, Command: &cmd},
		SendAtTick: int(simTime) + int(r.Uniform(2, 4)),
	})
}

// Update drains matured pending commands into the aircraft's
// clearances, runs the flight plan executor, and drains the radio
// queue into the Outbox. currentTick/simTime are the session clock.
// acs is the full live traffic list, needed only to resolve the
// position of an aircraft this one has been cleared to follow visually.
func (p *PilotAI) Update(ac *Aircraft, apt aviation.Airport, weather wx.Weather, simTime float32, currentTick int, elapsedSeconds float32, goAroundReasons map[string]string, acs []*Aircraft) {
	p.drainPending(ac, apt, simTime)

	if reason, ok := goAroundReasons[ac.ID]; ok {
		p.ExecuteGoAround(ac, apt, reason, simTime)
	}

	if ac.Phase != PhaseGround && ac.Phase != PhaseLanded && ac.Nav != nil {
		k := nav.Kinematics{Position: ac.Position, Heading: ac.Heading, Altitude: ac.Altitude, IAS: ac.IAS, GS: ac.GS}
		targets, ev := ac.Nav.Update(k, apt, elapsedSeconds, p.resolveFollowTarget(ac, acs))
		ac.TargetHeading, ac.TargetAltitude, ac.TargetSpeed = targets.Heading, targets.Altitude, targets.Speed
		ac.OnLocalizer = ac.Nav.OnLocalizer
		ac.OnGlideslope = ac.Nav.OnGlideslope

		switch ev {
		case nav.EventLanded:
			ac.Phase = PhaseLanded
			ac.OnGround = true
			if ac.Nav.Clearances.Approach != nil {
				ac.RunwayOccupying = ac.Nav.Clearances.Approach.Runway
			}
		case nav.EventGoAround:
			p.considerAutoGoAround(ac, apt, weather, simTime)
		}
	}

	p.updateHandoffs(ac, apt, simTime, currentTick)
	p.updateVisualSight(ac, apt, weather, currentTick)
	p.maybeInitialContact(ac, apt, simTime, currentTick)

	for _, pr := range p.radioQueue(ac.ID).DrainQueue(currentTick) {
		msg := RadioMessage{
			ID:        util.NewID(),
			From:      ac.Callsign,
			Message:   p.format(pr.Event),
			Timestamp: simTime,
			Frequency: pr.Frequency.MHz(),
		}
		p.Outbox = append(p.Outbox, msg)
	}
}

// resolveFollowTarget looks up the position of the traffic ac has been
// cleared to sequence behind, and pairs it with the in-trail spacing
// their wake categories require. It returns nil when ac isn't following
// anyone, or the leader is no longer in the traffic list (landed or
// handed off), in which case the caller falls back to the centerline.
func (p *PilotAI) resolveFollowTarget(ac *Aircraft, acs []*Aircraft) *nav.FollowTarget {
	if ac.Nav == nil || ac.Nav.Clearances.Approach == nil {
		return nil
	}
	callsign := ac.Nav.Clearances.Approach.FollowTraffic
	if callsign == "" {
		return nil
	}
	for _, lead := range acs {
		if lead.Callsign == callsign {
			return &nav.FollowTarget{
				Position:        lead.Position,
				MinSeparationNm: aviation.RequiredWakeSeparation(lead.Wake, ac.Wake),
			}
		}
	}
	return nil
}

func (p *PilotAI) format(ev RadioEvent) string {
	if p.Formatter == nil {
		return ""
	}
	return p.Formatter.Format(ev)
}

func (p *PilotAI) drainPending(ac *Aircraft, apt aviation.Airport, simTime float32) {
	var remaining []PendingCommand
	for _, pc := range p.pending[ac.ID] {
		if pc.ExecuteAt <= simTime {
			p.applyCommand(ac, apt, pc.Command, simTime)
		} else {
			remaining = append(remaining, pc)
		}
	}
	p.pending[ac.ID] = remaining
}

// applyCommand maps each sub-command onto the aircraft's clearances.
func (p *PilotAI) applyCommand(ac *Aircraft, apt aviation.Airport, cmd Command, simTime float32) {
	if ac.Nav == nil {
		return
	}
	c := &ac.Nav.Clearances
	for _, s := range cmd.Subs {
		switch s.Kind {
		case SubAltitude:
			alt := s.Altitude
			c.AssignedAltitude = &alt
		case SubHeading:
			ac.Nav.AssignHeading(s.Heading)
			c.TurnDirection = nav.TurnDirection(s.TurnDirection)
		case SubSpeed:
			if s.Speed == nil {
				c.AssignedSpeed = nil
				resume := ac.Perf.Speed.CruiseIAS
				if ac.Altitude < 10000 {
					resume = ac.Perf.Speed.VmaxBelow10k
				}
				v := resume
				c.AssignedSpeed = &v
			} else {
				v := *s.Speed
				c.AssignedSpeed = &v
			}
		case SubApproach:
			c.Approach = &nav.ApproachClearance{Type: s.ApproachType, Runway: s.Runway, Cleared: true, FollowTraffic: s.FollowTraffic}
			if c.MaintainUntilEstablished == nil && c.AssignedAltitude != nil {
				c.MaintainUntilEstablished = c.AssignedAltitude
			} else if c.MaintainUntilEstablished == nil {
				alt := ac.Altitude
				c.MaintainUntilEstablished = &alt
			}
		case SubDirect:
			if fix, ok := apt.Fixes[s.Fix]; ok {
				ac.Nav.DirectTo(fix)
			}
		case SubHold:
			ac.Nav.Hold = nav.NewHold(s.Fix, ac.Position, ac.Heading)
		case SubSID:
			ac.Plan.SID = s.Fix
		case SubSTAR:
			ac.Plan.STAR = s.Fix
		case SubClimbViaSID:
			c.ClimbViaSID = true
			c.DescendViaSTAR = false
		case SubDescendViaSTAR:
			c.DescendViaSTAR = true
			c.ClimbViaSID = false
		case SubHandoff:
			if !ac.Handoff.HandingOff {
				ac.Handoff.HandingOffStarted = simTime
			}
			ac.Handoff.HandingOff = true
			c.HandoffFacility = s.HandoffFacility
			c.HandoffFrequency = s.HandoffFrequency
		case SubGoAround:
			// handled by ExecuteGoAround via the caller's reasons map.
		case SubExpectApproach:
			c.ExpectedApproach = s.Runway
		case SubExpectRunway:
			ac.Plan.Runway = s.Runway
		case SubCancelApproach:
			c.Approach = nil
			ac.Nav.OnLocalizer = false
			ac.Nav.OnGlideslope = false
		case SubResumeOwnNavigation:
			c.AssignedHeading = nil
		case SubRequestFieldSight, SubRequestTrafficSight:
			// fast-pathed by CommandExecutor; not expected here.
		}
	}
}

// ExecuteGoAround implements the go-around effect: clear the approach
// clearance, revert to missed phase, target the missed-approach
// altitude (or field elevation+2000 fallback), runway heading, and
// Vapp+20, and restore player control.
func (p *PilotAI) ExecuteGoAround(ac *Aircraft, apt aviation.Airport, reason string, simTime float32) {
	if ac.Nav == nil {
		return
	}
	var rwy aviation.Runway
	var missedAlt float32
	if c := ac.Nav.Clearances.Approach; c != nil {
		rwy = apt.Runways[c.Runway]
		for _, appr := range apt.Approaches {
			if appr.Runway == c.Runway && appr.Type == c.Type {
				missedAlt = appr.MissedApproachAlt
			}
		}
	}
	targets := ac.Nav.GoAround(rwy, missedAlt, ac.Perf.Speed.Vapp)
	ac.TargetHeading, ac.TargetAltitude, ac.TargetSpeed = targets.Heading, targets.Altitude, targets.Speed
	ac.OnLocalizer, ac.OnGlideslope = false, false
	ac.Phase = PhaseMissed
	ac.Handoff.HandingOff = false
	ac.Sight = VisualSight{}
	p.radioQueue(ac.ID).Enqueue(PendingRadio{
		Event:      RadioEvent{Kind: RadioGoAround, Callsign: ac.Callsign, Detail: reason},
		SendAtTick: 0,
	})
	p.lg.Infof("%s going around: %s", ac.Callsign, reason)
}

// considerAutoGoAround implements the DA/MDA protocol: the executor has
// already detected the aircraft crossing decision altitude; here the
// weather-visibility rule decides whether that's an auto-report of the
// field in sight (continue) or a mandatory missed approach.
func (p *PilotAI) considerAutoGoAround(ac *Aircraft, apt aviation.Airport, weather wx.Weather, simTime float32) {
	c := ac.Nav.Clearances.Approach
	if c == nil {
		return
	}
	reqCeiling, reqVis := float32(wx.ILSCeilingAGL), float32(wx.ILSVisSM)
	if c.Type == aviation.ApproachRNAV {
		reqCeiling, reqVis = float32(wx.RNAVCeilingAGL), float32(wx.RNAVVisSM)
	}
	dist := math.NMDistance2LL(ac.Position, apt.Location)
	switch weather.VisibilityRule(dist, apt.Elevation, reqCeiling, reqVis) {
	case wx.VisualYes:
		ac.Sight.State = SightFieldSighted
		p.radioQueue(ac.ID).Enqueue(PendingRadio{Event: RadioEvent{Kind: RadioFieldInSight, Callsign: ac.Callsign}, SendAtTick: 0})
	default:
		p.ExecuteGoAround(ac, apt, "missed approach, field not in sight at decision altitude", simTime)
	}
}

func (p *PilotAI) visibilityReport(ac *Aircraft, apt aviation.Airport, weather wx.Weather) wx.VisualReport {
	dist := math.NMDistance2LL(ac.Position, apt.Location)
	return weather.VisibilityRule(dist, apt.Elevation, wx.VFRCeilingAGL, wx.VFRVisSM)
}

// RequestSight fast-paths a requestFieldSight/requestTrafficSight
// command: it executes inline with no pilot readback, queuing only the
// eventual sighting response.
func (p *PilotAI) RequestSight(ac *Aircraft, followTraffic string, currentTick int, r *rand.Rand) {
	ac.Sight.State = SightQueried
	ac.Sight.QueryTick = currentTick
	ac.Sight.ResponseAtTick = currentTick + int(r.Uniform(3, 6))
	ac.Sight.FollowTraffic = followTraffic
}

func (p *PilotAI) updateVisualSight(ac *Aircraft, apt aviation.Airport, weather wx.Weather, currentTick int) {
	switch ac.Sight.State {
	case SightQueried:
		if currentTick < ac.Sight.ResponseAtTick {
			return
		}
		switch p.visibilityReport(ac, apt, weather) {
		case wx.VisualYes:
			if ac.Sight.FollowTraffic != "" {
				ac.Sight.State = SightTrafficSighted
				p.radioQueue(ac.ID).Enqueue(PendingRadio{Event: RadioEvent{Kind: RadioTrafficInSight, Callsign: ac.Callsign}, SendAtTick: currentTick})
			} else {
				ac.Sight.State = SightFieldSighted
				p.radioQueue(ac.ID).Enqueue(PendingRadio{Event: RadioEvent{Kind: RadioFieldInSight, Callsign: ac.Callsign}, SendAtTick: currentTick})
			}
		case wx.VisualNotYet:
			ac.Sight.State = SightWillReport
		default:
			ac.Sight.State = SightNegative
			p.radioQueue(ac.ID).Enqueue(PendingRadio{Event: RadioEvent{Kind: RadioNegativeContact, Callsign: ac.Callsign}, SendAtTick: currentTick})
		}
	case SightWillReport:
		if p.visibilityReport(ac, apt, weather) == wx.VisualYes {
			ac.Sight.State = SightFieldSighted
			p.radioQueue(ac.ID).Enqueue(PendingRadio{Event: RadioEvent{Kind: RadioFieldInSight, Callsign: ac.Callsign}, SendAtTick: currentTick})
		}
	}
}

// OfferRadarHandoff is the CommandExecutor's radarHandoff fast path: it
// executes inline with no pilot readback.
func (p *PilotAI) OfferRadarHandoff(ac *Aircraft, simTime float32) {
	r := p.seedFor(ac.ID)
	ac.Handoff.RadarHandoff = RadarHandoffOffered
	ac.Handoff.RadarHandoffOffered = simTime
	ac.Handoff.RadarHandoffResolved = simTime + r.Uniform(3, 5)
}

// AcceptInboundHandoff is invoked when the controller accepts an
// upstream center's inbound handoff offer.
func (p *PilotAI) AcceptInboundHandoff(ac *Aircraft, r *rand.Rand) {
	ac.Handoff.Inbound = InboundHandoffAccepted
	ac.Handoff.InboundCheckInAtTicks = int(r.Uniform(3, 6))
}

func (p *PilotAI) radarHandoffCriteriaMet(ac *Aircraft, apt aviation.Airport) bool {
	if ac.Squawk == aviation.VFRSquawk || ac.Plan.IsArrival {
		return false
	}
	if ac.TargetAltitude < 8000 {
		return false
	}
	return math.NMDistance2LL(ac.Position, apt.Location) > 10
}

func (p *PilotAI) updateHandoffs(ac *Aircraft, apt aviation.Airport, simTime float32, currentTick int) {
	h := &ac.Handoff

	if h.RadarHandoff == RadarHandoffOffered && simTime >= h.RadarHandoffResolved {
		if p.radarHandoffCriteriaMet(ac, apt) {
			h.RadarHandoff = RadarHandoffAccepted
		} else {
			h.RadarHandoff = RadarHandoffRejected
			h.RadarHandoffResolved = simTime + 5
		}
	} else if h.RadarHandoff == RadarHandoffRejected && simTime >= h.RadarHandoffResolved {
		h.RadarHandoff = RadarHandoffNone
	}

	if h.Inbound == InboundHandoffAccepted && h.InboundCheckInAtTicks > 0 {
		h.InboundCheckInAtTicks--
		if h.InboundCheckInAtTicks == 0 {
			p.InitialContact(ac, simTime, currentTick)
			h.Inbound = InboundHandoffNone
		}
	}
}

// HandoffComplete reports whether the outbound handoff coast period has
// elapsed: landed/ground aircraft are retained until AircraftManager's
// cleanup rules take over; approach/final aircraft get a 120s safety
// valve; everything else coasts 180s.
func (p *PilotAI) HandoffComplete(ac *Aircraft, simTime float32) bool {
	if !ac.Handoff.HandingOff || ac.Phase == PhaseLanded || ac.Phase == PhaseGround {
		return false
	}
	elapsed := simTime - ac.Handoff.HandingOffStarted
	if ac.Phase == PhaseApproach || ac.Phase == PhaseFinal {
		return elapsed >= 120
	}
	return elapsed >= 180
}

// InitialContact records an aircraft's first check-in; idempotent per
// aircraft id.
func (p *PilotAI) InitialContact(ac *Aircraft, simTime float32, currentTick int) {
	if p.initialContactDone[ac.ID] {
		return
	}
	p.initialContactDone[ac.ID] = true
	r := p.seedFor(ac.ID)
	p.radioQueue(ac.ID).Enqueue(PendingRadio{
		Event:      RadioEvent{Kind: RadioCheckIn, Callsign: ac.Callsign},
		SendAtTick: currentTick + int(r.Uniform(3, 6)),
	})
}

// maybeInitialContact triggers a departure's first check-in once
// airborne and above airport elevation+800ft; arrivals check in when
// their inbound-handoff countdown reaches zero instead (see
// updateHandoffs).
func (p *PilotAI) maybeInitialContact(ac *Aircraft, apt aviation.Airport, simTime float32, currentTick int) {
	if ac.Plan.IsArrival || p.initialContactDone[ac.ID] {
		return
	}
	if ac.OnGround || ac.Altitude < apt.Elevation+800 {
		return
	}
	p.InitialContact(ac, simTime, currentTick)
}

