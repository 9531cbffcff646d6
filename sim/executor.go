// sim/executor.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"time"

	vrand "github.com/vice-tracon/engine/rand"

	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/util"
	"github.com/vice-tracon/engine/wx"
)

// approachCacheTTL bounds how long a resolved runway/type approach
// lookup is trusted; an airport's published approaches never change
// mid-session, so this exists purely to bound memory, not staleness.
const approachCacheTTL = 5 * time.Minute

// CommandExecutor validates a parsed controller command against airspace,
// weather, and aircraft-geometry rules before handing it to PilotAI. It
// holds no per-aircraft state of its own beyond a small memo of resolved
// approach geometry.
type CommandExecutor struct {
	Pilot   *PilotAI
	Weather wx.Weather

	approaches *util.ExpiringCache[string, approachLookup]
}

type approachLookup struct {
	approach aviation.Approach
	ok       bool
}

func NewCommandExecutor(pilot *PilotAI) *CommandExecutor {
	return &CommandExecutor{
		Pilot:      pilot,
		approaches: util.NewExpiringCache[string, approachLookup](64, approachCacheTTL),
	}
}

// Execute validates every sub-command before acting on any of them. The
// first failure aborts the whole command (nothing partially applies); once
// all pass, radar handoff, sight requests, go-around and accept-handoff
// run inline, and the remaining sub-commands are queued via PilotAI with
// pilot delay.
func (e *CommandExecutor) Execute(ac *Aircraft, apt aviation.Airport, cmd Command, simTime float32, r *vrand.Rand) CommandResult {
	result := CommandResult{Callsign: cmd.Callsign, RawText: cmd.RawText}

	if ac.Nav == nil {
		result.Error = ErrUnknownAircraft.Error()
		return result
	}

	landedOrHandedOff := ac.Phase == PhaseLanded || (ac.Handoff.HandingOff && e.Pilot.HandoffComplete(ac, simTime))
	inboundNotAccepted := ac.Handoff.Inbound == InboundHandoffOffered

	for i := range cmd.Subs {
		s := &cmd.Subs[i]
		if inboundNotAccepted && s.Kind != SubAcceptHandoff {
			result.Error = "aircraft not yet controllable, inbound handoff not yet accepted"
			result.PilotUnable = true
			return result
		}
		if landedOrHandedOff && s.Kind != SubHandoff {
			err := Unable(ErrAircraftLanded)
			if ac.Phase != PhaseLanded {
				err = Unable(ErrAircraftAlreadyHandedOff)
			}
			result.Error = err.Error()
			result.PilotUnable = err.PilotUnable
			return result
		}

		if err := e.validate(ac, apt, s); err != nil {
			result.Error = err.Error()
			result.PilotUnable = err.PilotUnable
			return result
		}
	}

	var queued []SubCommand
	for i := range cmd.Subs {
		s := &cmd.Subs[i]
		switch s.Kind {
		case SubRadarHandoff:
			e.Pilot.OfferRadarHandoff(ac, simTime)
		case SubRequestFieldSight:
			e.Pilot.RequestSight(ac, "", int(simTime), r)
		case SubRequestTrafficSight:
			e.Pilot.RequestSight(ac, s.FollowTraffic, int(simTime), r)
		case SubGoAround:
			e.Pilot.ExecuteGoAround(ac, apt, "controller-initiated go-around", simTime)
		case SubAcceptHandoff:
			e.Pilot.AcceptInboundHandoff(ac, r)
		default:
			queued = append(queued, *s)
		}
	}

	if len(queued) > 0 {
		e.Pilot.IssueCommand(ac, Command{Callsign: cmd.Callsign, Subs: queued, RawText: cmd.RawText}, simTime, r)
	}
	result.Success = true
	return result
}

// validate checks one sub-command against world and aircraft state,
// returning nil on success.
func (e *CommandExecutor) validate(ac *Aircraft, apt aviation.Airport, s *SubCommand) *ValidationError {
	switch s.Kind {
	case SubAltitude:
		return e.validateAltitude(ac, apt, s.Altitude)
	case SubHeading:
		if s.Heading <= 0 || s.Heading > 360 {
			return Validation(ErrInvalidHeading)
		}
	case SubSpeed:
		if s.Speed != nil {
			if *s.Speed < ac.Perf.Speed.VminFlaps || *s.Speed > ac.Perf.Speed.Vmo {
				return Validation(ErrSpeedOutOfEnvelope)
			}
		}
	case SubApproach:
		return e.validateApproach(ac, apt, s)
	case SubDescendViaSTAR:
		if !ac.Plan.IsArrival || ac.Plan.STAR == "" {
			return Validation(ErrNotAnArrival)
		}
	case SubClimbViaSID:
		if ac.Plan.IsArrival || ac.Plan.SID == "" {
			return Validation(ErrNotADeparture)
		}
	case SubHandoff:
		return e.validateHandoff(ac, apt, s)
	case SubAcceptHandoff:
		if ac.Handoff.Inbound != InboundHandoffOffered {
			return Unable(ErrNoInboundHandoffOffered)
		}
	}
	return nil
}

func (e *CommandExecutor) validateAltitude(ac *Aircraft, apt aviation.Airport, alt float32) *ValidationError {
	if alt < 0 || alt > ac.Perf.Ceiling {
		return Unable(ErrAltitudeOutOfEnvelope)
	}
	ceiling := apt.Limits.Ceiling
	if ceiling == 0 {
		ceiling = 17000
	}
	if alt > ceiling {
		return Validation(ErrAltitudeAboveCeiling)
	}
	return nil
}

// validateApproach implements the approach-gate, localizer-angle, and
// glideslope-intercept rules. The glideslope-intercept check is waived
// when the aircraft already holds an assigned altitude or a
// maintain-until-established altitude; sibling sub-commands of the same
// command are not consulted, and maintain-until-established is not set
// here (PilotAI.applyCommand fills it in when the approach is applied).
func (e *CommandExecutor) validateApproach(ac *Aircraft, apt aviation.Airport, s *SubCommand) *ValidationError {
	rwy, ok := apt.Runways[s.Runway]
	if !ok {
		return Unable(ErrUnknownRunway)
	}

	if s.ApproachType != aviation.ApproachVisual {
		key := fmt.Sprintf("%s:%s:%d", apt.ICAO, s.Runway, s.ApproachType)
		lookup := e.approaches.GetOrCompute(key, func() approachLookup {
			ap, ok := apt.ApproachFor(s.Runway, s.ApproachType)
			return approachLookup{approach: ap, ok: ok}
		})
		if !lookup.ok {
			return Unable(ErrILSNotAvailable)
		}
	}

	if s.ApproachType == aviation.ApproachILS && !rwy.ILSAvailable {
		return Unable(ErrILSNotAvailable)
	}

	if s.ApproachType == aviation.ApproachVisual {
		if !e.Weather.Sufficient(apt.Elevation, wx.VFRCeilingAGL, wx.VFRVisSM) {
			return Unable(ErrVisualRequiresVFR)
		}
		if ac.Sight.State != SightFieldSighted && ac.Sight.State != SightTrafficSighted {
			return Unable(ErrVisualRequiresSighting)
		}
		return nil
	}

	dist := math.NMDistance2LL(ac.Position, rwy.Threshold)
	if dist < 5 {
		return Unable(ErrTooCloseForApproachGate)
	}

	localizerCourse := math.NormalizeHeading(rwy.Heading)
	heading := ac.Heading
	if ac.Nav.Clearances.AssignedHeading != nil {
		heading = *ac.Nav.Clearances.AssignedHeading
	}
	if math.HeadingSignedTurn(heading, localizerCourse) > 90 {
		return Unable(ErrLocalizerHeadingExtreme)
	}

	if s.ApproachType == aviation.ApproachILS {
		glideAlt := wx.GlideslopeAltitude(rwy.Elevation, rwy.GlideslopeAngle, dist)
		if ac.Altitude-glideAlt > 500 && ac.Nav.Clearances.MaintainUntilEstablished == nil && ac.Nav.Clearances.AssignedAltitude == nil {
			return Unable(ErrHighAboveGlideslope)
		}
	}
	return nil
}

func (e *CommandExecutor) validateHandoff(ac *Aircraft, apt aviation.Airport, s *SubCommand) *ValidationError {
	if ac.Handoff.HandingOff {
		return Validation(ErrAlreadyHandingOff)
	}

	facility := s.HandoffFacility
	if facility == "" {
		f, ok := apt.FrequencyMatches(s.HandoffFrequency.MHz())
		if !ok {
			return Unable(ErrFrequencyNotRecognized)
		}
		facility = f
		s.HandoffFacility = facility
	}

	if (facility == "center" || facility == "departure") && ac.Handoff.RadarHandoff != RadarHandoffAccepted {
		return Validation(ErrRadarHandoffNotAccepted)
	}
	return nil
}
