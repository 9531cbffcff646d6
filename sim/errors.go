// sim/errors.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "errors"

// Sentinel errors for CommandExecutor validation failures. These are
// wrapped in a ValidationError (see below) so callers can distinguish a
// plain rejection from one the pilot voices as "unable."
var (
	ErrUnknownAircraft       = errors.New("no aircraft with that callsign")
	ErrUnknownRunway         = errors.New("no such runway")
	ErrAltitudeOutOfEnvelope = errors.New("altitude outside the aircraft's performance envelope")
	ErrAltitudeAboveCeiling  = errors.New("altitude above the TRACON ceiling")
	ErrInvalidHeading        = errors.New("heading must be in (0, 360]")
	ErrSpeedOutOfEnvelope    = errors.New("speed outside the aircraft's performance envelope")

	ErrILSNotAvailable         = errors.New("ILS not available for that runway")
	ErrTooCloseForApproachGate = errors.New("aircraft is inside the approach gate")
	ErrLocalizerHeadingExtreme = errors.New("heading too far from the localizer course")
	ErrHighAboveGlideslope     = errors.New("unable, aircraft is above the glidepath, fly heading and advise able to intercept")
	ErrVisualRequiresVFR       = errors.New("visual approach requires VFR weather")
	ErrVisualRequiresSighting  = errors.New("pilot has not reported the field or traffic in sight; issue rfs or rts first")

	ErrNotADeparture = errors.New("climb via SID requires a departure with an assigned SID")
	ErrNotAnArrival  = errors.New("descend via STAR requires an arrival with an assigned STAR")

	ErrAlreadyHandingOff        = errors.New("aircraft is already being handed off")
	ErrRadarHandoffNotAccepted  = errors.New("radar handoff must be accepted before a voice handoff to this facility")
	ErrFrequencyNotRecognized   = errors.New("frequency not recognized for this facility")
	ErrAircraftLanded           = errors.New("aircraft has landed")
	ErrAircraftAlreadyHandedOff = errors.New("aircraft has already been handed off")
	ErrNoInboundHandoffOffered  = errors.New("no inbound handoff is being offered for this aircraft")
)

// ValidationError is a rejected controller command. PilotUnable marks the
// subset that the radio layer should voice as "unable" rather than a
// silent rejection, per the error taxonomy's PilotUnable kind.
type ValidationError struct {
	Err         error
	PilotUnable bool
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// Validation wraps err as an ordinary (non-pilot-voiced) ValidationError.
func Validation(err error) *ValidationError {
	return &ValidationError{Err: err}
}

// Unable wraps err as a ValidationError the pilot responds to over the
// radio with "unable."
func Unable(err error) *ValidationError {
	return &ValidationError{Err: err, PilotUnable: true}
}
