// wx/visibility.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import "github.com/vice-tracon/engine/math"

// Weather is a session's current, static-for-the-session weather state.
// There is no weather model or progression here; a scenario is created
// with one Weather and it holds for the session's lifetime.
type Weather struct {
	WindLayers []WindLayer
	Altimeter  float32 // inHg
	Temperature float32 // C
	VisibilitySM float32
	CeilingFt    *float32 // nil -> unlimited/clear
	ATISLetter   string
}

// WindAt returns the interpolated wind at the given altitude.
func (w Weather) WindAt(alt float32) WindLayer {
	return InterpolateWind(alt, w.WindLayers)
}

// VisualReport is the outcome of evaluating the weather-visibility rule
// against an aircraft's distance from the field for a given approach
// minima requirement.
type VisualReport int

const (
	VisualNo VisualReport = iota
	VisualNotYet
	VisualYes
)

// Minima thresholds, per the engine's weather-visibility rule.
const (
	VFRCeilingAGL  = 1000
	VFRVisSM       = 3
	ILSCeilingAGL  = 200
	ILSVisSM       = 0.5
	RNAVCeilingAGL = 400
	RNAVVisSM      = 1.0
)

// Sufficient reports whether the weather itself (independent of
// distance) meets the given ceiling/visibility minima above field
// elevation.
func (w Weather) Sufficient(fieldElevation, requiredCeilingAGL, requiredVisSM float32) bool {
	if w.CeilingFt != nil && *w.CeilingFt-fieldElevation < requiredCeilingAGL {
		return false
	}
	return w.VisibilitySM >= requiredVisSM
}

// VisibilityRule implements the engine's weather-visibility rule: yes if
// the weather is sufficient and the aircraft is within visSM*0.85 nm of
// the airport; notYet if the weather is sufficient but the aircraft is
// too far; no otherwise.
func (w Weather) VisibilityRule(distanceFromAirportNm, fieldElevation, requiredCeilingAGL, requiredVisSM float32) VisualReport {
	if !w.Sufficient(fieldElevation, requiredCeilingAGL, requiredVisSM) {
		return VisualNo
	}
	if distanceFromAirportNm <= requiredVisSM*0.85 {
		return VisualYes
	}
	return VisualNotYet
}

// GlideslopeAltitude returns the geometric altitude, in ft MSL, of a
// glideslope angle degrees above a runway at the given elevation and
// distance (nm) from the threshold.
func GlideslopeAltitude(elevation, angle, distanceNm float32) float32 {
	const nmToFt = 6076.12
	return elevation + math.Tan(math.Radians(angle))*distanceNm*nmToFt
}
