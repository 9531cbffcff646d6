// nav/hold.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "github.com/vice-tracon/engine/math"

// HoldLeg is the phase of the standard four-phase holding pattern.
type HoldLeg int

const (
	HoldInbound HoldLeg = iota
	HoldTurningOutbound
	HoldOutbound
	HoldTurningInbound
)

// FlyHold tracks progress around a holding pattern at a fix.
type FlyHold struct {
	Fix           string
	Location      math.Point2LL
	InboundCourse float32 // degrees, recorded at entry
	Leg           HoldLeg
	LegStarted    float32 // simulated seconds elapsed at which the current leg began
	LegSeconds    float32 // default 60
}

// NewHold creates a hold entered on the standard inbound course toward
// the fix from the aircraft's current position.
func NewHold(fix string, loc math.Point2LL, inboundCourse float32) *FlyHold {
	return &FlyHold{
		Fix:           fix,
		Location:      loc,
		InboundCourse: inboundCourse,
		Leg:           HoldInbound,
		LegSeconds:    60,
	}
}

// Advance steers the hold state machine and returns the target heading
// for the current leg. elapsed is total simulated seconds since the
// session started; it is used only to detect leg-time expiry.
func (h *FlyHold) Advance(elapsed float32) float32 {
	if h.LegStarted == 0 {
		h.LegStarted = elapsed
	}

	switch h.Leg {
	case HoldInbound:
		// Transition handled externally on reaching the fix (see
		// ReachedFix); heading is simply the inbound course.
		return h.InboundCourse
	case HoldTurningOutbound:
		outboundCourse := math.NormalizeHeading(h.InboundCourse + 180)
		if elapsed-h.LegStarted >= 18 { // ~180 deg at standard rate
			h.Leg = HoldOutbound
			h.LegStarted = elapsed
		}
		return outboundCourse
	case HoldOutbound:
		outboundCourse := math.NormalizeHeading(h.InboundCourse + 180)
		if elapsed-h.LegStarted >= h.LegSeconds {
			h.Leg = HoldTurningInbound
			h.LegStarted = elapsed
		}
		return outboundCourse
	default: // HoldTurningInbound
		if elapsed-h.LegStarted >= 18 {
			h.Leg = HoldInbound
			h.LegStarted = elapsed
		}
		return h.InboundCourse
	}
}

// ReachedFix notifies the hold that the aircraft has crossed the hold
// fix while flying the inbound leg, which starts the outbound turn.
func (h *FlyHold) ReachedFix(elapsed float32) {
	if h.Leg == HoldInbound {
		h.Leg = HoldTurningOutbound
		h.LegStarted = elapsed
	}
}
