// nav/clearance.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package nav implements FlightPlanExecutor: given an aircraft's current
// clearances and flight state, it decides the target heading, altitude,
// and speed the autopilot should fly toward, and whether the aircraft is
// established on a localizer/glideslope.
package nav

import "github.com/vice-tracon/engine/aviation"

type TurnDirection int

const (
	TurnEither TurnDirection = iota
	TurnLeft
	TurnRight
)

// ApproachClearance records an issued instrument or visual approach
// clearance.
type ApproachClearance struct {
	Type    aviation.ApproachType
	Runway  string
	Cleared bool
	// FollowTraffic, when set, names a callsign to visually sequence
	// behind rather than fly the extended centerline directly.
	FollowTraffic string
}

// Clearances is the mutable set of controller instructions currently in
// effect for an aircraft; nil pointers mean "unconstrained."
type Clearances struct {
	AssignedAltitude *float32
	AssignedHeading  *float32
	AssignedSpeed    *float32
	TurnDirection    TurnDirection

	Approach *ApproachClearance

	HoldFix   string
	DirectFix string

	ClimbViaSID    bool
	DescendViaSTAR bool

	ExpectedApproach string

	MaintainUntilEstablished *float32

	HandoffFrequency aviation.Frequency
	HandoffFacility  string
}

// ClearHeadingProcedureFlags clears climb/descend-via-procedure flags, as
// happens whenever a heading or direct-to instruction is issued: flying a
// vector is incompatible with following a published lateral procedure's
// implicit altitude ladder.
func (c *Clearances) ClearHeadingProcedureFlags() {
	c.ClimbViaSID = false
	c.DescendViaSTAR = false
}
