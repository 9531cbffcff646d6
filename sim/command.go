// sim/command.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "github.com/vice-tracon/engine/aviation"

// SubCommandKind discriminates the union of instructions a controller
// command may carry.
type SubCommandKind int

const (
	SubAltitude SubCommandKind = iota
	SubHeading
	SubSpeed
	SubApproach
	SubDirect
	SubHold
	SubSID
	SubSTAR
	SubClimbViaSID
	SubDescendViaSTAR
	SubHandoff
	SubRadarHandoff
	SubGoAround
	SubExpectApproach
	SubExpectRunway
	SubCancelApproach
	SubResumeOwnNavigation
	SubRequestFieldSight
	SubRequestTrafficSight
	SubAcceptHandoff
)

// SubCommand is one instruction within a parsed controller command.
// Only the fields relevant to Kind are meaningful.
type SubCommand struct {
	Kind SubCommandKind

	Altitude      float32
	Heading       float32
	TurnDirection int // nav.TurnDirection, kept as int to avoid importing nav here
	Speed         *float32 // nil means "resume normal speed"

	ApproachType aviation.ApproachType
	Runway       string
	FollowTraffic string

	Fix string

	HandoffFacility  string
	HandoffFrequency aviation.Frequency
}

// Command is a parsed controller instruction targeting one aircraft.
type Command struct {
	Callsign string
	Subs     []SubCommand
	RawText  string
}

// PendingCommand is a command whose sub-commands will be applied to the
// aircraft's clearances once the pilot's response delay elapses.
type PendingCommand struct {
	Command  Command
	ExecuteAt float32 // simTime, seconds
}

// CommandResult is returned synchronously to the command's originator.
type CommandResult struct {
	Success     bool
	Callsign    string
	RawText     string
	Error       string
	PilotUnable bool
}
