// sim/session.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/log"
	"github.com/vice-tracon/engine/rand"
	"github.com/vice-tracon/engine/util"
	"github.com/vice-tracon/engine/wx"
)

// SessionConfig is the input to CreateSession.
type SessionConfig struct {
	Airport      aviation.Airport
	Density      Density
	ScenarioType ScenarioType
	RunwayConfig RunwayConfig
	Weather      wx.Weather
	ATISText     string
	Formatter    RadioFormatter
	Seed         int64
}

// inboundCommandCapacity bounds the controller-command channel a Session
// drains non-blockingly at the top of every tick.
const inboundCommandCapacity = 64

// Session ties the eight pipeline steps together behind the external
// interface: CreateSession/Start/Pause/Resume/End/SetTimeScale, plus
// SubmitCommand for out-of-band controller input and Snapshot for state
// broadcast.
type Session struct {
	ID string

	Airport  aviation.Airport
	Weather  wx.Weather
	ATISText string

	Manager  *AircraftManager
	Pilot    *PilotAI
	Physics  *PhysicsEngine
	Conflict *ConflictDetector
	Executor *CommandExecutor
	Scoring  *ScoringEngine
	Scenario *ScenarioGenerator
	Clock    *Clock

	rng *rand.Rand

	inbound chan inboundCommand

	lastResults []CommandResult
	lastAlerts  []Alert

	lg *log.Logger
}

type inboundCommand struct {
	Cmd Command
}

// CreateSession constructs a new session wired to the given config but
// does not start its scheduler.
func CreateSession(cfg SessionConfig, lg *log.Logger) *Session {
	rng := rand.New()
	if cfg.Seed != 0 {
		rng.Seed(cfg.Seed)
	}

	formatter := cfg.Formatter
	if formatter == nil {
		formatter = DefaultRadioFormatter{}
	}

	s := &Session{
		ID:       util.NewID(),
		Airport:  cfg.Airport,
		Weather:  cfg.Weather,
		ATISText: cfg.ATISText,
		Manager:  NewAircraftManager(lg),
		Pilot:    NewPilotAI(formatter, lg),
		Physics:  &PhysicsEngine{Wind: func(alt float32) [2]float32 { return cfg.Weather.WindAt(alt).Vector() }},
		Conflict: NewConflictDetector(),
		Scoring:  NewScoringEngine(),
		Scenario: NewScenarioGenerator(ScenarioConfig{
			Airport:      cfg.Airport,
			Density:      cfg.Density,
			Type:         cfg.ScenarioType,
			RunwayConfig: cfg.RunwayConfig,
		}, lg),
		rng:     rng,
		inbound: make(chan inboundCommand, inboundCommandCapacity),
		lg:      lg,
	}
	s.Executor = NewCommandExecutor(s.Pilot)
	s.Executor.Weather = cfg.Weather

	s.Clock = NewClock(lg)
	s.Clock.Pipeline = s.tick
	return s
}

// Start begins the scheduler.
func (s *Session) Start() { s.Clock.Start() }

// Pause halts the scheduler without losing queued state.
func (s *Session) Pause() { s.Clock.Pause() }

// Resume reschedules the scheduler from where it paused.
func (s *Session) Resume() { s.Clock.Resume() }

// End stops the scheduler and clears every queue (pending commands,
// pending radios, handoff tracking, conflict alerts) so that a future
// Start begins from a clean slate.
func (s *Session) End() {
	s.Clock.Stop()
	s.Pilot = NewPilotAI(s.Pilot.Formatter, s.lg)
	s.Executor = NewCommandExecutor(s.Pilot)
	s.Executor.Weather = s.Weather
	s.Conflict = NewConflictDetector()
	s.lastAlerts = nil
	s.lastResults = nil
}

// SetTimeScale changes the scheduler's wall-clock-to-simulated-time
// ratio; n is expected to be one of {1, 2, 4}.
func (s *Session) SetTimeScale(n int) { s.Clock.SetTimeScale(n) }

// LastResults returns the CommandResult for every command drained and
// executed on the most recently completed tick, in submission order.
func (s *Session) LastResults() []CommandResult { return s.lastResults }

// LastAlerts returns the live alert set as of the most recently
// completed tick.
func (s *Session) LastAlerts() []Alert { return s.lastAlerts }

// SubmitCommand posts a controller command to the bounded inbound queue,
// drained non-blockingly at the top of the next tick. It returns false
// if the queue is full, in which case the caller should retry.
func (s *Session) SubmitCommand(cmd Command) bool {
	select {
	case s.inbound <- inboundCommand{Cmd: cmd}:
		return true
	default:
		return false
	}
}

// AcceptHandoff submits the controller-accept for an arrival's inbound
// handoff offer (spec §4.5): until this is submitted, the aircraft stays
// in InboundHandoffOffered and CommandExecutor rejects every other
// command against it.
func (s *Session) AcceptHandoff(callsign string) bool {
	return s.SubmitCommand(Command{
		Callsign: callsign,
		RawText:  "accept handoff",
		Subs:     []SubCommand{{Kind: SubAcceptHandoff}},
	})
}

// tick runs the strict eight-step pipeline for one simulated second:
// drain inbound commands, spawn, pilot AI + physics per aircraft,
// conflict detection, cleanup, scoring, snapshot assembly is left to the
// caller via Snapshot.
func (s *Session) tick(tickCount int) {
	simTime := s.Clock.State().SimTime

	s.drainInbound(simTime)

	s.Scenario.Update(s.Manager, simTime, s.rng)

	acs := s.Manager.All()
	for _, ac := range acs {
		s.Pilot.Update(ac, s.Airport, s.Weather, simTime, tickCount, 1, s.Conflict.GoAroundTriggers, acs)
		s.Physics.Update(ac, s.Airport, 1, simTime)
		s.completeHandoffIfDue(ac, simTime)
	}

	s.lastAlerts = s.Conflict.Evaluate(s.Manager.All(), s.Airport, simTime)
	for _, a := range s.lastAlerts {
		s.Scoring.recordAlert(a)
	}
	s.Scoring.syncActiveViolations(s.lastAlerts)
	s.Scoring.checkHandoffPenalties(s.Manager.All(), s.Airport, tickCount)

	s.Manager.Cleanup(s.Airport)

	s.Scoring.update()
}

// completeHandoffIfDue scores and removes an aircraft the instant its
// outbound handoff coast period elapses: handled aircraft are credited
// at handoff completion, never at touchdown, per the richer scoring
// variant.
func (s *Session) completeHandoffIfDue(ac *Aircraft, simTime float32) {
	if !s.Pilot.HandoffComplete(ac, simTime) {
		return
	}
	delay := simTime - ac.Handoff.HandingOffStarted
	s.Scoring.recordAircraftHandled(delay)

	if compressed, err := CompressTrail(ac.Trail); err != nil {
		s.lg.Warnf("%s: failed to archive trail: %v", ac.Callsign, err)
	} else {
		s.lg.Debugf("%s: archived %d-point trail as %d bytes", ac.Callsign, len(ac.Trail), len(compressed))
	}

	s.Manager.Remove(ac.ID)
}

// drainInbound validates and executes every controller command queued
// since the last tick, in FIFO order.
func (s *Session) drainInbound(simTime float32) {
	s.lastResults = nil
	for {
		select {
		case in := <-s.inbound:
			s.lastResults = append(s.lastResults, s.executeOne(in.Cmd, simTime))
		default:
			return
		}
	}
}

func (s *Session) executeOne(cmd Command, simTime float32) CommandResult {
	ac, ok := s.Manager.GetByCallsign(cmd.Callsign)
	if !ok {
		return CommandResult{Callsign: cmd.Callsign, RawText: cmd.RawText, Error: ErrUnknownAircraft.Error()}
	}
	result := s.Executor.Execute(ac, s.Airport, cmd, simTime, s.rng)
	if result.Success {
		s.Scoring.recordCommand()
	} else if result.PilotUnable {
		// A command the pilot voices as "unable" (accepted-but-refused)
		// draws a small scoring penalty, per the error taxonomy; an
		// ordinary rejected command does not.
		s.Scoring.recordBadCommand(1)
	}
	return result
}

// DefaultRadioFormatter produces templated English phraseology; it is a
// trivial default for tests and the standalone harness, not a
// phraseology engine.
type DefaultRadioFormatter struct{}

func (DefaultRadioFormatter) Format(ev RadioEvent) string {
	switch ev.Kind {
	case RadioCheckIn:
		return fmt.Sprintf("%s checking in", ev.Callsign)
	case RadioReadback:
		return fmt.Sprintf("%s, roger", ev.Callsign)
	case RadioUnable:
		return fmt.Sprintf("%s, unable", ev.Callsign)
	case RadioFieldInSight:
		return fmt.Sprintf("%s, field in sight", ev.Callsign)
	case RadioTrafficInSight:
		return fmt.Sprintf("%s, traffic in sight", ev.Callsign)
	case RadioNegativeContact:
		return fmt.Sprintf("%s, negative contact", ev.Callsign)
	case RadioGoAround:
		return fmt.Sprintf("%s going around, %s", ev.Callsign, ev.Detail)
	default:
		return ev.Detail
	}
}
