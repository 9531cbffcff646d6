// sim/radio.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"sort"

	"github.com/vice-tracon/engine/aviation"
)

// DelayClass is the latency bucket a pending radio transmission was
// enqueued under.
type DelayClass int

const (
	DelayCheckIn DelayClass = iota // 3-6 ticks
	DelayReadback                  // 2-4 ticks
	DelayGeneral                   // 1-3 ticks
	DelaySystem                    // 0 ticks
)

// RadioEventKind names the structured event a PendingRadio represents;
// the RadioFormatter turns it into transmission text.
type RadioEventKind int

const (
	RadioCheckIn RadioEventKind = iota
	RadioReadback
	RadioUnable
	RadioFieldInSight
	RadioTrafficInSight
	RadioNegativeContact
	RadioGoAround
	RadioSystemEvent
)

// RadioEvent is the structured payload a RadioFormatter renders to text.
type RadioEvent struct {
	Kind     RadioEventKind
	Callsign string
	Command  *Command // set for readback/unable events
	Detail   string   // free-form detail for system events
}

// PendingRadio is a transmission queued to be sent once its delay
// elapses.
type PendingRadio struct {
	Event      RadioEvent
	Frequency  aviation.Frequency
	SendAtTick int
}

// RadioMessage is a fully formatted transmission ready for broadcast.
type RadioMessage struct {
	ID        string
	From      string // callsign, "controller", or "system"
	Message   string
	Timestamp float32
	Frequency float32
}

// RadioFormatter synthesizes transmission text from a structured radio
// event; text generation is an external collaborator the core only
// invokes.
type RadioFormatter interface {
	Format(RadioEvent) string
}

// RadioQueue is a FIFO of pending transmissions awaiting their send-at
// tick, owned exclusively by the PilotAI instance for one aircraft.
type RadioQueue struct {
	pending []PendingRadio
}

// Enqueue adds a pending transmission.
func (q *RadioQueue) Enqueue(p PendingRadio) {
	q.pending = append(q.pending, p)
}

// DrainQueue returns all messages whose send-at tick is <= currentTick,
// removing them from the queue and preserving the relative order of
// everything left behind.
func (q *RadioQueue) DrainQueue(currentTick int) []PendingRadio {
	var ready []PendingRadio
	var remaining []PendingRadio
	for _, p := range q.pending {
		if p.SendAtTick <= currentTick {
			ready = append(ready, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool { return ready[i].SendAtTick < ready[j].SendAtTick })
	q.pending = remaining
	return ready
}

// ClearQueue empties the queue, as happens on session reset.
func (q *RadioQueue) ClearQueue() {
	q.pending = nil
}
