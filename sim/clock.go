// sim/clock.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"sync"
	"time"

	"github.com/vice-tracon/engine/log"
)

// ClockState is the externally visible subset of Clock for a state
// snapshot.
type ClockState struct {
	SimTime   float32
	TickCount int
	TimeScale int
	Running   bool
	Paused    bool
}

// Clock drives a session's tick loop: a wall-clock timer fires at
// 1000/timeScale ms and each fire advances simulated time by exactly one
// second, invoking the supplied pipeline function. The clock never drops
// or coalesces ticks: an overrunning pipeline call simply delays the next
// fire, and the session falls behind real time rather than skip a tick.
type Clock struct {
	mu sync.Mutex

	simTime   float32
	tickCount int
	timeScale int
	running   bool
	paused    bool

	timer *time.Timer
	stop  chan struct{}

	lg *log.Logger

	// Pipeline is invoked once per simulated second with the new tick
	// count. Panics are recovered and logged as scheduler overruns; the
	// clock continues with the next tick using whatever state the
	// pipeline left behind.
	Pipeline func(tickCount int)
}

func NewClock(lg *log.Logger) *Clock {
	return &Clock{timeScale: 1, lg: lg}
}

func (c *Clock) State() ClockState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ClockState{
		SimTime:   c.simTime,
		TickCount: c.tickCount,
		TimeScale: c.timeScale,
		Running:   c.running,
		Paused:    c.paused,
	}
}

// Start begins firing the scheduler at the current time scale.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.paused = false
	c.stop = make(chan struct{})
	c.scheduleLocked()
}

// Pause cancels the timer without losing simulated time or tick count;
// Resume reschedules from where it left off.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.paused {
		return
	}
	c.paused = true
	c.cancelTimerLocked()
}

func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || !c.paused {
		return
	}
	c.paused = false
	c.scheduleLocked()
}

// Stop cancels the scheduler entirely; simTime/tickCount are left as they
// were so a caller can snapshot final state before discarding the clock.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.cancelTimerLocked()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// SetTimeScale restarts the timer at the new interval without touching
// simulated time or the tick count. n is expected to be one of {1, 2, 4};
// other values are accepted as-is since the scheduler only uses it to
// compute the fire interval.
func (c *Clock) SetTimeScale(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 {
		return
	}
	c.timeScale = n
	if c.running && !c.paused {
		c.cancelTimerLocked()
		c.scheduleLocked()
	}
}

func (c *Clock) interval() time.Duration {
	return time.Second / time.Duration(c.timeScale)
}

func (c *Clock) scheduleLocked() {
	c.timer = time.AfterFunc(c.interval(), c.fire)
}

func (c *Clock) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fire runs one tick and reschedules the next, regardless of how long the
// pipeline took: if it overran its budget, the next fire still advances
// exactly one simulated second, so the session is allowed to fall behind
// real time but never silently skips a tick.
func (c *Clock) fire() {
	c.mu.Lock()
	if !c.running || c.paused {
		c.mu.Unlock()
		return
	}
	c.simTime += 1
	c.tickCount++
	tick := c.tickCount
	pipeline := c.Pipeline
	c.mu.Unlock()

	c.runPipeline(pipeline, tick)

	c.mu.Lock()
	if c.running && !c.paused {
		c.scheduleLocked()
	}
	c.mu.Unlock()
}

// runPipeline recovers a panicking pipeline step: the engine logs the
// error as a scheduler overrun and continues with the next tick using
// whatever last-known state the failed step left behind, per the
// invariant-violation-at-tick-boundary error handling policy.
func (c *Clock) runPipeline(pipeline func(int), tick int) {
	defer func() {
		if r := recover(); r != nil {
			c.lg.Errorf("tick %d pipeline panic, continuing with next tick: %v", tick, r)
		}
	}()
	if pipeline != nil {
		pipeline(tick)
	}
}
