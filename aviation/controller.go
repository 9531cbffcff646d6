// aviation/controller.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "fmt"

// Frequency is a radio frequency in increments of 1 kHz, stored as an
// integer so comparisons and formatting are exact.
type Frequency int

// NewFrequency quantizes a frequency given in MHz (e.g. 124.35).
func NewFrequency(f float32) Frequency {
	return Frequency(f*1000 + 0.5)
}

func (f Frequency) String() string {
	return fmt.Sprintf("%03d.%03d", f/1000, f%1000)
}

// MHz returns the frequency as a float32 in MHz.
func (f Frequency) MHz() float32 {
	return float32(f) / 1000
}

// Controller describes the single human-controlled position a session's
// player occupies. Unlike multi-sector ERAM/STARS facilities, a session
// has exactly one controlled position; handoffs leave it, they never
// move between two player-controlled positions.
type Controller struct {
	Position  string
	RadioName string
	Frequency Frequency
}
