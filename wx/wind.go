// wx/wind.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package wx models the session's weather: a small stack of wind layers
// interpolated by altitude, plus the ceiling/visibility/altimeter state
// that gates visual approaches.
package wx

import "github.com/vice-tracon/engine/math"

// WindLayer is a published wind observation at a given altitude.
type WindLayer struct {
	Altitude  float32 // ft MSL
	Direction float32 // true degrees, direction the wind is FROM
	Speed     float32 // kt
	Gust      float32 // kt, 0 if none
}

// Vector returns the unit vector the wind blows TOWARD (the
// reciprocal of the FROM direction), scaled by speed.
func (w WindLayer) Vector() [2]float32 {
	return math.Scale2f(math.HeadingVector(math.NormalizeHeading(w.Direction+180)), w.Speed)
}

// blendWindLayers combines two layers with the given weights, blending
// speed and gust linearly and direction by vector composition (so a
// blend of 360 and 010 comes out near 005, not 185).
func blendWindLayers(wts [2]float32, layers [2]WindLayer) WindLayer {
	v := math.Add2f(math.Scale2f(layers[0].Vector(), wts[0]), math.Scale2f(layers[1].Vector(), wts[1]))
	speed := wts[0]*layers[0].Speed + wts[1]*layers[1].Speed
	dir := math.NormalizeHeading(math.Heading2f(v) + 180)
	if math.Length2f(v) < 0.01 {
		// Degenerate case (opposing equal winds): fall back to the
		// heavier-weighted layer's direction so callers don't see a
		// meaningless heading.
		if wts[0] >= wts[1] {
			dir = layers[0].Direction
		} else {
			dir = layers[1].Direction
		}
	}
	return WindLayer{
		Direction: dir,
		Speed:     speed,
		Gust:      wts[0]*layers[0].Gust + wts[1]*layers[1].Gust,
	}
}

// InterpolateWind returns the wind at the given altitude, found by
// linearly blending the two bracketing layers (by altitude); below the
// lowest published layer or above the highest, the nearest layer's wind
// is used unchanged. Layers need not be pre-sorted.
func InterpolateWind(alt float32, layers []WindLayer) WindLayer {
	if len(layers) == 0 {
		return WindLayer{}
	}

	lo, hi := layers[0], layers[0]
	for _, l := range layers {
		if l.Altitude < lo.Altitude {
			lo = l
		}
		if l.Altitude > hi.Altitude {
			hi = l
		}
	}
	if alt <= lo.Altitude {
		return lo
	}
	if alt >= hi.Altitude {
		return hi
	}

	// Find the tightest bracketing pair.
	below, above := lo, hi
	for _, l := range layers {
		if l.Altitude <= alt && l.Altitude >= below.Altitude {
			below = l
		}
		if l.Altitude >= alt && l.Altitude <= above.Altitude {
			above = l
		}
	}
	if below.Altitude == above.Altitude {
		return below
	}

	t := (alt - below.Altitude) / (above.Altitude - below.Altitude)
	return blendWindLayers([2]float32{1 - t, t}, [2]WindLayer{below, above})
}
