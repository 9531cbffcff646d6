// math/scalar.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

func Abs[T Number](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func Min[T Number](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T Number](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Clamp[T Number](x, low, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Lerp linearly interpolates x of the way between a and b.
func Lerp(x, a, b float32) float32 {
	return (1-x)*a + x*b
}

func Sqrt(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}

func Floor(x float32) float32 {
	return float32(gomath.Floor(float64(x)))
}

func Sign[T Number](x T) T {
	if x < 0 {
		return -1
	} else if x > 0 {
		return 1
	}
	return 0
}

const Pi = float32(gomath.Pi)

func Radians(deg float32) float32 { return deg * Pi / 180 }
func Degrees(rad float32) float32 { return rad * 180 / Pi }

// NormalizeHeading reduces a heading to [0,360).
func NormalizeHeading(h float32) float32 {
	h = float32(gomath.Mod(float64(h), 360))
	if h < 0 {
		h += 360
	}
	return h
}

// HeadingDifference returns the signed difference (in [-180,180]) to turn
// from heading a to heading b; positive is a right turn.
func HeadingDifference(a, b float32) float32 {
	d := NormalizeHeading(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}

// HeadingSignedTurn returns the magnitude in [0,180] of the difference
// between two headings, independent of turn direction.
func HeadingSignedTurn(a, b float32) float32 {
	return Abs(HeadingDifference(a, b))
}

// VectorHeading is an alias kept for call sites mirroring the teacher's
// naming for the inverse of HeadingVector (see vec2.go).
func VectorHeading(v [2]float32) float32 { return Heading2f(v) }
