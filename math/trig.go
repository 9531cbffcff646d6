// math/trig.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// https://github.com/golang/go/issues/45915: math.Sin/Cos are float64-only,
// so for tight per-tick per-aircraft trig we keep float32 versions around
// rather than paying the repeated float64<->float32 conversions.

package math

import gomath "math"

func Sin(x float32) float32 { return SinCos(x)[0] }
func Cos(x float32) float32 { return SinCos(x)[1] }

// SinCos computes sin(x) and cos(x) simultaneously for a single float32
// value. Ported from syrah/FixedVectorMath.h:152, via Abramowitz and Stegun.
func SinCos(xFull float32) [2]float32 {
	const piOverTwo = float32(1.57079637050628662109375)
	const twoOverPi = float32(0.636619746685028076171875)

	scaled := xFull * twoOverPi
	kReal := Floor(scaled)
	k := int(kReal)

	x := xFull - kReal*piOverTwo
	kMod4 := k & 3
	cosUsecos := kMod4 == 0 || kMod4 == 2
	sinUsecos := kMod4 == 1 || kMod4 == 3
	sinFlipsign := kMod4 > 1
	cosFlipsign := kMod4 == 1 || kMod4 == 2

	const sinC2 = -0.16666667163372039794921875
	const sinC4 = 8.333347737789154052734375e-3
	const sinC6 = -1.9842604524455964565277099609375e-4
	const sinC8 = 2.760012648650445044040679931640625e-6
	const sinC10 = -2.50293279435709337121807038784027099609375e-8

	const cosC2 = -0.5
	const cosC4 = 4.166664183139801025390625e-2
	const cosC6 = -1.388833043165504932403564453125e-3
	const cosC8 = 2.47562347794882953166961669921875e-5
	const cosC10 = -2.59630184018533327616751194000244140625e-7

	x2 := x * x

	sinFormula := x2*sinC10 + sinC8
	sinFormula = x2*sinFormula + sinC6
	sinFormula = x2*sinFormula + sinC4
	sinFormula = x2*sinFormula + sinC2
	sinFormula = x2*sinFormula + 1
	sinFormula *= x

	cosFormula := x2*cosC10 + cosC8
	cosFormula = x2*cosFormula + cosC6
	cosFormula = x2*cosFormula + cosC4
	cosFormula = x2*cosFormula + cosC2
	cosFormula = x2*cosFormula + 1

	var sin, cos float32
	if sinUsecos {
		sin = cosFormula
	} else {
		sin = sinFormula
	}
	if cosUsecos {
		cos = cosFormula
	} else {
		cos = sinFormula
	}
	if sinFlipsign {
		sin = -sin
	}
	if cosFlipsign {
		cos = -cos
	}

	return [2]float32{sin, cos}
}

// Tan computes tan(x) via the stdlib; not on the Sin/Cos per-tick hot
// path so the float64 round trip is not a concern.
func Tan(x float32) float32 {
	return float32(gomath.Tan(float64(x)))
}

func SafeASin(a float32) float32 {
	return float32(gomath.Asin(float64(Clamp(a, -1, 1))))
}

func SafeACos(a float32) float32 {
	return float32(gomath.Acos(float64(Clamp(a, -1, 1))))
}

// Atan2 computes atan2(y, x) for single float32 values via the stdlib,
// rounded back to float32; called rarely enough per tick that the
// float64 round trip doesn't matter the way Sin/Cos's call volume does.
func Atan2(y, x float32) float32 {
	return float32(gomath.Atan2(float64(y), float64(x)))
}
