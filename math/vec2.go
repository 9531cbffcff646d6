// math/vec2.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

// Various useful functions for arithmetic with 2D points/vectors.
// Names are brief in order to avoid clutter when they're used. These are
// plain Cartesian vectors in nautical miles, distinct from Point2LL
// (latitude/longitude) in point.go.

// Add2f returns a+b.
func Add2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] + b[0], a[1] + b[1]}
}

// Sub2f returns a-b.
func Sub2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] - b[0], a[1] - b[1]}
}

// Scale2f returns a*s.
func Scale2f(a [2]float32, s float32) [2]float32 {
	return [2]float32{s * a[0], s * a[1]}
}

func Dot(a, b [2]float32) float32 {
	return a[0]*b[0] + a[1]*b[1]
}

// Lerp2f linearly interpolates x of the way between a and b. x==0
// corresponds to a, x==1 corresponds to b, etc.
func Lerp2f(x float32, a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{(1-x)*a[0] + x*b[0], (1-x)*a[1] + x*b[1]}
}

// Length2f returns the length of v.
func Length2f(v [2]float32) float32 {
	return Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Distance2f returns the distance between two points.
func Distance2f(a [2]float32, b [2]float32) float32 {
	return Length2f(Sub2f(a, b))
}

// Normalize2f normalizes the given vector; the zero vector normalizes to itself.
func Normalize2f(a [2]float32) [2]float32 {
	l := Length2f(a)
	if l == 0 {
		return [2]float32{0, 0}
	}
	return Scale2f(a, 1/l)
}

// Heading2f returns the compass heading (0-360, 0 is North) of a vector
// given in (east, north) nautical-mile components.
func Heading2f(v [2]float32) float32 {
	if v[0] == 0 && v[1] == 0 {
		return 0
	}
	h := Degrees(Atan2(v[0], v[1]))
	return NormalizeHeading(h)
}

// HeadingVector returns the unit (east, north) vector for the given
// compass heading.
func HeadingVector(hdg float32) [2]float32 {
	sc := SinCos(Radians(hdg))
	return [2]float32{sc[0], sc[1]}
}

// PointLineDistance returns the perpendicular distance from point p to
// the infinite line through a and b.
func PointLineDistance(p, a, b [2]float32) float32 {
	d := Sub2f(b, a)
	len := Length2f(d)
	if len < 1e-6 {
		return Distance2f(p, a)
	}
	// Cross product magnitude of (p-a) and normalized direction gives
	// the perpendicular distance.
	n := Sub2f(p, a)
	cross := n[0]*d[1] - n[1]*d[0]
	return Abs(cross) / len
}

// SignedPointLineDistance is like PointLineDistance but retains the sign
// of the cross product: positive means p is to the right of the a->b
// direction, negative to the left.
func SignedPointLineDistance(p, a, b [2]float32) float32 {
	d := Sub2f(b, a)
	len := Length2f(d)
	if len < 1e-6 {
		return Distance2f(p, a)
	}
	n := Sub2f(p, a)
	cross := n[0]*d[1] - n[1]*d[0]
	return cross / len
}
