// math/point.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

const NMPerLatitude = 60
const NauticalMilesToFeet = 6076.12
const FeetToNauticalMiles = 1 / NauticalMilesToFeet

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude.
type Point2LL [2]float32

func (p Point2LL) Longitude() float32 { return p[0] }
func (p Point2LL) Latitude() float32  { return p[1] }

func (p Point2LL) IsZero() bool { return p[0] == 0 && p[1] == 0 }

func Add2LL(a, b Point2LL) Point2LL { return Point2LL(Add2f(a, b)) }
func Sub2LL(a, b Point2LL) Point2LL { return Point2LL(Sub2f(a, b)) }
func Mid2LL(a, b Point2LL) Point2LL { return Point2LL(Scale2f(Add2f(a, b), 0.5)) }

// NMPerLongitude returns the number of nautical miles per degree of
// longitude at the given latitude; it shrinks toward the poles.
func NMPerLongitude(lat float32) float32 {
	return NMPerLatitude * Cos(Radians(lat))
}

// NMDistance2LL returns the great-circle distance in nautical miles
// between two lat-long coordinates (WGS84 spherical approximation).
func NMDistance2LL(a, b Point2LL) float32 {
	const R = 6371000.0 // metres, mean Earth radius
	rad := func(d float32) float64 { return float64(d) / 180 * gomath.Pi }
	lat1, lon1 := rad(a[1]), rad(a[0])
	lat2, lon2 := rad(b[1]), rad(b[0])
	dlat, dlon := lat2-lat1, lon2-lon1

	sinDLat2, sinDLon2 := gomath.Sin(dlat/2), gomath.Sin(dlon/2)
	x := sinDLat2*sinDLat2 + gomath.Cos(lat1)*gomath.Cos(lat2)*sinDLon2*sinDLon2
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	return float32(R * c * 0.000539957) // metres -> nm
}

// NM2LL converts a point expressed in local nautical-mile (east, north)
// coordinates, relative to some implicit origin, to lat-long deltas.
func NM2LL(p [2]float32, nmPerLongitude float32) Point2LL {
	return Point2LL{p[0] / nmPerLongitude, p[1] / NMPerLatitude}
}

// LL2NM converts a point expressed in latitude-longitude coordinates to
// local nautical-mile (east, north) coordinates; both axes then share the
// same measure, which simplifies vector arithmetic over short distances.
func LL2NM(p Point2LL, nmPerLongitude float32) [2]float32 {
	return [2]float32{p[0] * nmPerLongitude, p[1] * NMPerLatitude}
}

// Offset2LL returns the point at distance dist (nm) along heading hdg from
// the given point, treating the local area as flat.
func Offset2LL(pll Point2LL, hdg float32, dist float32, nmPerLongitude float32) Point2LL {
	p := LL2NM(pll, nmPerLongitude)
	v := Scale2f(HeadingVector(hdg), dist)
	p = Add2f(p, v)
	return NM2LL(p, nmPerLongitude)
}

// BearingHeading returns the initial compass heading from a to b, treating
// the local area as flat (adequate within TRACON-scale distances).
func BearingHeading(a, b Point2LL, nmPerLongitude float32) float32 {
	v := Sub2f(LL2NM(b, nmPerLongitude), LL2NM(a, nmPerLongitude))
	return Heading2f(v)
}
