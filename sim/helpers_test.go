package sim

import (
	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/nav"
)

// testAirport returns a minimal single-runway airport used across this
// package's tests.
func testAirport() aviation.Airport {
	loc := math.Point2LL{-97, 33}
	nmPerLon := math.NMPerLongitude(loc.Latitude())
	threshold := loc
	end := math.Offset2LL(threshold, 160, 2, nmPerLon)

	return aviation.Airport{
		ICAO:      "TEST",
		Location:  loc,
		Elevation: 600,
		Runways: map[string]aviation.Runway{
			"16": {
				Id: "16", Heading: 160, Threshold: threshold, End: end,
				LengthFt: 8000, WidthFt: 150, Elevation: 600,
				ILSAvailable: true, ILSCourse: 160, GlideslopeAngle: 3,
			},
		},
		Fixes: map[string]aviation.Fix{},
		SIDs:  map[string]aviation.Procedure{},
		STARs: map[string]aviation.Procedure{},
		Approaches: []aviation.Approach{
			{Type: aviation.ApproachILS, Runway: "16", FullName: "ILS RWY 16", GlideslopeAngle: 3, MissedApproachAlt: 3000},
		},
		Frequencies: aviation.Frequencies{Tower: 118.3, Ground: 121.7, Center: 127.85, Approach: 125.35, Departure: 125.35},
		Limits:      aviation.TRACONLimits{RadiusNm: 40, Ceiling: 17000, MVA: 2000},
	}
}

// newApproachClearedNav returns a nav.State already cleared for the ILS
// to the given runway, for tests that only need runwayOf() to resolve.
func newApproachClearedNav(apt aviation.Airport, runway string) *nav.State {
	s := nav.NewState(nil, apt.Elevation+2000, nil)
	s.Clearances.Approach = &nav.ApproachClearance{Type: aviation.ApproachILS, Runway: runway, Cleared: true}
	return s
}

func testPerformance() aviation.AircraftPerformance {
	return aviation.AircraftPerformance{
		ICAOType: "B738",
		Wake:     aviation.WakeLarge,
		Speed: aviation.SpeedEnvelope{
			VminFlaps: 110, Vmo: 340, VmaxBelow10k: 250,
			CruiseIAS: 280, Vapp: 135, RotationSpeed: 150, TaxiSpeed: 15,
		},
		Climb:   aviation.ClimbRateTable{Rate0: 2500, Rate10k: 2200, Rate24k: 1500, Rate35k: 800, DescentRate: 1500},
		Ceiling: 41000,
	}
}
