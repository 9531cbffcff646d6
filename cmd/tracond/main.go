// main.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// tracond is a thin standalone harness: it wires one Session, drives its
// scheduler off a real ticker, and logs periodic snapshots. It is a
// smoke-test executable, not a network server.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goforj/godump"

	"github.com/vice-tracon/engine/aviation"
	"github.com/vice-tracon/engine/log"
	"github.com/vice-tracon/engine/math"
	"github.com/vice-tracon/engine/sim"
	"github.com/vice-tracon/engine/wx"
)

var (
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "log file directory")
	density      = flag.String("density", "moderate", "traffic density: light, moderate, heavy")
	scenarioType = flag.String("scenario", "mixed", "scenario type: arrivals, departures, mixed")
	timeScale    = flag.Int("timescale", 1, "scheduler time scale: 1, 2, or 4")
	durationSec  = flag.Int("duration", 600, "how many simulated seconds to run before exiting")
	dumpState    = flag.Bool("dumpstate", false, "dump the full snapshot struct on exit, for debugging")
)

func main() {
	flag.Parse()

	lg := log.New(false, *logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	cfg := sim.SessionConfig{
		Airport:      demoAirport(),
		Density:      parseDensity(*density),
		ScenarioType: parseScenarioType(*scenarioType),
		RunwayConfig: sim.RunwayConfig{Arrival: []string{"16"}, Departure: []string{"16"}},
		Weather:      demoWeather(),
		ATISText:     "information alpha, wind calm, visibility 10, ils approach in use",
	}
	s := sim.CreateSession(cfg, lg)
	if *timeScale != 1 {
		s.SetTimeScale(*timeScale)
	}

	lg.Infof("session %s starting: density=%s scenario=%s timescale=%d", s.ID, *density, *scenarioType, *timeScale)
	s.Start()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	deadline := time.After(time.Duration(*durationSec) * time.Second)

	for {
		select {
		case <-ticker.C:
			snap := s.Snapshot()
			lg.Infof("tick %d: %d aircraft, score %.0f (%s), %d alerts",
				snap.Clock.TickCount, len(snap.Aircraft), snap.Score, snap.Grade, len(snap.Alerts))
		case <-deadline:
			fmt.Printf("session %s complete: final score %.0f\n", s.ID, s.Scoring.Overall)
			if *dumpState {
				godump.Dump(s.Snapshot())
			}
			s.End()
			return
		case <-sigCh:
			lg.Warn("caught signal, stopping session")
			s.End()
			return
		}
	}
}

func parseDensity(s string) sim.Density {
	switch s {
	case "light":
		return sim.DensityLight
	case "heavy":
		return sim.DensityHeavy
	default:
		return sim.DensityModerate
	}
}

func parseScenarioType(s string) sim.ScenarioType {
	switch s {
	case "arrivals":
		return sim.ScenarioArrivals
	case "departures":
		return sim.ScenarioDepartures
	default:
		return sim.ScenarioMixed
	}
}

// demoAirport is a minimal single-runway field used by the standalone
// harness; a real deployment loads this from a scenario file instead.
func demoAirport() aviation.Airport {
	loc := math.Point2LL{-97.0403, 32.8968}
	nmPerLon := math.NMPerLongitude(loc.Latitude())

	threshold := loc
	end := math.Offset2LL(threshold, 160, 2, nmPerLon)

	entry := math.Offset2LL(loc, 340, 30, nmPerLon)

	return aviation.Airport{
		ICAO:      "DEMO",
		Location:  loc,
		Elevation: 600,
		Runways: map[string]aviation.Runway{
			"16": {
				Id:              "16",
				Heading:         160,
				Threshold:       threshold,
				End:             end,
				LengthFt:        8000,
				WidthFt:         150,
				Elevation:       600,
				ILSAvailable:    true,
				ILSCourse:       160,
				GlideslopeAngle: 3,
			},
		},
		Fixes: map[string]aviation.Fix{
			"ENTRY": {Name: "ENTRY", Location: entry},
		},
		STARs: map[string]aviation.Procedure{
			"DEMO1": {
				Name: "DEMO1",
				Legs: []aviation.Fix{
					{Name: "ENTRY", Location: entry, Altitude: &aviation.AltitudeRestriction{Kind: aviation.RestrictAtOrBelow, Altitude: 10000}},
				},
			},
		},
		Approaches: []aviation.Approach{
			{Type: aviation.ApproachILS, Runway: "16", FullName: "ILS RWY 16", GlideslopeAngle: 3, MissedApproachAlt: 3000},
		},
		Frequencies: aviation.Frequencies{
			Tower: 118.3, Ground: 121.7, Center: 127.85, Approach: 125.35, Departure: 125.35,
		},
		Limits: aviation.TRACONLimits{RadiusNm: 40, Ceiling: 17000, MVA: 2000},
	}
}

func demoWeather() wx.Weather {
	ceiling := float32(3000)
	return wx.Weather{
		WindLayers:   []wx.WindLayer{{Altitude: 0, Direction: 160, Speed: 8}},
		Altimeter:    29.92,
		Temperature:  15,
		VisibilitySM: 10,
		CeilingFt:    &ceiling,
		ATISLetter:   "A",
	}
}
