// util/idgen.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import "github.com/google/uuid"

// NewID returns a stable, opaque identifier suitable for an aircraft or a
// session: one that outlives a callsign or squawk reassignment and so can
// be used as a durable join key by a caller tracking an aircraft across a
// handoff or re-route.
func NewID() string {
	return uuid.NewString()
}
