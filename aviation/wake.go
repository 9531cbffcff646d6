// aviation/wake.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

// wakeSeparationNm[leader][follower] gives the required in-trail
// separation, in nautical miles, when a follower of the given wake
// category trails a leader of the given wake category on final to the
// same runway.
var wakeSeparationNm = [4][4]float32{
	WakeSmall: {WakeSmall: 3, WakeLarge: 3, WakeHeavy: 3, WakeSuper: 3},
	WakeLarge: {WakeSmall: 4, WakeLarge: 3, WakeHeavy: 3, WakeSuper: 3},
	WakeHeavy: {WakeSmall: 5, WakeLarge: 4, WakeHeavy: 4, WakeSuper: 3},
	WakeSuper: {WakeSmall: 6, WakeLarge: 5, WakeHeavy: 5, WakeSuper: 3},
}

// RequiredWakeSeparation returns the minimum in-trail spacing, in nm,
// required between a leader and a trailing follower on the same final.
func RequiredWakeSeparation(leader, follower WakeCategory) float32 {
	return wakeSeparationNm[leader][follower]
}
