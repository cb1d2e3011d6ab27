// aviation/maxspeed_aircraft.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "github.com/mmp/maxspeed/math"

// L382Limits returns the VMO schedule for the Lockheed L-382 / C-130,
// which has no MMO: VMO increases from 250 kt at sea level to 254 kt at
// 17,500 ft, decreases to 202 kt at 32,500 ft and is constant above that.
func L382Limits() *LimitSpec {
	return MustBandedLimits(
		LinearSpeedBand(math.Inf(-1), 17500, 250, 4, 17500),
		LinearSpeedBand(17500, 32500, 254, -52, 15000),
		ConstantSpeedBand(32500, math.Inf(1), 202))
}

// GlobalExpressLimits returns the VMO/MMO schedule for the Bombardier
// Global Express.
func GlobalExpressLimits() *LimitSpec {
	return MustBandedLimits(
		ConstantSpeedBand(math.Inf(-1), 8000, 300),
		ConstantSpeedBand(8000, 30267, 340),
		ConstantMachBand(30267, 35000, 0.89),
		ConstantMachBand(35000, 41400, 0.88),
		ConstantMachBand(41400, 47000, 0.858),
		ConstantMachBand(47000, math.Inf(1), 0.842))
}
