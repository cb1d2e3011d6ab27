// aviation/atmosphere.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"

	"github.com/mmp/maxspeed/math"
)

// International Standard Atmosphere constants; altitudes are pressure
// altitudes in feet.
const (
	SeaLevelSpeedOfSound = 661.4786 // knots
	TropopauseAltitude   = 36089.24

	// delta = (1 - lapseFactor*h)^pressureExponent in the troposphere
	lapseFactor      = 6.8755856e-6
	pressureExponent = 5.2558797

	stratosphereScaleHeight = 20805.8 // feet
)

// The troposphere and stratosphere pressure models meet exactly at the
// tropopause.
var tropopausePressureRatio = math.Pow(1-lapseFactor*TropopauseAltitude, pressureExponent)

// PressureRatioAtAltitude returns the ratio of static pressure at the
// given pressure altitude to the sea level pressure, for the troposphere
// and lower stratosphere (up to 65,617 ft).
func PressureRatioAtAltitude(alt float64) float64 {
	if alt <= TropopauseAltitude {
		return math.Pow(1-lapseFactor*alt, pressureExponent)
	}
	return tropopausePressureRatio * math.Exp(-(alt-TropopauseAltitude)/stratosphereScaleHeight)
}

// AltitudeForPressureRatio is the inverse of PressureRatioAtAltitude.
func AltitudeForPressureRatio(delta float64) float64 {
	if delta >= tropopausePressureRatio {
		return (1 - math.Pow(delta, 1/pressureExponent)) / lapseFactor
	}
	return TropopauseAltitude - stratosphereScaleHeight*math.Log(delta/tropopausePressureRatio)
}

// Subsonic compressible-flow impact pressure, as a fraction of sea level
// pressure for CAS and of static pressure for Mach.
func casImpactPressureRatio(cas float64) float64 {
	return math.Pow(1+0.2*math.Sqr(cas/SeaLevelSpeedOfSound), 3.5) - 1
}

func machImpactPressureRatio(mach float64) float64 {
	return math.Pow(1+0.2*math.Sqr(mach), 3.5) - 1
}

// MachToCAS returns the calibrated airspeed in knots corresponding to
// the given Mach number at the given pressure altitude.
func MachToCAS(mach, alt float64) float64 {
	qc := PressureRatioAtAltitude(alt) * machImpactPressureRatio(mach)
	return SeaLevelSpeedOfSound * math.Sqrt(5*(math.Pow(qc+1, 1/3.5)-1))
}

// CASToMach returns the Mach number corresponding to the given calibrated
// airspeed in knots at the given pressure altitude.
func CASToMach(cas, alt float64) float64 {
	qc := casImpactPressureRatio(cas) / PressureRatioAtAltitude(alt)
	return math.Sqrt(5 * (math.Pow(qc+1, 1/3.5) - 1))
}

// CrossoverAltitude returns the pressure altitude at which vmo knots CAS
// and Mach mmo are the same speed; above it, the Mach limit is the more
// restrictive one.
func CrossoverAltitude(vmo, mmo float64) float64 {
	return AltitudeForPressureRatio(casImpactPressureRatio(vmo) / machImpactPressureRatio(mmo))
}

// NewCrossoverLimits returns a two-band LimitSpec for an aircraft with
// both a VMO and an MMO: the VMO applies below the crossover altitude and
// the MMO at and above it.
func NewCrossoverLimits(vmo, mmo float64) (*LimitSpec, error) {
	if !validVMO(vmo) || vmo >= SeaLevelSpeedOfSound {
		return nil, fmt.Errorf("VMO %g: %w", vmo, ErrInvalidLimit)
	}
	if !validMMO(mmo) {
		return nil, fmt.Errorf("MMO %g: %w", mmo, ErrInvalidLimit)
	}

	h := CrossoverAltitude(vmo, mmo)
	return NewBandedLimits(
		ConstantSpeedBand(math.Inf(-1), h, vmo),
		ConstantMachBand(h, math.Inf(1), mmo))
}
