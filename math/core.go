// math/core.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// A number of small helpers follow; the lookup tables work in float64 so
// that the published formulas are reproduced exactly.

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Sqrt(a float64) float64 {
	return gomath.Sqrt(a)
}

func Pow(a, b float64) float64 {
	return gomath.Pow(a, b)
}

func Exp(x float64) float64 {
	return gomath.Exp(x)
}

func Log(x float64) float64 {
	return gomath.Log(x)
}

func IsNaN[F constraints.Float](v F) bool {
	return v != v
}

func Inf(sign int) float64 {
	return gomath.Inf(sign)
}

// IsFinite returns true if v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !IsNaN(v) && !gomath.IsInf(v, 0)
}

// NearlyEqual reports whether a and b agree to within eps.
func NearlyEqual[F constraints.Float](a, b, eps F) bool {
	return Abs(a-b) <= eps
}
